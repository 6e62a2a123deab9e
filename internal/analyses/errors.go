package analyses

import (
	"errors"
	"strings"
)

// ErrMissingInput marks an unmet precondition: an empty required field, empty
// extracted text or no credential.
var ErrMissingInput = errors.New("missing input")

// MissingInputError names the fields that were empty.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	return "missing input: " + strings.Join(e.Fields, ", ")
}

// Is lets errors.Is match ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

func missing(fields ...string) error {
	return &MissingInputError{Fields: fields}
}

const (
	ErrorCodeMissingInput       = "missing_input"
	ErrorCodeUnsupportedFile    = "unsupported_file"
	ErrorCodeUnreadableFile     = "unreadable_file"
	ErrorCodeServiceUnreachable = "service_unreachable"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeMalformedOutput    = "malformed_output"
	ErrorCodeSchemaMismatch     = "schema_mismatch"
	ErrorCodeInternal           = "internal"
)
