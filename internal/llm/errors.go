package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies gateway and response failures.
type ErrorKind string

const (
	KindUnreachable       ErrorKind = "unreachable"
	KindRateLimited       ErrorKind = "rate_limited"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindSchemaMismatch    ErrorKind = "schema_mismatch"
)

var (
	ErrUnreachable       = errors.New("completion service unreachable")
	ErrRateLimited       = errors.New("completion service rate limited")
	ErrMalformedResponse = errors.New("malformed completion response")
	ErrSchemaMismatch    = errors.New("completion does not match schema")
)

// GatewayError is the typed failure of a completion call or of parsing its output.
type GatewayError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Detail     string
	// Fields lists the offending JSON paths for KindSchemaMismatch.
	Fields []string
	Err    error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Provider != "" {
		b.WriteString(" (")
		b.WriteString(e.Provider)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, " status %d", e.StatusCode)
		}
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Kind == KindUnreachable
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	case ErrSchemaMismatch:
		return e.Kind == KindSchemaMismatch
	}
	return false
}

// NewError builds a GatewayError.
func NewError(kind ErrorKind, provider, detail string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Provider: provider, Detail: detail, Err: err}
}

// KindOf returns the kind of the first GatewayError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return "", false
}

// Retryable reports whether re-requesting the same prompt may succeed.
func Retryable(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindUnreachable, KindRateLimited, KindMalformedResponse, KindSchemaMismatch:
		return true
	}
	return false
}
