package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindDecodeFailure     ErrorKind = "decode_failure"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrDecodeFailure     = errors.New("document decode failure")
)

// Error is returned for every failed extraction.
type Error struct {
	Kind     ErrorKind
	FileName string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract %s: %s", e.FileName, e.Kind)
	}
	return fmt.Sprintf("extract %s: %s: %v", e.FileName, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnsupportedFormat:
		return e.Kind == KindUnsupportedFormat
	case ErrDecodeFailure:
		return e.Kind == KindDecodeFailure
	}
	return false
}

func unsupported(fileName, ext string) *Error {
	return &Error{Kind: KindUnsupportedFormat, FileName: fileName, Err: fmt.Errorf("extension %q", ext)}
}

func decodeFailure(fileName string, err error) *Error {
	return &Error{Kind: KindDecodeFailure, FileName: fileName, Err: err}
}
