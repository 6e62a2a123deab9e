package analyses

import (
	"context"
	"errors"
	"strings"

	"nextcv/internal/extract"
	"nextcv/internal/llm"
)

// Message is the user-facing rendering of an error. Category is stable and
// distinct per error kind; Diagnostic carries the wrapped error text.
type Message struct {
	Category   string `json:"category"`
	Text       string `json:"text"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Describe maps any error returned by this package, extract or llm to a Message.
func Describe(err error) Message {
	if err == nil {
		return Message{}
	}
	msg := Message{Diagnostic: err.Error()}

	switch {
	case errors.Is(err, ErrMissingInput):
		msg.Category = ErrorCodeMissingInput
		msg.Text = "some required information is missing"
		var mi *MissingInputError
		if errors.As(err, &mi) && len(mi.Fields) > 0 {
			msg.Text += ": " + strings.Join(mi.Fields, ", ")
		}
	case errors.Is(err, extract.ErrUnsupportedFormat):
		msg.Category = ErrorCodeUnsupportedFile
		msg.Text = "unsupported file format, please upload a PDF, DOCX or TXT file"
	case errors.Is(err, extract.ErrDecodeFailure):
		msg.Category = ErrorCodeUnreadableFile
		msg.Text = "the file could not be read, try another copy or another format"
	case errors.Is(err, llm.ErrRateLimited):
		msg.Category = ErrorCodeRateLimited
		msg.Text = "the analysis service is rate limiting requests, please wait and try again"
	case errors.Is(err, llm.ErrUnreachable), errors.Is(err, context.DeadlineExceeded):
		msg.Category = ErrorCodeServiceUnreachable
		msg.Text = "could not reach the analysis service"
	case errors.Is(err, context.Canceled):
		msg.Category = ErrorCodeServiceUnreachable
		msg.Text = "the request was cancelled before the analysis finished"
	case errors.Is(err, llm.ErrMalformedResponse):
		msg.Category = ErrorCodeMalformedOutput
		msg.Text = "the analysis service returned an unreadable answer, please try again"
	case errors.Is(err, llm.ErrSchemaMismatch):
		msg.Category = ErrorCodeSchemaMismatch
		msg.Text = "the analysis service returned an incomplete answer, please try again"
	default:
		msg.Category = ErrorCodeInternal
		msg.Text = "something went wrong while analyzing"
	}
	return msg
}
