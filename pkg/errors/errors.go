// Package errors defines the error kinds shared by the extraction engine
// and the binaries that drive it. Callers wrap a sentinel with New/Newf and
// classify failures with errors.Is, Skippable and ExitCode.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage means no linguistic bundle or corpus file
	// exists for a document's language. The document is skipped.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrMalformedCorpusFile means a document-frequency file failed to
	// parse. Fatal for that language's model only.
	ErrMalformedCorpusFile = errors.New("malformed corpus file")
	// ErrEmptyDocument means a document carried no usable text.
	ErrEmptyDocument = errors.New("empty document")
	// ErrInvalidConfiguration is returned at construction time for
	// out-of-range parameters such as n < 1 or k < 1.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidDocument means an input record failed to decode or
	// validate. The record is skipped.
	ErrInvalidDocument = errors.New("invalid document")
)

// AppError attaches a human readable message to one of the sentinels.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// Skippable reports whether err only affects the current document (or its
// language) so that a batch run should log it and move on.
func Skippable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnsupportedLanguage),
		errors.Is(err, ErrMalformedCorpusFile),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrInvalidDocument):
		return true
	default:
		return false
	}
}

// ExitCode maps err to a process exit status for the cmd binaries.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfiguration):
		return 2
	case errors.Is(err, ErrMalformedCorpusFile):
		return 3
	case errors.Is(err, ErrUnsupportedLanguage):
		return 4
	default:
		return 1
	}
}
