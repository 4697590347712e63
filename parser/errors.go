package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a terminal parse failure. The set is closed so
// callers can switch exhaustively.
type ErrorKind string

const (
	// FormatUnrecognized means no normalizer claimed the input.
	FormatUnrecognized ErrorKind = "format-unrecognized"
	// SourceUnreadable means the input path does not exist or the
	// payload could not be decoded at all.
	SourceUnreadable ErrorKind = "source-unreadable"
)

// Sentinels for errors.Is matching.
var (
	ErrFormatUnrecognized = errors.New("format unrecognized")
	ErrSourceUnreadable   = errors.New("source unreadable")
)

// Error is the single error type surfaced by the parse layer. Kind
// selects the failure class; Preview carries a short excerpt of the
// offending input for FormatUnrecognized failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Preview string
	Path    string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Preview != "" {
		msg = fmt.Sprintf("%s (input: %s)", msg, e.Preview)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel corresponding to the error's Kind, so both
// errors.Is(err, ErrFormatUnrecognized) and direct Kind switches work.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFormatUnrecognized:
		return e.Kind == FormatUnrecognized
	case ErrSourceUnreadable:
		return e.Kind == SourceUnreadable
	}
	return false
}
