package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the user
type ErrorKind int

const (
	ValidationError ErrorKind = iota
	TransportError
	ApplicationError
	RenderError
	HistoryFetchError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case TransportError:
		return "transport"
	case ApplicationError:
		return "application"
	case RenderError:
		return "render"
	case HistoryFetchError:
		return "history"
	default:
		return "unknown"
	}
}

// Error is the single error type of the client. Status and Body are set
// when an HTTP response was received; non-2xx statuses show in the message.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Body    string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 && (e.Status < 200 || e.Status >= 300) {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or false when err is not an *Error
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
