/*Package errs provides the typed domain errors shared by the data-access
models and the HTTP route layer.

Models return errors with a Kind; the route layer is the single place where
kinds are translated into HTTP status codes. Store errors that are not
recognized keep KindUnexpected and propagate unmodified.
*/
package errs

import (
	"errors"
	"fmt"
)

// Kind discriminates the domain errors jobly knows how to handle.
type Kind int

// all error kinds
const (
	KindUnexpected Kind = iota
	KindInvalidInput
	KindNotFound
	KindDuplicate
	KindUnauthorized
)

// String returns a human readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindDuplicate:
		return "duplicate"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unexpected"
}

// Error is a domain error with a kind and an optional wrapped cause
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if len(e.Msg) > 0 {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error of the given kind
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches a kind to an underlying error
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnexpected if err carries no kind
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
