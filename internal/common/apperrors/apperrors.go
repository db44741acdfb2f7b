// internal/common/apperrors/apperrors.go
// Typed error kinds shared by every service in the matching core.
// Handlers map kinds to HTTP status codes in one place.

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindInvalidState
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	case KindAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside the message so callers can branch on the
// failure class without string matching.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

func NotFound(msg string) error {
	return &Error{kind: KindNotFound, msg: msg}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func InvalidArgument(msg string) error {
	return &Error{kind: KindInvalidArgument, msg: msg}
}

func InvalidArgumentf(format string, args ...interface{}) error {
	return &Error{kind: KindInvalidArgument, msg: fmt.Sprintf(format, args...)}
}

func InvalidState(msg string) error {
	return &Error{kind: KindInvalidState, msg: msg}
}

func InvalidStatef(format string, args ...interface{}) error {
	return &Error{kind: KindInvalidState, msg: fmt.Sprintf(format, args...)}
}

func AlreadyExists(msg string) error {
	return &Error{kind: KindAlreadyExists, msg: msg}
}

func AlreadyExistsf(format string, args ...interface{}) error {
	return &Error{kind: KindAlreadyExists, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error while preserving the chain.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindUnknown
// for plain errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }
func IsInvalidState(err error) bool    { return KindOf(err) == KindInvalidState }
func IsAlreadyExists(err error) bool   { return KindOf(err) == KindAlreadyExists }

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusConflict
	case KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
