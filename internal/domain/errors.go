package domain

import (
	"errors"
	"fmt"
)

// Error codes. Handlers map each to an HTTP status.
const (
	EINVALID      = "invalid"
	EUNAUTHORIZED = "unauthorized"
	EFORBIDDEN    = "forbidden"
	ENOTFOUND     = "not_found"
	ECONFLICT     = "conflict" // e.g. a level code that already exists
	ERATELIMIT    = "rate_limit"
	EUNAVAILABLE  = "unavailable" // an upstream API failed or timed out
	EINTERNAL     = "internal"
)

const (
	internalMessage    = "An internal error occurred. Please try again later."
	unavailableMessage = "A service this page depends on is unavailable. Please try again later."
)

// Error is an application error. Message is shown to the user unless the code
// is EINTERNAL or EUNAVAILABLE; Op and Err are for logs.
type Error struct {
	Code    string
	Op      string // e.g. "ReviewsService.Reviews"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns an Error with a formatted message.
func Errorf(code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with err as its cause.
func Wrap(err error, code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

func NotFound(op, resource, id string) *Error {
	return Errorf(ENOTFOUND, op, "%s %q not found", resource, id)
}

func Invalid(op, message string) *Error { return Wrap(nil, EINVALID, op, message) }

func Unauthorized(op, message string) *Error { return Wrap(nil, EUNAUTHORIZED, op, message) }

func Forbidden(op, message string) *Error { return Wrap(nil, EFORBIDDEN, op, message) }

// Unavailable marks a failed call to an upstream API.
func Unavailable(err error, op, message string) *Error {
	return Wrap(err, EUNAVAILABLE, op, message)
}

func Internal(err error, op, message string) *Error { return Wrap(err, EINTERNAL, op, message) }

func RateLimit(op string) *Error {
	return Wrap(nil, ERATELIMIT, op, "Too many requests. Please try again later.")
}

// asError finds the outermost *Error in err's chain.
func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ErrorCode returns err's code. Errors that are not *Error are EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns text that is safe to show to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	e, ok := asError(err)
	switch {
	case !ok || e.Code == EINTERNAL:
		return internalMessage
	case e.Code == EUNAVAILABLE:
		return unavailableMessage
	}
	return e.Message
}

// ErrorOp returns the operation that produced err, or "".
func ErrorOp(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// ValidationError holds one message per invalid form field.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return e.Op + ": validation failed"
}

func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// Add records a field error. It may be called on a nil *ValidationError, so
// validators can start from nil and return it only when something was added.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e == nil {
		return NewValidationError("", field, message)
	}
	e.Fields[field] = message
	return e
}
