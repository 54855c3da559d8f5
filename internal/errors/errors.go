// Package errors defines the coded errors the taxonomy services return and the
// HTTP status each code maps to.
//
//	if !taxonomy.CanParent(child, parent) {
//	    return errors.TypeMismatch("a SCENE cannot be a parent of a STYLE")
//	}
//
//	if errors.Is(err, errors.ErrCycleDetected) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-exported so callers need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Code is the machine-readable error code sent to API clients.
type Code string

// Error codes.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL"
	CodeTypeMismatch  Code = "TYPE_MISMATCH"
	CodeCycleDetected Code = "CYCLE_DETECTED"
	CodeAlreadyMerged Code = "ALREADY_MERGED"
	CodeRateLimited   Code = "RATE_LIMITED"
)

var httpStatus = map[Code]int{
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeValidation:    http.StatusBadRequest,
	CodeConflict:      http.StatusConflict,
	CodeTypeMismatch:  http.StatusBadRequest,
	CodeCycleDetected: http.StatusConflict,
	CodeAlreadyMerged: http.StatusConflict,
	CodeRateLimited:   http.StatusTooManyRequests,
}

// HTTPStatus returns the status code the API answers with. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := httpStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded error. Details, when set, are sent to the client as-is.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.cause = err
	return &cp
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = New(CodeNotFound, "not found")
	ErrAlreadyExists = New(CodeAlreadyExists, "already exists")
	ErrValidation    = New(CodeValidation, "validation error")
	ErrConflict      = New(CodeConflict, "conflict")
	ErrInternal      = New(CodeInternal, "internal error")
	ErrTypeMismatch  = New(CodeTypeMismatch, "type mismatch")
	ErrCycleDetected = New(CodeCycleDetected, "cycle detected")
	ErrAlreadyMerged = New(CodeAlreadyMerged, "correction already merged")
	ErrRateLimited   = New(CodeRateLimited, "too many requests")
)

// New creates an error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return New(code, msg).WithCause(err)
}

// Wrapf wraps err with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return Newf(code, format, args...).WithCause(err)
}

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func Validation(msg string) *Error { return New(CodeValidation, msg) }

func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// ValidationWithDetails creates a validation error listing the offending fields.
func ValidationWithDetails(msg string, details any) *Error {
	return New(CodeValidation, msg).WithDetails(details)
}

func Conflict(msg string) *Error { return New(CodeConflict, msg) }

func Conflictf(format string, args ...any) *Error { return Newf(CodeConflict, format, args...) }

func TypeMismatch(msg string) *Error { return New(CodeTypeMismatch, msg) }

// CycleDetected creates a cycle error. Details carry the offending path.
func CycleDetected(msg string, path any) *Error {
	return New(CodeCycleDetected, msg).WithDetails(path)
}

func AlreadyMerged(msg string) *Error { return New(CodeAlreadyMerged, msg) }

func RateLimited(msg string) *Error { return New(CodeRateLimited, msg) }
