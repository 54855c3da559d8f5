package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence failure. Backends return one of the sentinels below,
// optionally narrowed to the resource it concerns with For.
type Error struct {
	Status   int    // HTTP status the API answers with
	Message  string // what went wrong, e.g. "not found"
	Resource string // what it went wrong for, e.g. "genre 7"
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Resource != "" {
		msg = e.Resource + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any error of the same sentinel, whatever resource it names.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Status == e.Status && t.Message == e.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Status }

// For returns a copy of e naming the resource it concerns.
func (e *Error) For(format string, args ...any) *Error {
	cp := *e
	cp.Resource = fmt.Sprintf(format, args...)
	return &cp
}

// Because returns a copy of e caused by err.
func (e *Error) Because(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Status: http.StatusNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Status: http.StatusConflict, Message: "already exists"}
	ErrInvalidInput  = &Error{Status: http.StatusBadRequest, Message: "invalid input"}
	ErrAlreadyMerged = &Error{Status: http.StatusConflict, Message: "already merged"}
	ErrConflict      = &Error{Status: http.StatusConflict, Message: "concurrent update"}
)
