// Package apperr defines the typed failures shared by stores, services and transports.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrDuplicate    = errors.New("duplicate")
	ErrNotFound     = errors.New("not found")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyInput   = errors.New("empty input")
	ErrStorage      = errors.New("storage failure")
)

// Error carries a kind plus the input it concerns.
type Error struct {
	Kind  error
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Field != "" {
		s = e.Field + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind for field.
func New(kind error, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind wrapping cause.
func Wrap(kind error, field string, cause error) *Error {
	return &Error{Kind: kind, Field: field, Err: cause}
}

// NotFound is shorthand for a missing entity.
func NotFound(field, value string) *Error {
	return New(ErrNotFound, field, "%q does not exist", value)
}

// Invalid is shorthand for a rejected input value.
func Invalid(field, format string, args ...any) *Error {
	return New(ErrInvalidInput, field, format, args...)
}

// FieldOf returns the field named by err, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
