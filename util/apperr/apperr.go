// Package apperr carries the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	Validation   Kind = "VALIDATION"
	Unauthorized Kind = "UNAUTHORIZED"
	NotFound     Kind = "NOT_FOUND"
	Conflict     Kind = "CONFLICT"
	Upstream     Kind = "UPSTREAM"
	Unavailable  Kind = "UNAVAILABLE"
	Internal     Kind = "INTERNAL"
)

// ErrCode identifies a specific failure inside a Kind, e.g. OUT_OF_STOCK.
type ErrCode string

// Error is a coded error. Msg is safe to show to the caller.
type Error struct {
	Kind Kind
	Code ErrCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel values compare equal to wrapped copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(k Kind, code ErrCode, msg string) *Error {
	return &Error{Kind: k, Code: code, Msg: msg}
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Code extracts error code
func Code(err error) ErrCode {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// KindOf returns Internal for anything that is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message returns the caller-facing message, or fallback for uncoded errors.
func Message(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return fallback
}

// Status maps a Kind to its HTTP status. Conflict stays 400 to match existing clients.
func Status(k Kind) int {
	switch k {
	case Validation, Conflict:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Upstream:
		return http.StatusBadGateway
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
