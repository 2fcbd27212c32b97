// Package common defines shared constants and error kinds used across the
// chat server and client. Callers should use errors.Is to match kinds.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorValidation         = errors.New("validation error")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error attaches a client-facing message to one of the kinds above.
// The HTTP layer maps Kind to a status code and writes Message as is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError wraps kind with msg.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) error {
	return NewError(ErrorValidation, msg)
}

func Unauthorized(msg string) error {
	return NewError(ErrorUnauthorized, msg)
}

// MessageOf returns the client-facing message carried by err, if any.
func MessageOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
