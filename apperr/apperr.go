// Package apperr defines the error taxonomy shared by services, stores and
// the HTTP layer. Handlers return *Error values; the central error handler
// maps Kind to an HTTP status and never leaks wrapped driver errors.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	// InvalidArgument: malformed input, rejected before any storage access.
	InvalidArgument Kind = iota
	// Unauthenticated: missing/expired/invalid token or unknown user.
	Unauthenticated
	// Conflict: duplicate username/email at signup.
	Conflict
	// UpstreamFailure: responder timeout, transport error, unusable response.
	UpstreamFailure
	// StorageFailure: transaction or connection errors.
	StorageFailure
	// ServerError: anything unclassified.
	ServerError
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// As extracts an *Error from err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus maps the error kind to the status code the client sees.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case InvalidArgument:
		return fiber.StatusBadRequest
	case Unauthenticated:
		return fiber.StatusUnauthorized
	case Conflict:
		return fiber.StatusConflict
	case UpstreamFailure:
		return fiber.StatusBadGateway
	case StorageFailure, ServerError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
