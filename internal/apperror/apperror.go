// Package apperror defines the typed errors the service layer surfaces to the
// HTTP layer, together with their HTTP status mapping.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	NotFound
	RootProtected
	Unauthorized
)

// Error is the application error type. Message is safe to return to clients;
// Err holds the underlying cause and is only logged.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation:
		return fiber.StatusUnprocessableEntity
	case Conflict:
		return fiber.StatusConflict
	case NotFound:
		return fiber.StatusNotFound
	case RootProtected:
		return fiber.StatusBadRequest
	case Unauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error    { return New(Validation, message) }
func NewConflict(message string) *Error      { return New(Conflict, message) }
func NewNotFound(message string) *Error      { return New(NotFound, message) }
func NewRootProtected(message string) *Error { return New(RootProtected, message) }
func NewUnauthorized(message string) *Error  { return New(Unauthorized, message) }

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsValidation(err error) bool    { return Is(err, Validation) }
func IsConflict(err error) bool      { return Is(err, Conflict) }
func IsNotFound(err error) bool      { return Is(err, NotFound) }
func IsRootProtected(err error) bool { return Is(err, RootProtected) }
func IsUnauthorized(err error) bool  { return Is(err, Unauthorized) }
