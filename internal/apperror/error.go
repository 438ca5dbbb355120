// Package apperror defines the error taxonomy shared by every service
// and both transport adapters. Services return *Error values; the
// transports map them to `{message, status}` responses without
// inventing status codes of their own.
package apperror

import (
	"errors"
	"net/http"
)

// Error is a status-carrying error. Status is an HTTP status code; the
// GraphQL adapter reuses it in the error extensions.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidation reports malformed, missing or too-short input.
func NewValidation(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message}
}

// NewUnauthorized reports bad credentials or unauthenticated access.
func NewUnauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NewForbidden reports an operation attempted by a non-owner.
func NewForbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NewNotFound reports a missing resource.
func NewNotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// StatusOf extracts the status code from err, defaulting to 500 for
// unclassified failures.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the user-visible message from err. Unclassified
// failures are masked so internal details never leak to clients.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
