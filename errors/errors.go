package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the API-facing error type. Handlers translate it directly into
// the response envelope status code.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d", e.Message, e.Status)
}

// New creates a new Error with the given message and HTTP status.
func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrForbidden           = New("forbidden", http.StatusForbidden)
	ErrInvalidPassword     = New("invalid credentials", http.StatusUnauthorized)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)

	InActiveUserError = errors.New("user is inactive")
)

// ErrInvalidStatus reports a status value outside the incident status enum.
func ErrInvalidStatus(status string) *Error {
	return New(fmt.Sprintf("invalid status %q", status), http.StatusBadRequest)
}

// GetUniqueContraintError maps duplicate email/mobile failures from the
// repository to a field-specific 400 so registration conflicts surface
// cleanly instead of as a 500.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("user with this email already exists", http.StatusBadRequest)
	case strings.Contains(msg, "mobile"), strings.Contains(msg, "phone"):
		return New("user with this mobile already exists", http.StatusBadRequest)
	default:
		return New(msg, http.StatusBadRequest)
	}
}
