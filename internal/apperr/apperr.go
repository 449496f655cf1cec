// Package apperr carries an HTTP status alongside an error message so that
// services can fail with a meaning the transport layer understands.
package apperr

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// legacySeparator joins a message and its status in the encoded form
// "message|||status".
const legacySeparator = "|||"

// Error is a failure with an associated HTTP status code.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Encode renders the error in the "message|||status" form.
func (e *Error) Encode() string {
	return e.Message + legacySeparator + strconv.Itoa(e.Status)
}

// New builds an Error with the given status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Parse decodes "message|||status". Strings without a valid status suffix
// become 500 errors carrying the whole string as message.
func Parse(s string) *Error {
	idx := strings.LastIndex(s, legacySeparator)
	if idx < 0 {
		return New(http.StatusInternalServerError, s)
	}
	status, err := strconv.Atoi(strings.TrimSpace(s[idx+len(legacySeparator):]))
	if err != nil || status < 100 || status > 599 {
		return New(http.StatusInternalServerError, s)
	}
	return New(status, s[:idx])
}

// StatusOf returns the status attached to err, or 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an Error with the given status.
func Is(err error, status int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Status == status
}
