// Package apperr carries an HTTP status alongside an error message so that
// services can decide how a failure is reported without importing net/http
// handlers.
package apperr

import (
	"errors"
	"net/http"
)

// StatusError is an error whose message is safe to show to the client.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

func New(status int, msg string) *StatusError {
	return &StatusError{Status: status, Message: msg}
}

func BadRequest(msg string) *StatusError { return New(http.StatusBadRequest, msg) }
func Unauthorized() *StatusError         { return New(http.StatusUnauthorized, "unauthorized") }
func Forbidden(msg string) *StatusError  { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *StatusError   { return New(http.StatusNotFound, msg) }
func Conflict(msg string) *StatusError   { return New(http.StatusConflict, msg) }
func TooManyRequests() *StatusError      { return New(http.StatusTooManyRequests, "too many requests") }

// Status extracts the HTTP status of err, defaulting to 500.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}
