// Package httperr defines the JSON error envelope returned by every handler.
package httperr

import "net/http"

// Error is an HTTP-mappable application error with a stable machine code.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Envelope is the wire shape of every error response.
type Envelope struct {
	Error *Error `json:"error"`
}

// New creates an error with an explicit status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithField attaches the offending request field to a copy of the error.
func (e *Error) WithField(field string) *Error {
	clone := *e
	clone.Field = field
	return &clone
}

// Common envelope constructors keyed by taxonomy.
func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "UNAUTHENTICATED", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, "RATE_LIMITED", message)
}

// Internal is the only 500 shape callers ever see; details stay in logs.
func Internal() *Error {
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
