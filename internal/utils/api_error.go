package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error that carries the HTTP status it should be rendered with.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(status int, code, format string, args ...any) *APIError {
	return &APIError{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *APIError {
	return newAPIError(http.StatusBadRequest, "Bad Request", format, args...)
}

func Unauthorized(format string, args ...any) *APIError {
	return newAPIError(http.StatusUnauthorized, "Unauthorized", format, args...)
}

func Forbidden(format string, args ...any) *APIError {
	return newAPIError(http.StatusForbidden, "Forbidden", format, args...)
}

func NotFound(format string, args ...any) *APIError {
	return newAPIError(http.StatusNotFound, "Not Found", format, args...)
}

func Conflict(format string, args ...any) *APIError {
	return newAPIError(http.StatusConflict, "Conflict", format, args...)
}

func TooLarge(format string, args ...any) *APIError {
	return newAPIError(http.StatusRequestEntityTooLarge, "Request Entity Too Large", format, args...)
}

func Unavailable(format string, args ...any) *APIError {
	return newAPIError(http.StatusServiceUnavailable, "Service Unavailable", format, args...)
}

// StatusOf returns the HTTP status and short code for err. Errors that are not
// APIErrors are internal server errors.
func StatusOf(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Code
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
