// Package errors provides the error taxonomy shared by the finadvisor client.
// Every failure that reaches a view is an *AppError so the user-facing message
// is decided in one place instead of at each call site.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents a structured client error with an error code,
// human-readable message, HTTP status code (when one was received), and an
// optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an *AppError with the same code. This lets
// callers compare against the sentinels below even after Wrap/WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithStatus creates a new AppError with a custom message and HTTP status.
func WithStatus(sentinel *AppError, status int, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: status,
	}
}

// Authentication & session errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Session expired, please sign in again", StatusCode: http.StatusUnauthorized}
	ErrNoSession    = &AppError{Code: "NO_SESSION", Message: "Not signed in"}
)

// Transport errors.
var (
	ErrBackend = &AppError{Code: "BACKEND_ERROR", Message: "HTTP error"}
	ErrNetwork = &AppError{Code: "NETWORK_ERROR", Message: "Request failed"}
	ErrDecode  = &AppError{Code: "DECODE_ERROR", Message: "Unexpected response from server"}
)

// General errors.
var (
	ErrInvalidInput         = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound             = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConfirmationDeclined = &AppError{Code: "CONFIRMATION_DECLINED", Message: "Cancelled"}
	ErrInternal             = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred"}
)

// UserMessage converts err into the text shown in a transient notification.
// Backend validation messages are surfaced verbatim; transport failures get a
// generic message; anything unexpected falls back to the internal error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

// StatusCode returns the HTTP status carried by err, or 0 when none.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}
