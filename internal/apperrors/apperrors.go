// Package apperrors defines the uniform operational error type and the
// boundary translator that turns every raised error into exactly one
// JSON response.
package apperrors

import (
	"fmt"
	"net/http"
)

// Error codes. All but CodeInternal are operational: expected failures
// whose message is safe to return verbatim.
const (
	CodeValidationFailed      = "ValidationFailed"
	CodeDuplicateKey          = "DuplicateKey"
	CodeNotFound              = "NotFound"
	CodeUnauthenticated       = "Unauthenticated"
	CodeStaleToken            = "StaleToken"
	CodeForbidden             = "Forbidden"
	CodeTokenInvalidOrExpired = "TokenInvalidOrExpired"
	CodeInvalidCredentials    = "InvalidCredentials"
	CodeInternal              = "InternalError"
)

// AppError is an error with an HTTP status and a user-facing message.
type AppError struct {
	Code       string
	StatusCode int
	Message    string
	Err        error // wrapped cause, shown only in verbose mode
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Operational reports whether the error is safe to surface verbatim.
func (e *AppError) Operational() bool { return e.Code != CodeInternal }

func New(code string, statusCode int, message string) *AppError {
	return &AppError{Code: code, StatusCode: statusCode, Message: message}
}

func ValidationFailed(message string) *AppError {
	return New(CodeValidationFailed, http.StatusBadRequest, message)
}

func DuplicateKey(message string) *AppError {
	return New(CodeDuplicateKey, http.StatusBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, http.StatusNotFound, message)
}

func Unauthenticated(message string) *AppError {
	return New(CodeUnauthenticated, http.StatusUnauthorized, message)
}

func StaleToken(message string) *AppError {
	return New(CodeStaleToken, http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, http.StatusForbidden, message)
}

func TokenInvalidOrExpired(message string) *AppError {
	return New(CodeTokenInvalidOrExpired, http.StatusBadRequest, message)
}

func InvalidCredentials(message string) *AppError {
	return New(CodeInvalidCredentials, http.StatusUnauthorized, message)
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}
