package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error identifier sent to clients.
type Code string

const (
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeMethodNotAllowed   Code = "METHOD_NOT_ALLOWED"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Code     Code              `json:"code"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
	HTTPCode int               `json:"-"`
	Err      error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

// Validation reports field-level input problems. details maps the JSON field
// name to a human readable message.
func Validation(details map[string]string) *AppError {
	e := New(CodeValidationFailed, "Validation failed", http.StatusUnprocessableEntity)
	e.Details = details
	return e
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusUnprocessableEntity)
}

func NotFound(format string, args ...any) *AppError {
	return New(CodeNotFound, fmt.Sprintf(format, args...), http.StatusNotFound)
}

func Conflict(format string, args ...any) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...), http.StatusConflict)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid Credentials", http.StatusUnauthorized)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

// As reports whether err carries an *AppError and returns it.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an *AppError with the given code.
func HasCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
