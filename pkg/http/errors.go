package http

import (
	"fmt"
	"net/http"
)

// Error codes shared by every handler.
const (
	CodeBadRequest = "ERR_BAD_REQUEST"
	CodeConflict   = "ERR_CONFLICT"
	CodeUpstream   = "ERR_UPSTREAM"
	CodeInternal   = "ERR_INTERNAL"
)

// AppError is an error that knows its HTTP status. Err is logged but never
// serialized.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the underlying cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, fmt.Sprintf(format, a...))
}

// ConflictError reports work that cannot start in the current state.
func ConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message)
}

// BadGatewayError reports a failing upstream such as the candle source.
func BadGatewayError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, CodeUpstream, message)
}

func InternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, message)
}
