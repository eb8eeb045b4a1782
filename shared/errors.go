package shared

import (
	"errors"
	"net/http"
)

// AppError is an error that carries the HTTP status it should be reported with.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	appErr := NewAppError(http.StatusBadRequest, err, message)
	if err != nil {
		appErr.Data = err.Error()
	}
	return appErr
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewTooManyRequestsError(message string, data interface{}) *AppError {
	appErr := NewAppError(http.StatusTooManyRequests, nil, message)
	appErr.Data = data
	return appErr
}

func NewServiceUnavailableError(err error, message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, err, message)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
