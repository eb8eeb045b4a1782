package store

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorRemoteUnavailable ErrorCode = "remote_unavailable"
	ErrorRemoteRejected    ErrorCode = "remote_rejected"
	ErrorLocalUnavailable  ErrorCode = "local_unavailable"
	ErrorNotFound          ErrorCode = "not_found"
)

var ErrNotConfigured = errors.New("not configured")

type Error struct {
	Code  ErrorCode
	Store string
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "store error"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s %s: %s", e.Store, e.Op, e.Code)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Store, e.Op, e.Code, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewError(code ErrorCode, store, op string, cause error) *Error {
	return &Error{Code: code, Store: store, Op: op, Cause: cause}
}

// CodeOf extracts the code of a store error. Unclassified errors report fallback.
func CodeOf(err error, fallback ErrorCode) ErrorCode {
	var se *Error
	if errors.As(err, &se) && se != nil {
		return se.Code
	}
	return fallback
}

func IsNotFound(err error) bool {
	return err != nil && CodeOf(err, "") == ErrorNotFound
}
