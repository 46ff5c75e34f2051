package common

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError. They exist for logs; HTTP clients only see
// the coarse envelope.
const (
	CodeConfig  = "CONFIG_ERROR"
	CodeUpload  = "UPLOAD_ERROR"
	CodeStorage = "STORAGE_ERROR"
	CodeExtract = "EXTRACT_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoUpload     = errors.New("no file uploaded")
	ErrTooLarge     = errors.New("upload exceeds size limit")
	ErrMalformed    = errors.New("malformed model output")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode returns the AppError code anywhere in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
