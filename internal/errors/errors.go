// Package errors provides the application error taxonomy and its mapping to
// HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

type ErrorCode string

const (
	// Client input
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeDuplicateRecord  ErrorCode = "DUPLICATE_RECORD"
	ErrCodeInvalidFileType  ErrorCode = "INVALID_FILE_TYPE"
	ErrCodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
	ErrCodeEmptyFile        ErrorCode = "EMPTY_FILE"

	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Server side
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeUploadFailed   ErrorCode = "UPLOAD_FAILED"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// StandardError is a structured application error. Message is safe to show
// to any caller; Details may carry internal information.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// IsClientError reports whether the error is caused by the caller's input.
func (e *StandardError) IsClientError() bool {
	s := HTTPStatus(e.Code)
	return s >= 400 && s < 500
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Constructors
// ==========================

// NewInvalidIDError reports a malformed identifier for the named entity.
func NewInvalidIDError(entity, id string) *StandardError {
	return newError(ErrCodeInvalidID, fmt.Sprintf("Invalid %s ID format", strings.ToLower(entity)), fmt.Sprintf("id: %q", id), nil)
}

func NewInvalidInputError(message string) *StandardError {
	return newError(ErrCodeInvalidInput, message, "", nil)
}

// NewValidationError folds the individual problems into the message since
// they describe the caller's own payload.
func NewValidationError(problems []string) *StandardError {
	msg := "Validation failed"
	if len(problems) > 0 {
		msg = msg + ": " + strings.Join(problems, "; ")
	}
	return newError(ErrCodeValidationFailed, msg, "", nil)
}

func NewDuplicateError(entity, field string, cause error) *StandardError {
	return newError(ErrCodeDuplicateRecord, fmt.Sprintf("%s with this %s already exists", entity, field), errString(cause), cause)
}

func NewInvalidFileTypeError(mimetype string) *StandardError {
	return newError(ErrCodeInvalidFileType, "Invalid file type. Only PDF and Word documents are allowed", fmt.Sprintf("mimetype: %q", mimetype), nil)
}

func NewFileTooLargeError(maxSize int64) *StandardError {
	return newError(ErrCodeFileTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB", maxSize/(1<<20)), fmt.Sprintf("limit: %d bytes", maxSize), nil)
}

func NewEmptyFileError() *StandardError {
	return newError(ErrCodeEmptyFile, "Uploaded file is empty", "", nil)
}

func NewNotFoundError(entity string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", entity), "", nil)
}

// NewStorageError wraps a document store failure for the given operation.
func NewStorageError(operation string, cause error) *StandardError {
	return newError(ErrCodeStorageFailure, fmt.Sprintf("Failed to %s", operation), errString(cause), cause)
}

func NewUploadFailedError(cause error) *StandardError {
	return newError(ErrCodeUploadFailed, "Failed to store uploaded file", errString(cause), cause)
}

func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Internal server error", errString(cause), cause)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Inspection
// ==========================

// As returns the first StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Normalize converts any error into a StandardError, treating unknown
// errors as internal.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	if se, ok := As(err); ok {
		return se
	}
	return NewInternalError(err)
}

func HasCode(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}

func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidID, ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeDuplicateRecord,
		ErrCodeInvalidFileType, ErrCodeFileTooLarge, ErrCodeEmptyFile:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
