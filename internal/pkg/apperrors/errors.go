package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Store errors
	ErrStore = errors.New("store unavailable")
)

// Paper and user errors. Both are not-found conditions.
var (
	ErrPaperNotFound      = NewResourceNotFoundError("Question paper not found")
	ErrUserNotFound       = NewResourceNotFoundError("User not found")
	ErrEmailAlreadyExists = NewConflictError("Email already registered")
)

// Upload errors
var (
	ErrFileRequired    = NewValidationError("file", "Please upload a file")
	ErrUnsupportedFile = NewValidationError("file", "Unsupported file type")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// ValidationError is malformed caller input. Message is safe to show to the caller.
// Fields optionally carries every failing field when more than one was rejected.
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidationFailed) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure of the underlying store (unreachable, timeout,
// bad query). Op names the failed operation for server-side logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is makes errors.Is(err, ErrStore) hold while keeping the cause reachable via Unwrap.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError; nil stays nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
