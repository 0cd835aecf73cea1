package errors

import (
	"maps"
	"net/http"

	"authgate/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int               // HTTP status code
	ErrorCode() string           // Business error code
	Message() string             // User-facing message, rendered verbatim
	Details() string             // Detailed error information (optional, never rendered)
	Fields() map[string][]string // Per-field messages, nil when the error carries none
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	fields    map[string][]string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError with the same error code, so copies made by
// WithDetails or WithFields still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}

	return other.errorCode == e.errorCode
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-facing error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Fields returns per-field messages attached with WithFields
func (e *BaseError) Fields() map[string][]string {
	return e.fields
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	cloned := *e
	cloned.details = details

	return &cloned
}

// WithFields attaches per-field messages. A non-nil empty map is kept as is so
// the rendered body still carries an empty messages object.
func (e *BaseError) WithFields(fields map[string][]string) *BaseError {
	cloned := *e
	if fields == nil {
		fields = map[string][]string{}
	}
	cloned.fields = maps.Clone(fields)

	return &cloned
}

// Predefined error types
var (
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid username or password",
		"",
	)

	ErrTokenRejected = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_REJECTED",
		"Rejected!",
		"",
	)

	ErrConfirmationRejected = NewBaseError(
		http.StatusUnauthorized,
		"CONFIRMATION_REJECTED",
		"confirmation rejected",
		"",
	)

	ErrNewPasswordRejected = NewBaseError(
		http.StatusUnauthorized,
		"NEW_PASSWORD_REJECTED",
		"new password rejected",
		"",
	)

	ErrNotLoggedIn = NewBaseError(
		http.StatusUnauthorized,
		"NOT_LOGGED_IN",
		"Please log in",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"Username or email has already been taken",
		"",
	)

	ErrRegistrationRejected = NewBaseError(
		http.StatusUnprocessableEntity,
		"REGISTRATION_REJECTED",
		"Registration rejected",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-facing error message
func (e *DatabaseExecuteError) Message() string {
	return "Internal server error"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Fields returns nil; storage faults carry no field messages
func (e *DatabaseExecuteError) Fields() map[string][]string {
	return nil
}
