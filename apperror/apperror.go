// Package apperror defines the application error taxonomy and its mapping
// onto HTTP responses. Services return *AppError values; handlers convert
// them with the shared response helpers so that no raw error ever reaches
// a client.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents a persistence failure on an otherwise valid operation.
	DatabaseError
	// ConfigError represents an error in application configuration.
	ConfigError
	// AuthError represents an authentication failure (missing or invalid token).
	AuthError
	// ForbiddenError represents an authorization failure (valid token, wrong owner).
	ForbiddenError
	// NotFoundError represents an absent resource.
	NotFoundError
	// ValidationError represents malformed, missing or oversized input.
	ValidationError
	// BadRequestError represents a generic malformed request.
	BadRequestError
	// InternalError represents a generic internal server error.
	InternalError
	// MigrationError represents a failure while running database migrations.
	MigrationError
	// ConflictError represents a uniqueness violation (duplicate name or email).
	ConflictError
)

// AppError is the error type used throughout the application. It carries a
// user-facing message, an optional per-field message map for validation and
// conflict errors, and an optional wrapped cause that is never exposed.
type AppError struct {
	Type    ErrorType
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, supporting errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithFields attaches a field-keyed message map to the error and returns it.
func (e *AppError) WithFields(fields map[string][]string) *AppError {
	e.Fields = fields
	return e
}

// StatusCode returns the HTTP status code appropriate for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError of an arbitrary type.
func NewAppError(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlying,
	}
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return NewAppError(DatabaseError, message, underlying)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, underlying error) *AppError {
	return NewAppError(ConfigError, message, underlying)
}

// NewAuthError creates a new AuthError.
func NewAuthError(message string, underlying error) *AppError {
	return NewAppError(AuthError, message, underlying)
}

// NewForbiddenError creates a new ForbiddenError.
func NewForbiddenError(message string, underlying error) *AppError {
	return NewAppError(ForbiddenError, message, underlying)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, underlying error) *AppError {
	return NewAppError(NotFoundError, message, underlying)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string, underlying error) *AppError {
	return NewAppError(ValidationError, message, underlying)
}

// NewBadRequestError creates a new BadRequestError.
func NewBadRequestError(message string, underlying error) *AppError {
	return NewAppError(BadRequestError, message, underlying)
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string, underlying error) *AppError {
	return NewAppError(InternalError, message, underlying)
}

// NewMigrationError creates a new MigrationError.
func NewMigrationError(message string, underlying error) *AppError {
	return NewAppError(MigrationError, message, underlying)
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string, underlying error) *AppError {
	return NewAppError(ConflictError, message, underlying)
}

// ErrorResponse is the JSON body returned to clients for any failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
	// Fields carries per-field messages for validation and conflict errors.
	Fields map[string][]string `json:"fields,omitempty"`
}

// ToResponse converts an AppError to the client-facing response payload.
// Only Message and Fields are exposed; the wrapped cause stays internal.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Fields: e.Fields}
}

// FromError attempts to convert a generic error to an *AppError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks whether err is a NotFoundError.
func IsNotFound(err error) bool { return isType(err, NotFoundError) }

// IsAuthError checks whether err is an AuthError.
func IsAuthError(err error) bool { return isType(err, AuthError) }

// IsForbidden checks whether err is a ForbiddenError.
func IsForbidden(err error) bool { return isType(err, ForbiddenError) }

// IsValidationError checks whether err is a ValidationError.
func IsValidationError(err error) bool { return isType(err, ValidationError) }

// IsConflictError checks whether err is a ConflictError.
func IsConflictError(err error) bool { return isType(err, ConflictError) }
