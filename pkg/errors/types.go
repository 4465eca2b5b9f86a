package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeInternal      ErrorType = "internal"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeUnauthorized  ErrorType = "unauthorized"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeExternal      ErrorType = "external"
	ErrorTypeTransient     ErrorType = "transient"
	ErrorTypeConfiguration ErrorType = "configuration"
)

// AppError represents an application error with additional context
type AppError struct {
	Type       ErrorType         `json:"type"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Err        error             `json:"-"`
	Retryable  bool              `json:"retryable"`
	StatusCode int               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code and type so sentinel values can be compared with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

var (
	ErrNotConfigured = &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       "NOT_CONFIGURED",
		Message:    "service is not configured",
		StatusCode: http.StatusServiceUnavailable,
	}
	ErrNotFound = &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "NOT_FOUND",
		Message:    "resource not found",
		StatusCode: http.StatusNotFound,
	}
	ErrCircuitOpen = &AppError{
		Type:       ErrorTypeTransient,
		Code:       "CIRCUIT_OPEN",
		Message:    "circuit breaker is open",
		StatusCode: http.StatusServiceUnavailable,
	}
)

// New creates a new AppError with the status code implied by its type.
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		StatusCode: statusForType(errType),
		Retryable:  IsTransient(errType),
	}
}

// Wrap wraps an error with a message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapWithType wraps an error as an AppError of the given type.
func WrapWithType(err error, errType ErrorType, code, message string) *AppError {
	appErr := New(errType, code, message)
	appErr.Err = err
	return appErr
}

// WrapExternal wraps a failure from a collaborator service.
func WrapExternal(err error, service, message string) *AppError {
	return WrapWithType(err, ClassifyError(err), "EXTERNAL_ERROR", message).WithDetail("service", service)
}

// FromStatus builds an AppError for a non-2xx upstream response.
func FromStatus(service string, status int, message string) *AppError {
	t := ClassifyHTTPError(status)
	if t == "" {
		t = ErrorTypeInternal
	}
	return &AppError{
		Type:       t,
		Code:       fmt.Sprintf("UPSTREAM_%d", status),
		Message:    message,
		StatusCode: status,
		Retryable:  IsTransient(t) || status == http.StatusTooManyRequests,
		Details:    map[string]string{"service": service},
	}
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION_ERROR", message)
}

func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, "NOT_FOUND", resource+" not found")
}

func NewUnauthorizedError(message string) *AppError {
	return New(ErrorTypeUnauthorized, "UNAUTHORIZED", message)
}

func NewForbiddenError(message string) *AppError {
	return New(ErrorTypeForbidden, "FORBIDDEN", message)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, "INTERNAL_ERROR", message)
}

// IsTransient reports whether errors of this type are worth retrying.
func IsTransient(errType ErrorType) bool {
	switch errType {
	case ErrorTypeTransient, ErrorTypeTimeout, ErrorTypeExternal, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return ShouldRetry(err)
}

// GetType returns the error type
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ClassifyError(err)
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return statusForType(ClassifyError(err))
}

func statusForType(t ErrorType) int {
	switch t {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeExternal, ErrorTypeTransient:
		return http.StatusBadGateway
	case ErrorTypeConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
