// Package errors provides the unified error type used across all
// application layers. Every error that crosses a layer boundary is an
// *AppError so that handlers, services, and repositories classify and
// log failures the same way.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrorType is the coarse classification used for HTTP mapping and logging.
type ErrorType string

const (
	// Business errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeDomain       ErrorType = "DOMAIN"

	// Infrastructure errors
	ErrorTypeInternal   ErrorType = "INTERNAL"
	ErrorTypeTimeout    ErrorType = "TIMEOUT"
	ErrorTypeConnection ErrorType = "CONNECTION"
	ErrorTypeRateLimit  ErrorType = "RATE_LIMIT"

	// External collaborator errors
	ErrorTypeExternal    ErrorType = "EXTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// ErrorSeverity drives log levels and alerting.
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "LOW"
	SeverityMedium   ErrorSeverity = "MEDIUM"
	SeverityHigh     ErrorSeverity = "HIGH"
	SeverityCritical ErrorSeverity = "CRITICAL"
)

// AppError is the single error type shared by all layers.
type AppError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`    // stable code for programmatic handling
	Message string    `json:"message"` // human-readable message
	Details string    `json:"details,omitempty"`

	Operation string `json:"operation,omitempty"` // operation that failed
	Resource  string `json:"resource,omitempty"`  // resource being operated on
	UserID    string `json:"userId,omitempty"`
	RequestID string `json:"requestId,omitempty"`

	Severity   ErrorSeverity `json:"severity"`
	Retryable  bool          `json:"retryable"`
	RetryAfter time.Duration `json:"retryAfter,omitempty"`
	Cause      error         `json:"-"`

	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Builder provides fluent construction of AppError instances.
type Builder struct {
	err *AppError
}

// NewError starts a builder for the given type, code, and message.
func NewError(errType ErrorType, code, message string) *Builder {
	_, file, line, _ := runtime.Caller(1)
	return &Builder{
		err: &AppError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Severity: SeverityMedium,
			File:     file,
			Line:     line,
		},
	}
}

// WithDetails adds free-form context to the error.
func (b *Builder) WithDetails(details string) *Builder {
	b.err.Details = details
	return b
}

// WithOperation records the operation that failed.
func (b *Builder) WithOperation(operation string) *Builder {
	b.err.Operation = operation
	return b
}

// WithResource records the resource being operated on.
func (b *Builder) WithResource(resource string) *Builder {
	b.err.Resource = resource
	return b
}

// WithUserID attaches user context.
func (b *Builder) WithUserID(userID string) *Builder {
	b.err.UserID = userID
	return b
}

// WithRequestID attaches request tracing context.
func (b *Builder) WithRequestID(requestID string) *Builder {
	b.err.RequestID = requestID
	return b
}

// WithSeverity overrides the default severity.
func (b *Builder) WithSeverity(severity ErrorSeverity) *Builder {
	b.err.Severity = severity
	return b
}

// WithRetryable marks whether the failed operation may be retried.
func (b *Builder) WithRetryable(retryable bool) *Builder {
	b.err.Retryable = retryable
	return b
}

// WithRetryAfter sets the retry delay and implies retryability.
func (b *Builder) WithRetryAfter(d time.Duration) *Builder {
	b.err.RetryAfter = d
	b.err.Retryable = true
	return b
}

// WithCause attaches the underlying error.
func (b *Builder) WithCause(cause error) *Builder {
	b.err.Cause = cause
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *AppError {
	return b.err
}

// Convenience constructors, preconfigured with sensible severity and
// retryability for each class of failure.

func Validation(code, message string) *Builder {
	return NewError(ErrorTypeValidation, code, message).
		WithSeverity(SeverityLow).
		WithRetryable(false)
}

func NotFound(code, message string) *Builder {
	return NewError(ErrorTypeNotFound, code, message).
		WithSeverity(SeverityLow).
		WithRetryable(false)
}

func Conflict(code, message string) *Builder {
	return NewError(ErrorTypeConflict, code, message).
		WithSeverity(SeverityMedium).
		WithRetryable(true)
}

func Unauthorized(code, message string) *Builder {
	return NewError(ErrorTypeUnauthorized, code, message).
		WithSeverity(SeverityMedium).
		WithRetryable(false)
}

func Forbidden(code, message string) *Builder {
	return NewError(ErrorTypeForbidden, code, message).
		WithSeverity(SeverityMedium).
		WithRetryable(false)
}

func Internal(code, message string) *Builder {
	return NewError(ErrorTypeInternal, code, message).
		WithSeverity(SeverityHigh).
		WithRetryable(false)
}

func Timeout(code, message string) *Builder {
	return NewError(ErrorTypeTimeout, code, message).
		WithSeverity(SeverityMedium).
		WithRetryable(true)
}

func Connection(code, message string) *Builder {
	return NewError(ErrorTypeConnection, code, message).
		WithSeverity(SeverityHigh).
		WithRetryable(true)
}

func External(code, message string) *Builder {
	return NewError(ErrorTypeExternal, code, message).
		WithSeverity(SeverityMedium).
		WithRetryable(true)
}

func Unavailable(code, message string) *Builder {
	return NewError(ErrorTypeUnavailable, code, message).
		WithSeverity(SeverityHigh).
		WithRetryable(true)
}

// Classification helpers.

// IsType reports whether err (or anything in its chain) is an AppError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func IsValidation(err error) bool   { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool     { return IsType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool     { return IsType(err, ErrorTypeConflict) }
func IsUnauthorized(err error) bool { return IsType(err, ErrorTypeUnauthorized) }
func IsForbidden(err error) bool    { return IsType(err, ErrorTypeForbidden) }
func IsDomain(err error) bool       { return IsType(err, ErrorTypeDomain) }
func IsInternal(err error) bool     { return IsType(err, ErrorTypeInternal) }
func IsTimeout(err error) bool      { return IsType(err, ErrorTypeTimeout) }

// IsRetryable reports whether the failed operation may be retried.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetSeverity returns the severity of an error, defaulting to medium for
// errors outside the unified system.
func GetSeverity(err error) ErrorSeverity {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Severity
	}
	return SeverityMedium
}

// GetCode returns the stable code of an error, or empty for foreign errors.
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Wrap adds operation context to an existing error while preserving its
// classification. Foreign errors become internal errors.
func Wrap(err error, operation, message string) *AppError {
	if err == nil {
		return nil
	}

	var existing *AppError
	if errors.As(err, &existing) {
		return &AppError{
			Type:      existing.Type,
			Code:      existing.Code,
			Message:   message,
			Details:   existing.Message,
			Operation: operation,
			Resource:  existing.Resource,
			UserID:    existing.UserID,
			RequestID: existing.RequestID,
			Severity:  existing.Severity,
			Retryable: existing.Retryable,
			Cause:     err,
			File:      existing.File,
			Line:      existing.Line,
		}
	}

	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Type:      ErrorTypeInternal,
		Code:      CodeInternalError.String(),
		Message:   message,
		Details:   err.Error(),
		Operation: operation,
		Severity:  SeverityMedium,
		Cause:     err,
		File:      file,
		Line:      line,
	}
}
