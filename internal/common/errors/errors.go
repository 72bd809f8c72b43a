// Package errors provides the structured error taxonomy shared by the search
// service and its HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller errors
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidSortOption   ErrorCode = "INVALID_SORT_OPTION"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeInvalidPagination   ErrorCode = "INVALID_PAGINATION"

	// Data source errors
	ErrCodeUpstreamFetchFailed   ErrorCode = "UPSTREAM_FETCH_FAILED"
	ErrCodeUpstreamTimeout       ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeDataSourceUnavailable ErrorCode = "DATA_SOURCE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

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

// WithMetadata returns the error with an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable caller error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSortOptionError rejects a field/direction pair outside the catalog.
func NewInvalidSortOptionError(field, direction string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSortOption,
		Message:   "Unsupported sort option",
		Details:   fmt.Sprintf("field: %s, direction: %s", field, direction),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidPaginationError rejects a negative page size.
func NewInvalidPaginationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPagination,
		Message:   "Invalid pagination parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFetchFailedError wraps a failed candidate fetch. It is marked
// retryable for the caller's benefit; search itself never retries.
func NewUpstreamFetchFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFetchFailed,
		Message:   "Listing data source request failed",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamTimeoutError reports a candidate fetch that exceeded its deadline.
func NewUpstreamTimeoutError(source string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Listing data source timed out",
		Details:   fmt.Sprintf("source: %s, timeout: %s", source, timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDataSourceUnavailableError is used by readiness checks.
func NewDataSourceUnavailableError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataSourceUnavailable,
		Message:   fmt.Sprintf("Data source '%s' unavailable", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Classification
// ==========================

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsValidation reports whether err is a caller error.
func IsValidation(err error) bool {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeValidationFailed, ErrCodeInvalidSortOption, ErrCodeInvalidFilterFormat, ErrCodeInvalidPagination:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status returned to HTTP callers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidSortOption, ErrCodeInvalidFilterFormat, ErrCodeInvalidPagination:
		return http.StatusBadRequest
	case ErrCodeUpstreamFetchFailed:
		return http.StatusBadGateway
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeDataSourceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
