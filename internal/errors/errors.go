package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"marketpulse/internal/analytics"
	"marketpulse/internal/series"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer   = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// FromDomain maps the analytics core's typed errors onto API errors.
// Every core failure is a recoverable caller condition, so they all land
// in the 4xx range; anything unrecognized is a 500.
func FromDomain(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
	}

	var emptyInput *series.EmptyInputError
	if errors.As(err, &emptyInput) {
		return NewWithDetails(http.StatusUnprocessableEntity, "EMPTY_INPUT", "No usable data for the requested tickers", err.Error())
	}

	var invalidPrice *series.InvalidPriceError
	if errors.As(err, &invalidPrice) {
		return NewWithDetails(http.StatusUnprocessableEntity, "INVALID_PRICE", "A price ratio could not be computed", err.Error())
	}

	var unsupported *analytics.UnsupportedMethodError
	if errors.As(err, &unsupported) {
		return NewWithDetails(http.StatusBadRequest, "UNSUPPORTED_METHOD", "Unknown method identifier", unsupported.Method)
	}

	var noColumns *analytics.NoNumericColumnsError
	if errors.As(err, &noColumns) {
		return NewWithDetails(http.StatusUnprocessableEntity, "NO_NUMERIC_COLUMNS", "No numeric columns with data", err.Error())
	}

	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}
