package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is an error the JSON API answers with a fixed status and code.
// Message is shown to the user, so selection misses carry the Danish text
// the pages show.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected query parameter
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every rejected parameter of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error codes of the dashboard API
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeNoData           = "NO_DATA"
	CodeNoCoordinates    = "NO_COORDINATES"
	CodeDirectionMissing = "DIRECTION_INCOMPLETE"
	CodeInsufficientData = "INSUFFICIENT_DATA"
)

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
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

// ErrValidationFailed is answered when a request fails validation without
// naming a field.
var ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")

// InvalidRequestWithError rejects query parameters that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation rejects a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors rejects several fields at once
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errors})
}

// NotFoundError reports an unknown resource such as a chart name
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// NoDataError reports a selection that matched nothing
func NoDataError(message string, selection interface{}) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNoData, message, selection)
}

// NoCoordinatesError reports a map without a single placeable institution
func NoCoordinatesError(message string, selection interface{}) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNoCoordinates, message, selection)
}

// DirectionIncompleteError reports a FagRetning missing from one of the
// prediction datasets.
func DirectionIncompleteError(message string, selection interface{}) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeDirectionMissing, message, selection)
}

// InsufficientDataError reports a prediction model without training rows
func InsufficientDataError(cause error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeInsufficientData,
		"Not enough rows to fit the prediction models", cause.Error())
}
