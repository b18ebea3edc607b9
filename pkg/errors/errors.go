package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound        = errors.New("resource not found")
	ErrBadRequest      = errors.New("bad request")
	ErrInternal        = errors.New("internal server error")
	ErrValidation      = errors.New("validation error")
	ErrExtraction      = errors.New("extraction failed")
	ErrExternalService = errors.New("external service failure")
	ErrResponseParse   = errors.New("unparseable service response")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Extraction creates a file-scoped extraction error. These are recorded on the
// per-file result and never abort a batch.
func Extraction(path string, err error) *AppError {
	return &AppError{
		Err:        errors.Join(ErrExtraction, err),
		Code:       "EXTRACTION_FAILED",
		Message:    fmt.Sprintf("could not extract reviewable content from %s", path),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// ExternalService wraps a failure from a remote collaborator (parser,
// rasterizer, OCR engine, review model).
func ExternalService(service string, err error) *AppError {
	return &AppError{
		Err:        errors.Join(ErrExternalService, err),
		Code:       "EXTERNAL_SERVICE_ERROR",
		Message:    fmt.Sprintf("%s call failed", service),
		StatusCode: http.StatusBadGateway,
	}
}

// ResponseParse marks a service response that could not be decoded. Callers
// are expected to recover with a default value rather than surface this.
func ResponseParse(service string, err error) *AppError {
	return &AppError{
		Err:        errors.Join(ErrResponseParse, err),
		Code:       "RESPONSE_PARSE_ERROR",
		Message:    fmt.Sprintf("%s returned an unparseable response", service),
		StatusCode: http.StatusBadGateway,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
