package domain

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a generation or rendering failure.
type ErrorType string

const (
	// ErrorTypeValidation indicates required input was missing or blank.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNetwork indicates the service could not be reached.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeService indicates the service answered with a non-2xx status.
	ErrorTypeService ErrorType = "service"

	// ErrorTypeResource indicates a result could not be published as a resource.
	ErrorTypeResource ErrorType = "resource"

	// ErrorTypeRenderContextLoss indicates a rendering surface lost its graphics context.
	ErrorTypeRenderContextLoss ErrorType = "render_context_loss"

	// ErrorTypeRender indicates a failure raised while rendering a guarded subtree.
	ErrorTypeRender ErrorType = "render"
)

// NetworkFailureMessage is shown when no response was received.
const NetworkFailureMessage = "failed to generate image: the generation service could not be reached"

var (
	// ErrSubmissionInFlight is returned when a submit arrives while a request is in flight.
	ErrSubmissionInFlight = errors.New("a generation request is already in flight")

	// ErrClosed is returned by components used after teardown.
	ErrClosed = errors.New("component closed")

	// ErrUnsupportedMedia is returned when an upload is not an image.
	ErrUnsupportedMedia = errors.New("please upload a valid image file")
)

// GenerationError is the canonical failure carried by the Error phase.
type GenerationError struct {
	// Type is the category of error
	Type ErrorType

	// Message is the human-readable error message
	Message string

	// StatusCode is the HTTP status for service errors
	StatusCode int

	// Body is the verbatim response body for service errors
	Body string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether resubmitting the same input may succeed.
// Validation errors need corrected input instead.
func (e *GenerationError) Retryable() bool {
	return e.Type == ErrorTypeNetwork || e.Type == ErrorTypeService
}

// ErrValidation creates a validation error.
func ErrValidation(message string) *GenerationError {
	return &GenerationError{Type: ErrorTypeValidation, Message: message}
}

// ErrNetwork creates a network error wrapping the transport failure.
func ErrNetwork(err error) *GenerationError {
	return &GenerationError{Type: ErrorTypeNetwork, Message: NetworkFailureMessage, Err: err}
}

// ErrService creates a service error from a non-2xx response.
func ErrService(statusCode int, body string) *GenerationError {
	return &GenerationError{
		Type:       ErrorTypeService,
		Message:    fmt.Sprintf("generation service returned status %d: %s", statusCode, body),
		StatusCode: statusCode,
		Body:       body,
	}
}

// AsGenerationError extracts a *GenerationError from err.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// IsType reports whether err is a *GenerationError of the given type.
func IsType(err error, t ErrorType) bool {
	genErr, ok := AsGenerationError(err)
	return ok && genErr.Type == t
}
