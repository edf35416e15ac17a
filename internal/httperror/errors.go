package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/explainify/explainify-server-go/internal/domain/explain"
	"github.com/explainify/explainify-server-go/internal/gemini"
)

// ErrorCode identifies an API error class.
type ErrorCode string

const (
	// ErrorCodeInternal is an unexpected server failure.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeValidation is a request body validation failure.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeUnauthorized is an API key failure.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeHTTPRateLimit is a request limit failure.
	ErrorCodeHTTPRateLimit ErrorCode = "HTTP_RATE_LIMIT"
	// ErrorCodeLLM is an upstream completion failure.
	ErrorCodeLLM ErrorCode = "LLM_ERROR"
	// ErrorCodeLLMTimeout is an upstream completion timeout.
	ErrorCodeLLMTimeout ErrorCode = "LLM_TIMEOUT"
	// ErrorCodeLLMModel is an invalid model failure.
	ErrorCodeLLMModel ErrorCode = "LLM_MODEL_ERROR"
	// ErrorCodeInvalidLevel is an unrecognized complexity level.
	ErrorCodeInvalidLevel ErrorCode = "INVALID_LEVEL"
	// ErrorCodeInvalidInput is a semantically invalid input.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeMissingField is a missing required field.
	ErrorCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ErrorResponse is the API error body.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	ErrorType string         `json:"error_type"`
	Message   string         `json:"message"`
	RequestID *string        `json:"request_id"`
	Details   map[string]any `json:"details"`
}

// Error is the internal error type carried through handlers.
type Error struct {
	Code    ErrorCode
	Status  int
	Type    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Response converts an error into an HTTP status and body.
func Response(err error, requestID string) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError("unknown error")
	}

	var requestIDPtr *string
	if requestID != "" {
		requestIDPtr = &requestID
	}

	return apiErr.Status, ErrorResponse{
		ErrorCode: string(apiErr.Code),
		ErrorType: apiErr.Type,
		Message:   apiErr.Message,
		RequestID: requestIDPtr,
		Details:   apiErr.Details,
	}
}

// FromError maps arbitrary errors to the internal error type.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, explain.ErrInvalidLevel) {
		return NewInvalidLevel(err.Error())
	}

	if errors.Is(err, gemini.ErrInvalidModel) {
		return NewLLMModelError("Invalid model")
	}

	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return NewLLMError("Missing Gemini API key", http.StatusServiceUnavailable)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewLLMTimeoutError("LLM request timed out")
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(err)
	}

	return NewInternalError(err.Error())
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Type:    "InternalError",
		Message: message,
		Details: nil,
	}
}

// NewValidationError creates a body validation error.
func NewValidationError(err error) *Error {
	return &Error{
		Code:    ErrorCodeValidation,
		Status:  http.StatusUnprocessableEntity,
		Type:    "ValidationError",
		Message: "Input validation failed",
		Details: validationDetails(err),
	}
}

// NewMissingField creates a missing required field error.
func NewMissingField(field string) *Error {
	return &Error{
		Code:    ErrorCodeMissingField,
		Status:  http.StatusBadRequest,
		Type:    "MissingFieldError",
		Message: fmt.Sprintf("Field '%s' required", field),
		Details: map[string]any{"field": field},
	}
}

// NewInvalidInput creates a semantic input error.
func NewInvalidInput(message string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidInput,
		Status:  http.StatusBadRequest,
		Type:    "InvalidInputError",
		Message: message,
		Details: nil,
	}
}

// NewInvalidLevel creates an unrecognized complexity level error.
func NewInvalidLevel(message string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidLevel,
		Status:  http.StatusBadRequest,
		Type:    "InvalidLevelError",
		Message: message,
		Details: map[string]any{"allowed": explain.Levels()},
	}
}

// NewUnauthorized creates an API key failure.
func NewUnauthorized(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Type:    "UnauthorizedError",
		Message: "Invalid API key",
		Details: details,
	}
}

// NewRateLimitExceeded creates a request limit failure.
func NewRateLimitExceeded(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeHTTPRateLimit,
		Status:  http.StatusTooManyRequests,
		Type:    "HTTPRateLimitExceededError",
		Message: "Rate limit exceeded",
		Details: details,
	}
}

// NewLLMModelError creates an invalid model failure.
func NewLLMModelError(message string) *Error {
	return &Error{
		Code:    ErrorCodeLLMModel,
		Status:  http.StatusBadRequest,
		Type:    "LLMModelError",
		Message: message,
		Details: nil,
	}
}

// NewLLMTimeoutError creates an upstream timeout failure.
func NewLLMTimeoutError(message string) *Error {
	return &Error{
		Code:    ErrorCodeLLMTimeout,
		Status:  http.StatusGatewayTimeout,
		Type:    "LLMTimeoutError",
		Message: message,
		Details: nil,
	}
}

// NewLLMError creates an upstream completion failure.
func NewLLMError(message string, status int) *Error {
	return &Error{
		Code:    ErrorCodeLLM,
		Status:  status,
		Type:    "LLMError",
		Message: message,
		Details: nil,
	}
}

// FieldError is one field-level validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, validationErr := range validationErrors {
			fields = append(fields, FieldError{
				Field:   validationErr.Field(),
				Message: validationErr.Error(),
				Value:   validationErr.Value(),
			})
		}
		return map[string]any{"errors": fields}
	}

	return map[string]any{
		"errors": []FieldError{
			{
				Field:   "body",
				Message: err.Error(),
				Value:   nil,
			},
		},
	}
}
