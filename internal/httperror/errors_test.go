package httperror

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/explainify/explainify-server-go/internal/domain/explain"
	"github.com/explainify/explainify-server-go/internal/gemini"
)

func TestFromErrorMapping(t *testing.T) {
	_, parseErr := explain.ParseLevel("expert", false)
	apiErr := FromError(parseErr)
	if apiErr == nil || apiErr.Code != ErrorCodeInvalidLevel || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected invalid level error, got %+v", apiErr)
	}

	apiErr = FromError(gemini.ErrMissingAPIKey)
	if apiErr == nil || apiErr.Code != ErrorCodeLLM || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected llm error with 503")
	}

	apiErr = FromError(gemini.ErrInvalidModel)
	if apiErr == nil || apiErr.Code != ErrorCodeLLMModel {
		t.Fatalf("expected llm model error")
	}

	apiErr = FromError(context.DeadlineExceeded)
	if apiErr == nil || apiErr.Code != ErrorCodeLLMTimeout {
		t.Fatalf("expected timeout error")
	}
}

func TestResponseIncludesRequestID(t *testing.T) {
	status, payload := Response(NewMissingField("text"), "req-1")
	if status != 400 {
		t.Fatalf("unexpected status: %d", status)
	}
	if payload.RequestID == nil || *payload.RequestID != "req-1" {
		t.Fatalf("expected request id")
	}
}

func TestNewMissingField(t *testing.T) {
	err := NewMissingField("text")
	if err.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 status, got: %d", err.Status)
	}
	if err.Code != ErrorCodeMissingField {
		t.Fatalf("expected missing field error code")
	}
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("text must not be empty")
	if err.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 status, got: %d", err.Status)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(errors.New("field validation failed"))
	if err.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 status, got: %d", err.Status)
	}
}

func TestNewInternalError(t *testing.T) {
	err := NewInternalError("something went wrong")
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got: %d", err.Status)
	}
	if err.Code != ErrorCodeInternal {
		t.Fatalf("expected internal error code")
	}
}

func TestFromErrorNil(t *testing.T) {
	if apiErr := FromError(nil); apiErr != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestFromErrorGeneric(t *testing.T) {
	apiErr := FromError(errors.New("some generic error"))
	if apiErr == nil || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for generic error")
	}
}

func TestResponseWithEmptyRequestID(t *testing.T) {
	status, payload := Response(NewInternalError("test"), "")
	if status != 500 {
		t.Fatalf("unexpected status: %d", status)
	}
	if payload.RequestID != nil {
		t.Fatalf("expected nil request id for empty string")
	}
}
