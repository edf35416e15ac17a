package gemini

import (
	"context"

	"github.com/explainify/explainify-server-go/internal/llm"
)

// LLM is the completion service interface.
// Tests inject fake implementations through it.
type LLM interface {
	// Chat sends one completion request and returns the reply text with
	// usage, plus the model that served it.
	Chat(ctx context.Context, req Request) (llm.ChatResult, string, error)
}

// Compile-time check that Client implements LLM.
var _ LLM = (*Client)(nil)
