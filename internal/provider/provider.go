// Package provider implements the LLM transport layer: an OpenAI-compatible
// HTTP client with per-call retry, and a quarantine-based fallback chain
// over an ordered list of named providers.
package provider

import (
	"context"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// CompletionRequest is everything the provider layer needs to produce one
// LlmResponse: conversation history (already budget-trimmed and prefixed
// with the system prompt by the caller), the tool definitions currently in
// scope, and an optional model override.
type CompletionRequest struct {
	Messages    []models.ChatMessage
	Tools       []models.ToolDefinition
	Model       string
	MaxTokens   int
	Temperature float32
}

// Provider produces a single completion for a request. Implementations do
// not stream; they submit one request and decode one response.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (*models.LlmResponse, error)
}
