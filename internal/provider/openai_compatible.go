package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// baseURLs resolves a provider name to its OpenAI-compatible API root, per
// spec §4.4's base URL table. Any entry can be overridden by config.
var baseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"gemini":     "https://generativelanguage.googleapis.com/v1beta/openai",
	"anthropic":  "https://api.anthropic.com/v1",
}

const (
	maxAttempts  = 3
	initialDelay = 500 * time.Millisecond
)

// OpenAICompatible is an LLM transport for any provider speaking the OpenAI
// chat-completions wire format, reached via go-openai's client retargeted
// to a per-provider base URL — the same technique the teacher's
// OpenRouterProvider uses to point the OpenAI client at a different host.
type OpenAICompatible struct {
	name         string
	client       *openai.Client
	defaultModel string
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Config configures one named provider entry in the fallback chain.
type Config struct {
	Name         string
	APIKey       string
	BaseURL      string // overrides the baseURLs table entry when non-empty
	DefaultModel string
}

// New builds an OpenAI-compatible transport for cfg.Name. It resolves the
// base URL from the table unless cfg.BaseURL overrides it.
func New(cfg Config, logger *slog.Logger, m *metrics.Metrics) (*OpenAICompatible, error) {
	base := cfg.BaseURL
	if base == "" {
		var ok bool
		base, ok = baseURLs[cfg.Name]
		if !ok {
			return nil, fmt.Errorf("provider: unknown provider name %q and no base_url override given", cfg.Name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = base

	return &OpenAICompatible{
		name:         cfg.Name,
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.DefaultModel,
		logger:       logger.With("provider", cfg.Name),
		metrics:      m,
	}, nil
}

func (p *OpenAICompatible) Name() string { return p.name }

// Complete submits one chat-completions request, retrying transient
// failures per spec §4.4: statuses 429/500/502/503/504 and network errors
// retry up to 3 attempts total, waiting 500ms before the second attempt
// and 1000ms before the third. Any other non-success status fails
// immediately.
func (p *OpenAICompatible) Complete(ctx context.Context, req CompletionRequest) (*models.LlmResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAITools(req.Tools)
		chatReq.ToolChoice = "auto"
	}

	var lastErr error
	delay := initialDelay
	start := time.Now()

	p.metrics.Record(models.RuntimeEvent{
		Kind: models.EventProviderCallStarted, At: start, Provider: p.name,
	})

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			p.metrics.Record(models.RuntimeEvent{
				Kind: models.EventProviderCallFinished, At: time.Now(),
				Provider: p.name, Duration: time.Since(start),
			})
			return decodeResponse(resp, p.logger)
		}

		lastErr = err
		if attempt == maxAttempts || !isRetryable(err) {
			break
		}

		p.logger.Warn("provider call failed, retrying",
			"attempt", attempt, "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			p.metrics.Record(models.RuntimeEvent{
				Kind: models.EventProviderCallFinished, At: time.Now(),
				Provider: p.name, Duration: time.Since(start), Err: ctx.Err().Error(),
			})
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	p.metrics.Record(models.RuntimeEvent{
		Kind: models.EventProviderCallFinished, At: time.Now(),
		Provider: p.name, Duration: time.Since(start), Err: lastErr.Error(),
	})
	return nil, fmt.Errorf("provider %s: %w", p.name, lastErr)
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	return retryableNetworkError(err)
}

// decodeResponse extracts the first choice's message. Tool-call arguments
// arrive as a JSON string; one that fails to parse is dropped with a
// warning rather than failing the whole response.
func decodeResponse(resp openai.ChatCompletionResponse, logger *slog.Logger) (*models.LlmResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, errors.New("provider: response had no choices")
	}
	choice := resp.Choices[0]

	out := &models.LlmResponse{
		Content:      choice.Message.Content,
		FinishReason: toFinishReason(choice.FinishReason),
		Usage: models.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			logger.Warn("dropping tool call with unparseable arguments",
				"tool", tc.Function.Name, "error", err)
			continue
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return out, nil
}

func toFinishReason(r openai.FinishReason) models.FinishReason {
	switch r {
	case openai.FinishReasonToolCalls:
		return models.FinishToolCalls
	case openai.FinishReasonLength:
		return models.FinishLength
	default:
		return models.FinishStop
	}
}

func toOpenAIMessages(msgs []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		oaiMsg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			oaiMsg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				oaiMsg.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				}
			}
		}
		out = append(out, oaiMsg)
	}
	return out
}

func toOpenAITools(defs []models.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, len(defs))
	for i, d := range defs {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return out
}
