// Package agent implements the think-act cycle: context assembly, a
// provider call, parallel tool dispatch, and iteration until the model
// emits a terminal text reply — spec §4.6.
//
// Grounded on internal/agent/loop.go's state machine
// (PhaseInit → PhaseStream → PhaseExecuteTools → PhaseContinue),
// narrowed to the spec's single-session-per-turn, non-streaming contract:
// no branch-aware storage, no steering queue, no async job tools — those
// are teacher features outside this spec's scope.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/internal/contextbuilder"
	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/internal/provider"
	"github.com/max-de-bug/zoidclaw/internal/sessions"
	"github.com/max-de-bug/zoidclaw/internal/tools"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Config bounds a Loop's behavior. Zero-value fields fall back to the
// spec's stated defaults via sanitizeConfig.
type Config struct {
	// MaxIterations bounds the think-act cycle. Default 10.
	MaxIterations int
	// HistoryBudget is the estimated-token budget for trimmed history.
	// Default 30000.
	HistoryBudget int
	// MaxTokens is the max_tokens sent to the provider per call.
	MaxTokens int
	Temperature float32
	// Model overrides the provider's default model for every call.
	Model string
}

func sanitizeConfig(cfg Config) Config {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.HistoryBudget <= 0 {
		cfg.HistoryBudget = 30000
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return cfg
}

// Loop is the agent dispatch core: one LLM-backed conversational loop
// shared across every session.
type Loop struct {
	provider provider.Provider
	tools    *tools.Registry
	sessions sessions.Store
	builder  *contextbuilder.Builder
	bus      *bus.Bus
	logger   *slog.Logger
	metrics  *metrics.Metrics
	config   Config
}

// New builds a Loop. bus may be nil, in which case Typing/Progress events
// are simply not published (useful for tests and the CLI transport).
func New(p provider.Provider, registry *tools.Registry, store sessions.Store, builder *contextbuilder.Builder, b *bus.Bus, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &Loop{
		provider: p,
		tools:    registry,
		sessions: store,
		builder:  builder,
		bus:      b,
		logger:   logger,
		metrics:  m,
		config:   sanitizeConfig(cfg),
	}
}

// Process runs one full turn for sessionKey's conversation and returns the
// model's terminal textual reply, or a *LoopError classified per spec
// §4.6: provider failure, max iterations exceeded, or session I/O.
func (l *Loop) Process(ctx context.Context, content string, sessionKey string) (string, error) {
	channel, chatID := splitSessionKey(sessionKey)

	l.publishTyping(ctx, channel, chatID)

	if _, err := l.sessions.GetOrCreate(ctx, sessionKey); err != nil {
		return "", sessionIOErr(fmt.Errorf("get or create session: %w", err))
	}

	history, err := l.sessions.GetHistoryWithinBudget(ctx, sessionKey, l.config.HistoryBudget)
	if err != nil {
		return "", sessionIOErr(fmt.Errorf("load history: %w", err))
	}

	userTurn := models.ChatMessage{
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := l.sessions.Append(ctx, sessionKey, userTurn); err != nil {
		return "", sessionIOErr(fmt.Errorf("append user turn: %w", err))
	}

	messages := l.builder.BuildMessages(history, content, nil)
	toolDefs := l.tools.DefinitionsForIntent(tools.IntentGeneral)

	for iteration := 0; iteration < l.config.MaxIterations; iteration++ {
		l.publishTyping(ctx, channel, chatID)

		resp, err := l.provider.Complete(ctx, provider.CompletionRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Model:       l.config.Model,
			MaxTokens:   l.config.MaxTokens,
			Temperature: l.config.Temperature,
		})
		if err != nil {
			return "", providerErr(err)
		}

		assistantMsg := toAssistantMessage(resp)
		messages = append(messages, assistantMsg)
		if err := l.sessions.Append(ctx, sessionKey, assistantMsg); err != nil {
			return "", sessionIOErr(fmt.Errorf("append assistant message: %w", err))
		}

		if len(resp.ToolCalls) == 0 {
			if err := l.sessions.Save(ctx, sessionKey); err != nil {
				return "", sessionIOErr(fmt.Errorf("save session: %w", err))
			}
			return resp.Content, nil
		}

		l.publishProgress(ctx, channel, chatID, resp.ToolCalls)

		results := dispatchTools(ctx, sessionKey, l.tools, l.metrics, resp.ToolCalls)
		for _, r := range results {
			toolMsg := models.ChatMessage{
				Role:       models.RoleTool,
				Content:    r.result,
				ToolCallID: r.id,
				Name:       r.name,
				Timestamp:  time.Now(),
			}
			messages = append(messages, toolMsg)
			if err := l.sessions.Append(ctx, sessionKey, toolMsg); err != nil {
				return "", sessionIOErr(fmt.Errorf("append tool result: %w", err))
			}
		}
	}

	fallback := models.ChatMessage{
		Role:      models.RoleAssistant,
		Content:   "reached the maximum number of tool iterations",
		Timestamp: time.Now(),
	}
	if err := l.sessions.Append(ctx, sessionKey, fallback); err == nil {
		_ = l.sessions.Save(ctx, sessionKey)
	}
	return "", maxIterationsErr()
}

// splitSessionKey derives channel and chat id from "channel:chat_id",
// defaulting to cli/direct when the key carries no colon.
func splitSessionKey(key string) (channel, chatID string) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "cli", "direct"
	}
	return parts[0], parts[1]
}

func (l *Loop) publishTyping(ctx context.Context, channel, chatID string) {
	if l.bus == nil {
		return
	}
	_ = l.bus.Publish(ctx, models.OutboundMessage{
		Kind:    models.OutboundTyping,
		Channel: channel,
		ChatID:  chatID,
	})
}

func (l *Loop) publishProgress(ctx context.Context, channel, chatID string, calls []models.ToolCallRequest) {
	if l.bus == nil {
		return
	}
	var text string
	if len(calls) == 1 {
		text = fmt.Sprintf("Running tool: `%s`…", calls[0].Name)
	} else {
		names := make([]string, len(calls))
		for i, c := range calls {
			names[i] = "`" + c.Name + "`"
		}
		text = fmt.Sprintf("Running %d tools in parallel: %s", len(calls), strings.Join(names, ", "))
	}
	_ = l.bus.Publish(ctx, models.OutboundMessage{
		Kind:    models.OutboundProgress,
		Channel: channel,
		ChatID:  chatID,
		Text:    text,
	})
}

// toAssistantMessage builds the assistant turn from a provider response,
// re-serializing tool call arguments to the wire schema the provider
// expects to see echoed back on the next call.
func toAssistantMessage(resp *models.LlmResponse) models.ChatMessage {
	msg := models.ChatMessage{
		Role:      models.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now(),
	}
	for i, tc := range resp.ToolCalls {
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
			resp.ToolCalls[i].ID = id
		}
		args, err := json.Marshal(tc.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		msg.ToolCalls = append(msg.ToolCalls, models.ToolCall{
			ID:        id,
			Name:      tc.Name,
			Arguments: args,
		})
	}
	return msg
}
