// Package sessions owns per-conversation history: an in-memory cache plus
// on-disk JSONL persistence, and the token-budget-aware history
// accessors the agent loop uses to build prompts.
//
// Grounded on internal/sessions/memory.go of the teacher (clone-on-read/
// write discipline) with JSONL persistence added on top, grounded on
// internal/agent/trace.go's JSONL-writer pattern.
package sessions

import (
	"context"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Store is the session persistence contract the agent loop and the
// gateway's `clear`/`sessions list` commands depend on.
type Store interface {
	// GetOrCreate returns the session for key, loading it from disk (or
	// whatever backing store is in use) on first touch, creating an
	// empty session on miss.
	GetOrCreate(ctx context.Context, key string) (*models.Session, error)

	// Append appends msg to the session's in-memory message list. It does
	// not persist; call Save to flush.
	Append(ctx context.Context, key string, msg models.ChatMessage) error

	// Save persists the session's current state.
	Save(ctx context.Context, key string) error

	// Delete evicts the session from cache and removes its persisted
	// form, if any.
	Delete(ctx context.Context, key string) error

	// GetHistory returns the trailing n messages (n<=0 means all).
	GetHistory(ctx context.Context, key string, n int) ([]models.ChatMessage, error)

	// GetHistoryWithinBudget walks the history from the tail, including
	// each message so long as its estimated token cost plus the running
	// total stays within maxTokens. The most recent message is always
	// included even if it alone exceeds the budget.
	GetHistoryWithinBudget(ctx context.Context, key string, maxTokens int) ([]models.ChatMessage, error)

	// ListSessions enumerates persisted sessions, newest updated_at first.
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)
}
