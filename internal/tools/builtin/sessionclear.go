package builtin

import (
	"context"
	"fmt"

	"github.com/max-de-bug/zoidclaw/internal/convctx"
	"github.com/max-de-bug/zoidclaw/internal/sessions"
)

// SessionClear deletes the current conversation's history. It is the
// tool-facing surface of spec §4.2's "clear" command: the session store
// is the only thing besides the agent loop allowed to mutate a session.
// The serve command registers it under the system intent, and the agent
// loop offers the model only general-intent tools, so the model is not
// offered this tool during a turn.
type SessionClear struct {
	Store sessions.Store
}

func (SessionClear) Name() string { return "session_clear" }
func (SessionClear) Description() string {
	return "Clears the current conversation's history, starting fresh."
}
func (SessionClear) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t SessionClear) Execute(ctx context.Context, args map[string]any) (string, error) {
	key, ok := convctx.SessionKey(ctx)
	if !ok || key == "" {
		return "", fmt.Errorf("no active session in context")
	}
	if t.Store == nil {
		return "", fmt.Errorf("session store not configured")
	}
	if err := t.Store.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("clear session: %w", err)
	}
	return "conversation history cleared", nil
}
