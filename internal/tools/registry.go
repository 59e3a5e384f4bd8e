// Package tools implements the uniform tool-invocation contract: a
// registry mapping tool name to (handle, intent tag), with intent-scoped
// exposure and a call contract that never surfaces a Go error for a
// missing tool or a tool-level failure — only a result string.
//
// Grounded on internal/agent/tool_registry.go of the teacher (RWMutex map,
// string-only results), narrowed to drop policy-resolver filtering (no
// tool-policy module in this spec) and add intent-tag filtering.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Intent partitions tools into categories exposed to the LLM depending on
// the interaction. The "general" intent is always exposed regardless of
// which intent the caller requested.
type Intent string

const (
	IntentResearch        Intent = "research"
	IntentSystem          Intent = "system"
	IntentPolymarketRead  Intent = "polymarket_read"
	IntentPolymarketTrade Intent = "polymarket_trade"
	IntentCryptoTokens    Intent = "crypto_tokens"
	IntentGeneral         Intent = "general"
)

// Tool is a single invocable capability exposed to the LLM.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

type entry struct {
	tool   Tool
	intent Intent
}

// Registry maps tool name (unique) to (tool handle, intent tag). Built at
// startup; safe for concurrent read-only use during agent operation, and
// safe to mutate concurrently with reads (registration replaces prior
// entries with the same name).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds tool under intent. If a tool with the same name already
// exists, it is replaced.
func (r *Registry) Register(tool Tool, intent Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tool.Name()] = entry{tool: tool, intent: intent}
}

// Get returns the registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Execute looks up name and invokes it. A miss is not an exception: it
// returns a synthesized error string as the (successful) result, per
// spec §4.3 — tool results are always strings, success or failure.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.Get(name)
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", name)
	}
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("error: %s", err.Error())
	}
	return result
}

// DefinitionsForIntent returns ToolDefinitions for every tool tagged with
// intent, plus every tool tagged "general", regardless of intent.
func (r *Registry) DefinitionsForIntent(intent Intent) []models.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]models.ToolDefinition, 0, len(r.entries))
	for _, e := range r.entries {
		if e.intent == intent || e.intent == IntentGeneral {
			defs = append(defs, models.ToolDefinition{
				Name:        e.tool.Name(),
				Description: e.tool.Description(),
				Parameters:  e.tool.Parameters(),
			})
		}
	}
	return defs
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
