package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	result string
	err    error
}

func (s stubTool) Name() string               { return s.name }
func (s stubTool) Description() string        { return "stub" }
func (s stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return s.result, s.err
}

func TestRegistry_ExecuteUnknownToolReturnsStringNotError(t *testing.T) {
	r := NewRegistry()
	result := r.Execute(context.Background(), "nope", nil)
	assert.Contains(t, result, "unknown tool")
}

func TestRegistry_RegisterTwiceReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "t", result: "first"}, IntentGeneral)
	r.Register(stubTool{name: "t", result: "second"}, IntentGeneral)

	require.Equal(t, 1, r.Len())
	assert.Equal(t, "second", r.Execute(context.Background(), "t", nil))
}

func TestRegistry_DefinitionsForIntent_IncludesGeneral(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "research_only"}, IntentResearch)
	r.Register(stubTool{name: "everywhere"}, IntentGeneral)
	r.Register(stubTool{name: "system_only"}, IntentSystem)

	defs := r.DefinitionsForIntent(IntentResearch)
	names := make(map[string]bool)
	for _, d := range defs {
		names[d.Name] = true
	}
	assert.True(t, names["research_only"])
	assert.True(t, names["everywhere"])
	assert.False(t, names["system_only"])
}

func TestRegistry_ToolFailureReturnsErrorStringNotGoError(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "fails", err: assertErr("boom")}, IntentGeneral)
	result := r.Execute(context.Background(), "fails", nil)
	assert.Contains(t, result, "error:")
	assert.Contains(t, result, "boom")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
