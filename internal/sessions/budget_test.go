package sessions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// TestGetHistoryWithinBudget_Invariant is spec §8 invariant 2: the sum of
// floor(len(content)/4) over included messages is <= B, OR exactly one
// message is present.
func TestGetHistoryWithinBudget_Invariant(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := "cli:direct"
	_, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: repeat("x", 100)}))
		require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleAssistant, Content: "ok"}))
	}

	history, err := store.GetHistoryWithinBudget(ctx, key, 200)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	total := 0
	for _, m := range history {
		total += estimateTokens(m)
	}
	if len(history) != 1 {
		assert.LessOrEqual(t, total, 200)
	}
}

// TestGetHistoryWithinBudget_AlwaysIncludesMostRecent checks the most
// recent message is never dropped even if it alone exceeds the budget.
func TestGetHistoryWithinBudget_AlwaysIncludesMostRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := "cli:direct"
	_, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: repeat("y", 4000)}))

	history, err := store.GetHistoryWithinBudget(ctx, key, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, repeat("y", 4000), history[0].Content)
}

func TestGetHistoryWithinBudget_EmptySession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	history, err := store.GetHistoryWithinBudget(ctx, "nonexistent", 100)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for len(out) < n {
		out = append(out, s[0])
	}
	return string(out)
}
