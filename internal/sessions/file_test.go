package sessions

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// TestFileStore_RoundTrip is spec §8 invariant 1: decoding a persisted
// session preserves message count and per-message role and content.
func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()
	key := "telegram:42"

	_, err = store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: "hi"}))
	require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleAssistant, Content: "hello!"}))
	require.NoError(t, store.Save(ctx, key))

	reloaded, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	session, err := reloaded.GetOrCreate(ctx, key)
	require.NoError(t, err)

	require.Len(t, session.Messages, 2)
	assert.Equal(t, models.RoleUser, session.Messages[0].Role)
	assert.Equal(t, "hi", session.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, session.Messages[1].Role)
	assert.Equal(t, "hello!", session.Messages[1].Content)
}

// TestFileStore_SaveLoadSaveIsFixedPoint is spec §8's round-trip law:
// save-then-load-then-save is a fixed point on the file contents, modulo
// updated_at.
func TestFileStore_SaveLoadSaveIsFixedPoint(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()
	key := "discord:7"

	_, err = store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: "one"}))
	require.NoError(t, store.Save(ctx, key))
	first, err := os.ReadFile(store.path(key))
	require.NoError(t, err)

	reloaded, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	_, err = reloaded.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NoError(t, reloaded.Save(ctx, key))
	second, err := os.ReadFile(reloaded.path(key))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	again, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	session, err := again.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "one", session.Messages[0].Content)
}

func TestFileStore_MalformedLinesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()
	key := "cli:direct"

	path := store.path(key)
	data := "{\"_type\":\"metadata\",\"key\":\"cli:direct\",\"created_at\":\"2024-01-01T00:00:00Z\",\"updated_at\":\"2024-01-01T00:00:00Z\"}\n" +
		"not json at all\n" +
		"{\"role\":\"user\",\"content\":\"valid\"}\n"
	require.NoError(t, writeRaw(path, data))

	session, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "valid", session.Messages[0].Content)
}

func TestFileStore_DeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()
	key := "cli:direct"

	_, err = store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: "x"}))
	require.NoError(t, store.Save(ctx, key))
	require.NoError(t, store.Delete(ctx, key))

	fresh, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	session, err := fresh.GetOrCreate(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, session.Messages)
}

func TestFileStore_ListSessionsSortedNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"cli:a", "cli:b", "cli:c"} {
		_, err := store.GetOrCreate(ctx, key)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, key, models.ChatMessage{Role: models.RoleUser, Content: "hi"}))
		require.NoError(t, store.Save(ctx, key))
	}

	list, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].UpdatedAt.Equal(list[i].UpdatedAt) || list[i-1].UpdatedAt.After(list[i].UpdatedAt))
	}
}
