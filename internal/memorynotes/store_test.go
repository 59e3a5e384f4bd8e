package memorynotes

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAndAllPreservesOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "first"))
	require.NoError(t, s.Add(ctx, "second"))

	notes := s.All(ctx)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Text)
	assert.Equal(t, "second", notes[1].Text)
}

func TestStore_AddEmptyTextIsNoop(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(context.Background(), ""))
	assert.Empty(t, s.All(context.Background()))
}

func TestStore_Clear(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "note"))
	s.Clear(ctx)
	assert.Empty(t, s.All(ctx))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Add(ctx, "note")
		}()
	}
	wg.Wait()
	assert.Len(t, s.All(ctx), 50)
}
