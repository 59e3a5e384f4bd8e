package cron

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	busPkg "github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

func TestTicker_DispatchesDueJobAsSyntheticInbound(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "cron.json"))
	require.NoError(t, err)
	job, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 3600,
		Message:      "stand up and stretch",
		Channel:      "telegram",
		ChatID:       "555",
		Enabled:      true,
	})
	require.NoError(t, err)
	s.mu.Lock()
	j := s.jobs[job.ID]
	j.NextRunMillis = time.Now().Add(-time.Second).UnixMilli()
	s.jobs[job.ID] = j
	s.mu.Unlock()

	b := busPkg.New()
	ticker := NewTicker(s, b, nil, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ticker.tick(ctx, time.Now())

	select {
	case msg := <-b.Inbound:
		assert.Equal(t, "telegram", msg.Channel)
		assert.Equal(t, "555", msg.ChatID)
		assert.Equal(t, "stand up and stretch", msg.Text)
		assert.True(t, msg.System)
	case <-time.After(time.Second):
		t.Fatal("expected synthetic inbound message")
	}
}

func TestTicker_RunStopsOnContextCancel(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "cron.json"))
	require.NoError(t, err)
	b := busPkg.New()
	ticker := NewTicker(s, b, nil, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
