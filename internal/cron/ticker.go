package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// DefaultTickInterval is the cadence at which the ticker polls for due
// jobs, per spec §4.7's "e.g. 1 Hz" guidance.
const DefaultTickInterval = time.Second

// Ticker polls a Store on a fixed cadence and dispatches each fired job as
// a synthetic inbound message to the bus.
//
// Grounded on internal/cron/scheduler.go's ticker loop, narrowed to the
// spec's orchestrator-owned dispatch: the ticker's only job is polling
// get_due_jobs and pushing to the bus, not running webhooks/agents/custom
// handlers directly (those are teacher features outside this spec).
type Ticker struct {
	store    *Store
	bus      *bus.Bus
	logger   *slog.Logger
	interval time.Duration
}

// NewTicker creates a Ticker. interval<=0 falls back to DefaultTickInterval.
func NewTicker(store *Store, b *bus.Bus, logger *slog.Logger, interval time.Duration) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{store: store, bus: b, logger: logger, interval: interval}
}

// Run blocks, polling for due jobs every interval and dispatching each as
// a system-flagged inbound message, until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.tick(ctx, now)
		}
	}
}

func (t *Ticker) tick(ctx context.Context, now time.Time) {
	due, err := t.store.GetDueJobs(ctx, now)
	if err != nil {
		t.logger.Warn("cron: get due jobs failed", "error", err)
		return
	}
	for _, job := range due {
		msg := models.InboundMessage{
			Channel: job.Channel,
			ChatID:  job.ChatID,
			Text:    job.Message,
			System:  true,
		}
		if err := t.bus.PublishInbound(ctx, msg); err != nil {
			t.logger.Warn("cron: publish inbound failed", "job_id", job.ID, "error", err)
		}
	}
}
