// Package heartbeat implements an in-memory, non-persistent interval
// beat: a synthetic inbound message pushed on a fixed cadence, per spec
// §4.7.
//
// Grounded on internal/heartbeat/runner.go's ticker-driven Run loop,
// narrowed to the spec's builder shape (interval, message, channel, chat
// id) and dropping acknowledgment queues, retry-with-backoff delivery,
// and visibility modes — none of which the spec names.
package heartbeat

import (
	"context"
	"time"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Heartbeat is a single configured beat: push an identical inbound
// message through a sender on every tick of interval.
type Heartbeat struct {
	interval time.Duration
	message  string
	channel  string
	chatID   string
}

// Builder assembles a Heartbeat field by field, grounded on the spec's
// "a builder produces a heartbeat" phrasing.
type Builder struct {
	hb Heartbeat
}

// NewBuilder starts a Heartbeat builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Interval(d time.Duration) *Builder {
	b.hb.interval = d
	return b
}

func (b *Builder) Message(msg string) *Builder {
	b.hb.message = msg
	return b
}

func (b *Builder) Channel(channel string) *Builder {
	b.hb.channel = channel
	return b
}

func (b *Builder) ChatID(chatID string) *Builder {
	b.hb.chatID = chatID
	return b
}

// Build finalizes the Heartbeat. interval<=0 is clamped to one second.
func (b *Builder) Build() *Heartbeat {
	hb := b.hb
	if hb.interval <= 0 {
		hb.interval = time.Second
	}
	return &hb
}

// Sender pushes a synthetic inbound message, the same contract the bus's
// PublishInbound satisfies.
type Sender interface {
	PublishInbound(ctx context.Context, msg models.InboundMessage) error
}

// Run loops, sleeping interval then pushing a system-flagged inbound
// message through tx, until cancel fires or ctx is otherwise done. The
// first beat fires after the first interval elapses, never immediately.
func (h *Heartbeat) Run(ctx context.Context, tx Sender, cancel <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cancel:
			return
		case <-ticker.C:
			msg := models.InboundMessage{
				Channel: h.channel,
				ChatID:  h.chatID,
				Text:    h.message,
				System:  true,
			}
			if err := tx.PublishInbound(ctx, msg); err != nil {
				return
			}
		}
	}
}
