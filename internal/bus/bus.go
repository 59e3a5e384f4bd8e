// Package bus implements the typed publish/subscribe hub that decouples
// chat transports from the agent loop.
//
// Grounded on internal/agent/event_sink.go's ChanSink/MultiSink fan-out
// pattern, generalized from a single global sink into a per-channel-name
// subscriber table, and on internal/gateway/broadcast.go's use of slog for
// structured dispatch logging.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// DefaultInboundBuffer is the default bound on the inbound queue.
const DefaultInboundBuffer = 100

// DefaultOutboundBuffer mirrors the inbound default; outbound fan-out is
// bounded the same way so a slow transport can't grow the queue unbounded.
const DefaultOutboundBuffer = 100

// DispatchTimeout bounds how long a single subscriber callback may run
// before the dispatcher gives up on it and moves on.
const DispatchTimeout = 10 * time.Second

// Subscriber is invoked once per outbound message published on the
// channel it registered for. It must not block the dispatcher; slow work
// should be handed off internally.
type Subscriber func(ctx context.Context, msg models.OutboundMessage) error

// Bus is the shared, lock-free (in the sense of §9's Open Question: no
// mutex wraps the Bus value itself — only the subscriber table is
// guarded) message hub. Producers publish to Inbound; exactly one
// consumer should drain it. Outbound fan-out is handled internally by
// Start's dispatcher goroutine.
type Bus struct {
	Inbound  chan models.InboundMessage
	outbound chan models.OutboundMessage

	mu          sync.RWMutex
	subscribers map[string][]Subscriber

	logger  *slog.Logger
	metrics *metrics.Metrics

	startOnce sync.Once
	done      chan struct{}
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger sets the bus's structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithBuffers overrides the inbound/outbound channel bounds.
func WithBuffers(inbound, outbound int) Option {
	return func(b *Bus) {
		if inbound > 0 {
			b.Inbound = make(chan models.InboundMessage, inbound)
		}
		if outbound > 0 {
			b.outbound = make(chan models.OutboundMessage, outbound)
		}
	}
}

// New creates a Bus with bounded inbound/outbound channels and an empty
// subscriber table. Transports must call Subscribe before Start runs so
// no publish is lost to an empty table.
func New(opts ...Option) *Bus {
	b := &Bus{
		Inbound:     make(chan models.InboundMessage, DefaultInboundBuffer),
		outbound:    make(chan models.OutboundMessage, DefaultOutboundBuffer),
		subscribers: make(map[string][]Subscriber),
		logger:      slog.Default(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a callback for every outbound message published on
// channel. Subscribers may be registered concurrently with dispatch.
func (b *Bus) Subscribe(channel string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = append(b.subscribers[channel], sub)
}

// Publish enqueues an outbound message. It blocks if the outbound channel
// is full (backpressure), or returns early if ctx is cancelled.
func (b *Bus) Publish(ctx context.Context, msg models.OutboundMessage) error {
	select {
	case b.outbound <- msg:
		b.metrics.BusPublishedInc(msg.Channel, string(msg.Kind))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishInbound enqueues an inbound message, blocking on backpressure
// the same way Publish does.
func (b *Bus) PublishInbound(ctx context.Context, msg models.InboundMessage) error {
	select {
	case b.Inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the outbound dispatcher goroutine, which drains the
// outbound channel and invokes every subscriber registered for each
// message's channel, each call bounded by DispatchTimeout. Start returns
// immediately; the dispatcher runs until ctx is cancelled.
func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(ctx)
	})
}

// Done is closed once the dispatcher loop has exited after ctx was
// cancelled. Messages still queued on the outbound channel at that point
// are not delivered.
func (b *Bus) Done() <-chan struct{} { return b.done }

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbound:
			b.dispatch(ctx, msg)
		}
	}
}

// dispatch invokes every subscriber registered for msg.Channel. Calls run
// concurrently so one slow subscriber cannot delay delivery to the
// others; dispatch itself waits for all of them (each bounded by
// DispatchTimeout) before returning, preserving FIFO order of the
// outbound queue for subsequent messages.
func (b *Bus) dispatch(ctx context.Context, msg models.OutboundMessage) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subscribers[msg.Channel]...)
	b.mu.RUnlock()

	var wg sync.WaitGroup
	wg.Add(len(subs))
	for _, sub := range subs {
		go func(s Subscriber) {
			defer wg.Done()
			b.invokeWithTimeout(ctx, s, msg)
		}(sub)
	}
	wg.Wait()
}

func (b *Bus) invokeWithTimeout(ctx context.Context, sub Subscriber, msg models.OutboundMessage) {
	callCtx, cancel := context.WithTimeout(ctx, DispatchTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- sub(callCtx, msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			b.logger.Warn("bus subscriber returned error",
				"channel", msg.Channel, "kind", msg.Kind, "error", err)
		}
	case <-callCtx.Done():
		b.metrics.BusTimeoutInc(msg.Channel)
		b.logger.Warn("bus subscriber timed out",
			"channel", msg.Channel, "kind", msg.Kind, "timeout", DispatchTimeout)
	}
}
