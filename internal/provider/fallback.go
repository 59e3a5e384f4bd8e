package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// QuarantineWindow is how long a provider is skipped after a transient
// failure, per spec §4.4. A var rather than a const so tests can shrink it.
var QuarantineWindow = 60 * time.Second

// FallbackChain wraps an ordered list of named providers behind a single
// Provider, skipping any currently quarantined entry and recording a
// transient failure's timestamp in a shared health map. Narrowed from the
// teacher's FailoverOrchestrator: no circuit-breaker failure counting, no
// per-provider retry budget at this layer (retries happen inside each
// provider's own Complete call).
type FallbackChain struct {
	providers []Provider
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu           sync.Mutex
	quarantined  map[string]time.Time
}

// NewFallbackChain builds a chain over providers, called in order.
func NewFallbackChain(providers []Provider, logger *slog.Logger, m *metrics.Metrics) *FallbackChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackChain{
		providers:   providers,
		logger:      logger,
		metrics:     m,
		quarantined: make(map[string]time.Time),
	}
}

func (c *FallbackChain) Name() string { return "fallback-chain" }

// Complete iterates the chain in order, skipping providers whose last
// transient failure is younger than QuarantineWindow. The caller's model
// override is honored only on the first candidate attempted; later
// candidates fall back to their own default model.
func (c *FallbackChain) Complete(ctx context.Context, req CompletionRequest) (*models.LlmResponse, error) {
	var lastErr error
	first := true

	for _, p := range c.providers {
		if c.isQuarantined(p.Name()) {
			continue
		}

		attempt := req
		if !first {
			attempt.Model = ""
		}
		first = false

		resp, err := p.Complete(ctx, attempt)
		if err == nil {
			return resp, nil
		}

		if quarantineWorthy(err) {
			c.quarantine(p.Name())
			lastErr = err
			continue
		}

		return nil, err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("provider: all candidates exhausted: %w", lastErr)
	}
	return nil, errors.New("provider: all providers exhausted")
}

func (c *FallbackChain) isQuarantined(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	since, ok := c.quarantined[name]
	if !ok {
		return false
	}
	if time.Since(since) >= QuarantineWindow {
		delete(c.quarantined, name)
		return false
	}
	return true
}

func (c *FallbackChain) quarantine(name string) {
	c.mu.Lock()
	c.quarantined[name] = time.Now()
	c.mu.Unlock()
	c.metrics.Record(models.RuntimeEvent{
		Kind: models.EventProviderQuarantined, At: time.Now(), Provider: name,
	})
	c.logger.Warn("provider quarantined after transient failure", "provider", name)
}
