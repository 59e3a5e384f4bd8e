package agent

import (
	"context"
	"sync"
	"time"

	"github.com/max-de-bug/zoidclaw/internal/convctx"
	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/internal/tools"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// toolResult is one tool call's outcome, kept in original call order.
type toolResult struct {
	id     string
	name   string
	result string
}

// dispatchTools launches every call concurrently and awaits the whole
// batch, per spec §4.6 step g: a cooperative concurrent join, results
// returned in the original call order regardless of completion order.
//
// Grounded on internal/agent/executor.go's ExecuteAll (indexed results
// slice + sync.WaitGroup fan-out), narrowed per spec §4.6's "join or
// panic" contract: no per-tool timeout, retry, or semaphore — a tool
// call's panic is not recovered here and propagates, matching the
// spec's explicit concurrency contract for tool calls.
func dispatchTools(ctx context.Context, sessionKey string, registry *tools.Registry, m *metrics.Metrics, calls []models.ToolCallRequest) []toolResult {
	results := make([]toolResult, len(calls))

	toolCtx := convctx.WithSessionKey(ctx, sessionKey)

	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, call := range calls {
		go func(idx int, c models.ToolCallRequest) {
			defer wg.Done()
			start := time.Now()
			m.Record(models.RuntimeEvent{
				Kind: models.EventToolDispatched, At: start, Tool: c.Name,
			})
			result := registry.Execute(toolCtx, c.Name, c.Arguments)

			ev := models.RuntimeEvent{
				Kind: models.EventToolFinished, At: time.Now(),
				Tool: c.Name, Duration: time.Since(start),
			}
			if status(result) == "error" {
				ev.Err = result
			}
			m.Record(ev)

			results[idx] = toolResult{id: c.ID, name: c.Name, result: result}
		}(i, call)
	}
	wg.Wait()

	return results
}

func status(result string) string {
	if len(result) >= 6 && result[:6] == "error:" {
		return "error"
	}
	return "success"
}
