// Package builtin provides a small set of illustrative tools — clock,
// calculator, echo, session-clear — that exercise the tool registry and
// the spec's end-to-end scenarios without pulling in the teacher's
// full tool surface (filesystem, shell, browser, market-data HTTP calls),
// which spec.md §1 explicitly scopes out of the core.
//
// Grounded on the plain struct + Name/Description/Parameters/Execute shape
// of internal/tools/system in the teacher.
package builtin

import (
	"context"
	"time"
)

// Clock reports the current wall-clock time.
type Clock struct{}

func (Clock) Name() string        { return "clock" }
func (Clock) Description() string { return "Returns the current wall-clock time in RFC3339." }
func (Clock) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (Clock) Execute(ctx context.Context, args map[string]any) (string, error) {
	return time.Now().Format(time.RFC3339), nil
}
