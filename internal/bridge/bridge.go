// Package bridge wires the bus's inbound receiver to a single AgentLoop
// instance: the orchestrator glue named in spec §4.8.
//
// Grounded on internal/bus/bus.go's dispatchLoop (single consumer draining
// a channel with a ctx.Done select arm) for the receive loop shape, and on
// internal/gateway/message_service.go's construct-message/send/log-outcome
// sequence for per-message handling.
package bridge

import (
	"context"
	"log/slog"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Agent is the subset of the agent loop the bridge depends on.
type Agent interface {
	Process(ctx context.Context, content string, sessionKey string) (string, error)
}

// Bridge owns the bus's inbound receiver and routes every message to a
// single Agent instance.
type Bridge struct {
	bus    *bus.Bus
	agent  Agent
	logger *slog.Logger
}

// New builds a Bridge.
func New(b *bus.Bus, agent Agent, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{bus: b, agent: agent, logger: logger}
}

// Run drains the bus's inbound channel until ctx is cancelled (the
// orchestrator ties ctx to SIGINT), handling each message synchronously
// in call order.
func (br *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-br.bus.Inbound:
			br.handle(ctx, msg)
		}
	}
}

// handle constructs the session key as "channel:chat_id", runs one agent
// turn, and publishes the result as a Reply. An agent error is converted
// to user-visible reply text rather than propagated, per spec §4.8.
func (br *Bridge) handle(ctx context.Context, msg models.InboundMessage) {
	key := msg.Channel + ":" + msg.ChatID

	reply, err := br.agent.Process(ctx, msg.Text, key)
	if err != nil {
		br.logger.Warn("bridge: agent turn failed", "channel", msg.Channel, "chat_id", msg.ChatID, "error", err)
		reply = "Sorry, something went wrong processing that: " + err.Error()
	}

	out := models.OutboundMessage{
		Kind:    models.OutboundReply,
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Text:    reply,
	}
	if pubErr := br.bus.Publish(ctx, out); pubErr != nil {
		br.logger.Warn("bridge: publish reply failed", "channel", msg.Channel, "chat_id", msg.ChatID, "error", pubErr)
	}
}
