// Package tty adapts the local terminal to the bus's InboundMessage/
// OutboundMessage contract for interactive CLI use.
//
// Grounded on internal/channels/telegram/adapter.go's Messages-channel/
// Send shape, replacing the network transport with stdin/stdout; uses
// mattn/go-isatty to detect a real terminal and skip progress-tree
// redraws when output is piped.
package tty

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// ChannelName is the bus channel this adapter publishes/subscribes on.
const ChannelName = "cli"

// DirectChatID is the single, fixed chat identity for local CLI sessions.
const DirectChatID = "direct"

// Adapter reads stdin lines as InboundMessages and writes outbound replies
// and progress to stdout.
type Adapter struct {
	in         io.Reader
	out        io.Writer
	bus        *bus.Bus
	logger     *slog.Logger
	isTerminal bool
}

// New creates a TTY adapter bound to b, reading from stdin and writing to
// stdout.
func New(b *bus.Bus, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		in:         os.Stdin,
		out:        os.Stdout,
		bus:        b,
		logger:     logger.With("transport", "cli"),
		isTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Register subscribes this adapter to the bus under ChannelName. It must
// be called before the bus's dispatcher starts (bus.Bus.Start), and
// before Start, so no early outbound message is lost to an empty
// subscriber table.
func (a *Adapter) Register() {
	a.bus.Subscribe(ChannelName, a.send)
}

// Start reads stdin lines until EOF or ctx is cancelled, publishing each
// non-empty line as an InboundMessage. Register must be called first.
func (a *Adapter) Start(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				continue
			}
			msg := models.InboundMessage{
				Channel: ChannelName,
				ChatID:  DirectChatID,
				Text:    line,
			}
			if err := a.bus.PublishInbound(ctx, msg); err != nil {
				a.logger.Warn("failed to publish inbound cli message", "error", err)
			}
		}
	}
}

// send is the bus Subscriber invoked for outbound messages on "cli". There
// is no length limit; progress lines redraw in place only when stdout is a
// real terminal, otherwise each update prints on its own line.
func (a *Adapter) send(_ context.Context, msg models.OutboundMessage) error {
	switch msg.Kind {
	case models.OutboundReply:
		fmt.Fprintln(a.out, msg.Text)
	case models.OutboundProgress:
		if a.isTerminal {
			fmt.Fprintf(a.out, "\r\033[K%s", msg.Text)
		} else {
			fmt.Fprintln(a.out, msg.Text)
		}
	case models.OutboundTyping:
		// no-op on a plain terminal transport
	}
	return nil
}
