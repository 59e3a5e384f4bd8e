// Package discord adapts Discord's gateway session to the bus's
// InboundMessage/OutboundMessage contract.
//
// Grounded on internal/channels/discord/adapter.go's session lifecycle
// (Open/AddHandler/Close) and MessageCreate handling, narrowed to plain
// text channel messages (no reactions, pins, or threads — the teacher's
// discordSession also exposes those but this spec's contract only names
// chunked replies, typing, and in-place progress edits).
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// ChannelName is the bus channel this adapter publishes/subscribes on.
const ChannelName = "discord"

// MaxMessageLength is Discord's hard cap on a single message's content.
const MaxMessageLength = 2000

// Config configures the Discord adapter.
type Config struct {
	BotToken string
	Logger   *slog.Logger
}

// discordSession covers the subset of *discordgo.Session this adapter
// calls, narrowed from the teacher's discordSession interface, so tests
// can inject a fake instead of opening a real gateway connection.
type discordSession interface {
	Open() error
	Close() error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	AddHandler(handler interface{}) func()
}

// Adapter holds a Discord gateway session and relays messages to and from
// the bus.
type Adapter struct {
	cfg     Config
	bus     *bus.Bus
	session discordSession
	logger  *slog.Logger

	progressMu sync.Mutex
	progressID map[string]string
}

// New creates a Discord adapter bound to b. It does not connect until
// Start is called.
func New(cfg Config, b *bus.Bus) (*Adapter, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("discord: bot_token is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	a := &Adapter{cfg: cfg, bus: b, session: session, logger: logger.With("transport", "discord"), progressID: make(map[string]string)}
	session.AddHandler(a.handleMessageCreate)
	return a, nil
}

var _ discordSession = (*discordgo.Session)(nil)

// Register subscribes this adapter to the bus under ChannelName. It must
// be called before the bus's dispatcher starts (bus.Bus.Start), and
// before Start, so no early outbound message is lost to an empty
// subscriber table.
func (a *Adapter) Register() {
	a.bus.Subscribe(ChannelName, a.send)
}

// Start opens the gateway session and blocks until ctx is cancelled.
// Register must be called first.
func (a *Adapter) Start(ctx context.Context) error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	a.logger.Info("discord gateway session opened")

	<-ctx.Done()

	if err := a.session.Close(); err != nil {
		a.logger.Warn("failed to close discord session", "error", err)
	}
	return nil
}

// handleMessageCreate publishes every non-bot channel message as an
// InboundMessage.
func (a *Adapter) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) == "" {
		return
	}
	msg := models.InboundMessage{
		Channel: ChannelName,
		ChatID:  m.ChannelID,
		UserID:  m.Author.ID,
		Text:    m.Content,
	}
	if err := a.bus.PublishInbound(context.Background(), msg); err != nil {
		a.logger.Warn("failed to publish inbound discord message", "error", err)
	}
}

// send is the bus Subscriber invoked for outbound messages on "discord".
func (a *Adapter) send(ctx context.Context, msg models.OutboundMessage) error {
	switch msg.Kind {
	case models.OutboundTyping:
		return a.sendTyping(ctx, msg.ChatID)
	case models.OutboundProgress:
		return a.sendProgress(ctx, msg.ChatID, msg.Text)
	case models.OutboundReply:
		return a.sendReply(ctx, msg.ChatID, msg.Text)
	default:
		return nil
	}
}

func (a *Adapter) sendTyping(ctx context.Context, channelID string) error {
	if err := a.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		a.logger.Debug("failed to send typing indicator", "error", err, "channel_id", channelID)
	}
	return nil
}

// sendProgress edits the channel's in-flight progress message in place,
// starting a new one if none is tracked yet for this channel.
func (a *Adapter) sendProgress(ctx context.Context, channelID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > MaxMessageLength {
		text = text[:MaxMessageLength]
	}

	a.progressMu.Lock()
	messageID, tracked := a.progressID[channelID]
	a.progressMu.Unlock()

	if !tracked {
		sent, err := a.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("discord: start progress message: %w", err)
		}
		a.progressMu.Lock()
		a.progressID[channelID] = sent.ID
		a.progressMu.Unlock()
		return nil
	}

	if _, err := a.session.ChannelMessageEdit(channelID, messageID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: edit progress message: %w", err)
	}
	return nil
}

// sendReply sends the final reply text, chunked when it exceeds
// MaxMessageLength, and clears any tracked progress message so the next
// turn starts a fresh one.
func (a *Adapter) sendReply(ctx context.Context, channelID, text string) error {
	a.progressMu.Lock()
	delete(a.progressID, channelID)
	a.progressMu.Unlock()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, chunk := range chunkText(text, MaxMessageLength) {
		if _, err := a.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("discord: send message: %w", err)
		}
	}
	return nil
}

func chunkText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
