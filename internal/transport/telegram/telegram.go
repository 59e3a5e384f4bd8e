// Package telegram adapts Telegram's bot API to the bus's InboundMessage/
// OutboundMessage contract.
//
// Grounded on internal/channels/telegram/adapter.go's Start/handleMessage/
// Send shape, narrowed to long-polling only (the teacher's webhook mode has
// no wiring point in this spec) and to plain text (no attachments or
// keyboards). Progress-trace updates reuse the teacher's
// StartStreamingResponse/UpdateStreamingResponse edit-in-place idea, tracked
// per chat instead of per in-flight request.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// ChannelName is the bus channel this adapter publishes/subscribes on.
const ChannelName = "telegram"

// MaxMessageLength is Telegram's hard cap on a single message's text.
const MaxMessageLength = 4096

// Config configures the Telegram adapter.
type Config struct {
	BotToken string
	Logger   *slog.Logger
}

// botClient covers the subset of *tgbot.Bot this adapter calls, so tests
// can inject a fake instead of hitting the real API.
type botClient interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*tgmodels.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	Start(ctx context.Context)
}

// Adapter long-polls Telegram for updates and publishes them to the bus as
// InboundMessages, and sends bus OutboundMessages back as Telegram replies.
type Adapter struct {
	cfg    Config
	bus    *bus.Bus
	bot    botClient
	logger *slog.Logger

	progressMu sync.Mutex
	progressID map[int64]int
}

// New creates a Telegram adapter bound to b. It does not connect until
// Start is called.
func New(cfg Config, b *bus.Bus) (*Adapter, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{cfg: cfg, bus: b, logger: logger.With("transport", "telegram"), progressID: make(map[int64]int)}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(a.handleUpdate),
	}
	b2, err := tgbot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	a.bot = b2
	return a, nil
}

var _ botClient = (*tgbot.Bot)(nil)

// Register subscribes this adapter to the bus under ChannelName. It must
// be called before the bus's dispatcher starts (bus.Bus.Start), and
// before Start, so no early outbound message is lost to an empty
// subscriber table.
func (a *Adapter) Register() {
	a.bus.Subscribe(ChannelName, a.send)
}

// Start begins long polling. It blocks until ctx is cancelled. Register
// must be called first.
func (a *Adapter) Start(ctx context.Context) error {
	a.logger.Info("starting telegram long polling")
	a.bot.Start(ctx)
	return nil
}

// handleUpdate is the bot library's default handler, invoked for every
// incoming update. Non-text-message updates are ignored.
func (a *Adapter) handleUpdate(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := models.InboundMessage{
		Channel: ChannelName,
		ChatID:  strconv.FormatInt(update.Message.Chat.ID, 10),
		Text:    update.Message.Text,
	}
	if update.Message.From != nil {
		msg.UserID = strconv.FormatInt(update.Message.From.ID, 10)
	}
	if err := a.bus.PublishInbound(ctx, msg); err != nil {
		a.logger.Warn("failed to publish inbound telegram message", "error", err)
	}
}

// send is the bus Subscriber invoked for outbound messages on "telegram".
func (a *Adapter) send(ctx context.Context, msg models.OutboundMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", msg.ChatID, err)
	}

	switch msg.Kind {
	case models.OutboundTyping:
		return a.sendTyping(ctx, chatID)
	case models.OutboundProgress:
		return a.sendProgress(ctx, chatID, msg.Text)
	case models.OutboundReply:
		return a.sendReply(ctx, chatID, msg.Text)
	default:
		return nil
	}
}

func (a *Adapter) sendTyping(ctx context.Context, chatID int64) error {
	if _, err := a.bot.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: tgmodels.ChatActionTyping,
	}); err != nil {
		a.logger.Debug("failed to send typing indicator", "error", err, "chat_id", chatID)
	}
	return nil
}

// sendProgress edits the chat's in-flight progress message in place,
// starting a new one if none is tracked yet for this chat.
func (a *Adapter) sendProgress(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > MaxMessageLength {
		text = text[:MaxMessageLength]
	}

	a.progressMu.Lock()
	messageID, tracked := a.progressID[chatID]
	a.progressMu.Unlock()

	if !tracked {
		sent, err := a.bot.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
		if err != nil {
			return fmt.Errorf("telegram: start progress message: %w", err)
		}
		a.progressMu.Lock()
		a.progressID[chatID] = sent.ID
		a.progressMu.Unlock()
		return nil
	}

	_, err := a.bot.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil && !strings.Contains(err.Error(), "message is not modified") {
		return fmt.Errorf("telegram: edit progress message: %w", err)
	}
	return nil
}

// sendReply sends the final reply text, chunked on newline boundaries when
// it exceeds MaxMessageLength, and clears any tracked progress message so
// the next turn starts a fresh one.
func (a *Adapter) sendReply(ctx context.Context, chatID int64, text string) error {
	a.progressMu.Lock()
	delete(a.progressID, chatID)
	a.progressMu.Unlock()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, chunk := range chunkOnNewlines(text, MaxMessageLength) {
		if _, err := a.bot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		}); err != nil {
			return fmt.Errorf("telegram: send message: %w", err)
		}
	}
	return nil
}

// chunkOnNewlines splits text into pieces no longer than limit, preferring
// to break at a newline near the limit so a chunk never cuts mid-line when
// avoidable.
func chunkOnNewlines(text string, limit int) []string {
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
