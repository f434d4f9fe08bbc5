package telegram

// Package telegram adapts Telegram bot updates to the intake engine's
// message shape and sends replies back into the originating chat.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// ChannelName identifies this channel in cache keys and logs.
const ChannelName = "telegram"

// Client wraps the bot API for outbound replies.
type Client struct {
	bot *telego.Bot
	log *slog.Logger
}

func NewClient(token string, log *slog.Logger) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if log == nil {
		log = slog.Default()
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	return &Client{bot: bot, log: log.With("component", "telegram")}, nil
}

// SendReply posts a text message into a chat.
func (c *Client) SendReply(ctx context.Context, chatID int64, text string) error {
	if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// InboundText is one decoded webhook delivery the intake pipeline can
// process.
type InboundText struct {
	// UpdateID is Telegram's delivery id, the idempotency key: retries of
	// the same delivery reuse it.
	UpdateID string
	// MessageRef identifies the message itself, chat-scoped.
	MessageRef string
	ChatID     int64
	SenderID   int64
	Text       string
	SentAt     time.Time
}

// DecodeUpdate extracts the order text from one webhook update. Updates
// without a usable text message (edits, stickers, joins) report ok=false
// and are acknowledged without processing.
func DecodeUpdate(update telego.Update) (InboundText, bool) {
	message := update.Message
	if message == nil {
		return InboundText{}, false
	}
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return InboundText{}, false
	}

	inbound := InboundText{
		UpdateID:   strconv.Itoa(update.UpdateID),
		MessageRef: fmt.Sprintf("%d:%d", message.Chat.ID, message.MessageID),
		ChatID:     message.Chat.ID,
		Text:       text,
		SentAt:     time.Unix(message.Date, 0).UTC(),
	}
	if message.From != nil {
		inbound.SenderID = message.From.ID
	}
	return inbound, true
}
