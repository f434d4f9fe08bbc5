package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/dukanapp/dukan/internal/db"
	"github.com/dukanapp/dukan/internal/intake"
	"github.com/dukanapp/dukan/internal/logging"
	"github.com/dukanapp/dukan/internal/observability"
	"github.com/dukanapp/dukan/internal/telegram"
)

// ReplySender posts the composed confirmation back into the chat.
type ReplySender interface {
	SendReply(ctx context.Context, chatID int64, text string) error
}

// ScopeReader resolves a chat sender's department scope.
type ScopeReader interface {
	ScopeBySender(ctx context.Context, senderChannelID int64) (intake.AccessScope, error)
}

// IntakeService is the webhook side of the pipeline: one inbound chat
// message in, one persisted order and one chat reply out.
type IntakeService struct {
	engine *intake.Engine
	scopes ScopeReader
	sender ReplySender
	logger *slog.Logger
}

func NewIntakeService(engine *intake.Engine, scopes ScopeReader, sender ReplySender, logger *slog.Logger) *IntakeService {
	return &IntakeService{
		engine: engine,
		scopes: scopes,
		sender: sender,
		logger: logger,
	}
}

func (s *IntakeService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// HandleMessage runs one chat message through the engine and replies in
// the chat. Reply delivery failures are logged, never returned: the order
// is already persisted and Telegram must still get its ack.
func (s *IntakeService) HandleMessage(ctx context.Context, inbound telegram.InboundText) error {
	span := sentry.StartSpan(
		ctx,
		"service.intake.handle_message",
		sentry.WithOpName("service.intake"),
		sentry.WithDescription("HandleMessage"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("channel", telegram.ChannelName))
	meter.Count("intake.message.received", 1)

	scope, err := s.scopes.ScopeBySender(ctx, inbound.SenderID)
	if err != nil {
		meter.Count("intake.message.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "scope_lookup_failed"),
		))
		return fmt.Errorf("failed to resolve sender scope: %w", err)
	}

	result := s.engine.Process(ctx, intake.InboundMessage{
		ChannelMessageID: inbound.MessageRef,
		SenderChannelID:  inbound.SenderID,
		RawText:          inbound.Text,
		ReceivedAt:       inbound.SentAt,
	}, scope)

	if result.PersistErr != nil {
		if errors.Is(result.PersistErr, db.ErrDuplicateChannelMessage) {
			// Second delivery of a message the cache already forgot.
			// The first run replied; stay silent.
			meter.Count("intake.message.duplicate", 1)
			logger.Info("skipping duplicate message", "message_ref", inbound.MessageRef)
			return nil
		}
		meter.Count("intake.message.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "persist_failed"),
		))
	}

	outcome := "confirmed"
	if result.Order.NeedsReview {
		outcome = "needs_review"
	}
	meter.Count("intake.order.parsed", 1, sentry.WithAttributes(
		attribute.String("outcome", outcome),
	))
	logger.Info("processed inbound order",
		"message_ref", inbound.MessageRef,
		"sender_id", inbound.SenderID,
		"order_id", result.OrderID,
		"items", len(result.Order.LineItems),
		"needs_review", result.Order.NeedsReview)

	if err := s.sender.SendReply(ctx, inbound.ChatID, result.Reply); err != nil {
		meter.Count("intake.reply.failed", 1)
		logger.Error("failed to send chat reply", "chat_id", inbound.ChatID, "error", err)
	}

	return nil
}
