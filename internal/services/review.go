package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/dukanapp/dukan/internal/db"
	"github.com/dukanapp/dukan/internal/intake"
	"github.com/dukanapp/dukan/internal/logging"
	"github.com/dukanapp/dukan/internal/observability"
)

// ReviewService is the operator side of the pipeline. It re-runs stored
// orders through the same engine the webhook uses, so the review card can
// never disagree with the original resolution logic.
type ReviewService struct {
	engine *intake.Engine
	orders *db.OrderStore
	logger *slog.Logger
}

func NewReviewService(engine *intake.Engine, orders *db.OrderStore, logger *slog.Logger) *ReviewService {
	return &ReviewService{engine: engine, orders: orders, logger: logger}
}

func (s *ReviewService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// ReviewCard is what the operator UI renders: the stored order plus the
// freshly re-derived availability and review state.
type ReviewCard struct {
	Order *db.Order      `json:"order"`
	Fresh *intake.Result `json:"fresh"`
}

// ReviewOrder re-derives availability for a stored order against the
// current catalog and persists the refreshed parse.
func (s *ReviewService) ReviewOrder(ctx context.Context, orderID uuid.UUID, scope intake.AccessScope) (*ReviewCard, error) {
	span := sentry.StartSpan(
		ctx,
		"service.review.review_order",
		sentry.WithOpName("service.review"),
		sentry.WithDescription("ReviewOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := s.engine.Reevaluate(ctx, &order.Parsed, scope)
	if err := s.orders.UpdateParsed(ctx, orderID, result.Order); err != nil {
		// The card still reflects reality; only the stored copy is stale.
		s.loggerFromContext(ctx).Warn("failed to persist refreshed parse", "order_id", orderID, "error", err)
	}

	observability.MeterFromContext(ctx).Count("review.order.reevaluated", 1)
	return &ReviewCard{Order: order, Fresh: result}, nil
}

// Preview dry-runs a pasted message through the engine without
// persisting anything.
func (s *ReviewService) Preview(ctx context.Context, text string, scope intake.AccessScope) *intake.Result {
	span := sentry.StartSpan(
		ctx,
		"service.review.preview",
		sentry.WithOpName("service.review"),
		sentry.WithDescription("Preview"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	observability.MeterFromContext(ctx).Count("review.preview.requested", 1)
	return s.engine.Evaluate(ctx, text, scope, false)
}

// ListPending returns the operator's review queue.
func (s *ReviewService) ListPending(ctx context.Context, limit int) ([]*db.Order, error) {
	return s.orders.ListPendingReview(ctx, limit)
}

// UpdateStatus applies an operator decision to an order.
func (s *ReviewService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to db.OrderStatus) error {
	span := sentry.StartSpan(
		ctx,
		"service.review.update_status",
		sentry.WithOpName("service.review"),
		sentry.WithDescription("UpdateStatus"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	if err := s.orders.UpdateStatus(ctx, orderID, to); err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	s.loggerFromContext(ctx).Info("order status updated", "order_id", orderID, "status", to)
	return nil
}
