package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukanapp/dukan/internal/intake"
	"github.com/dukanapp/dukan/internal/models"
)

type OrderStore struct {
	pool *pgxpool.Pool
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrDuplicateChannelMessage = errors.New("order for this message already exists")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func validTransition(from, to OrderStatus) bool {
	return models.ValidStatusTransition(from, to)
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// SaveOrder persists one engine result. Implements intake.OrderPersister.
// Orders that need review land as pending_review, clean orders as
// confirmed. The unique index on channel_message_id backs up the cache
// based idempotency check.
func (s *OrderStore) SaveOrder(ctx context.Context, order *intake.ParsedOrder, msg intake.InboundMessage) (string, error) {
	parsedJSON, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("failed to encode parsed order: %w", err)
	}

	status := StatusConfirmed
	if order.NeedsReview {
		status = StatusPendingReview
	}

	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO orders (id, channel_message_id, sender_channel_id, raw_text, status, parsed, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		pgtype.Text{String: msg.ChannelMessageID, Valid: msg.ChannelMessageID != ""},
		msg.SenderChannelID,
		msg.RawText,
		string(status),
		parsedJSON,
		receivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateChannelMessage
		}
		return "", fmt.Errorf("failed to insert order: %w", err)
	}

	return id.String(), nil
}

// GetByID loads one stored order with its parsed payload.
func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var (
		order      Order
		messageID  pgtype.Text
		parsedJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, channel_message_id, sender_channel_id, raw_text, status, parsed, received_at, created_at, updated_at
		FROM orders
		WHERE id = $1`, id).
		Scan(&order.ID, &messageID, &order.SenderChannelID, &order.RawText,
			&order.Status, &parsedJSON, &order.ReceivedAt, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	order.ChannelMessageID = messageID.String
	if err := json.Unmarshal(parsedJSON, &order.Parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed order: %w", err)
	}
	return &order, nil
}

// ListPendingReview returns the oldest orders waiting for an operator,
// newest last.
func (s *OrderStore) ListPendingReview(ctx context.Context, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, channel_message_id, sender_channel_id, raw_text, status, parsed, received_at, created_at, updated_at
		FROM orders
		WHERE status = $1
		ORDER BY received_at
		LIMIT $2`, string(StatusPendingReview), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var (
			order      Order
			messageID  pgtype.Text
			parsedJSON []byte
		)
		if err := rows.Scan(&order.ID, &messageID, &order.SenderChannelID, &order.RawText,
			&order.Status, &parsedJSON, &order.ReceivedAt, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		order.ChannelMessageID = messageID.String
		if err := json.Unmarshal(parsedJSON, &order.Parsed); err != nil {
			return nil, fmt.Errorf("failed to decode parsed order %s: %w", order.ID, err)
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order through the operator workflow, enforcing
// the transition rules in a single guarded statement.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, to OrderStatus) error {
	var from OrderStatus
	err := s.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read order status: %w", err)
	}
	if !validTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`, id, string(to), string(from))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost a race with another operator; re-reading would just show
		// the other transition.
		return ErrInvalidStatusTransition
	}
	return nil
}

// UpdateParsed replaces the stored parse after a reevaluation, keeping
// the review card and the database in step.
func (s *OrderStore) UpdateParsed(ctx context.Context, id uuid.UUID, parsed *intake.ParsedOrder) error {
	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("failed to encode parsed order: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET parsed = $2, updated_at = now()
		WHERE id = $1`, id, parsedJSON)
	if err != nil {
		return fmt.Errorf("failed to update parsed order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
