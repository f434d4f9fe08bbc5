package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukanapp/dukan/internal/intake"
)

type OrderStatus string

const (
	// StatusPendingReview marks orders held for an operator decision.
	StatusPendingReview OrderStatus = "pending_review"
	// StatusConfirmed marks clean orders and reviewed orders an operator
	// approved.
	StatusConfirmed OrderStatus = "confirmed"
	StatusRejected  OrderStatus = "rejected"
	StatusFulfilled OrderStatus = "fulfilled"
)

// Order is one persisted intake result: the raw message as received plus
// everything the engine derived from it.
type Order struct {
	ID               uuid.UUID          `json:"id"`
	ChannelMessageID string             `json:"channel_message_id"`
	SenderChannelID  int64              `json:"sender_channel_id"`
	RawText          string             `json:"raw_text"`
	Status           OrderStatus        `json:"status"`
	Parsed           intake.ParsedOrder `json:"parsed"`
	ReceivedAt       time.Time          `json:"received_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ValidStatusTransition reports whether an operator may move an order
// from one status to another. Terminal states never transition.
func ValidStatusTransition(from, to OrderStatus) bool {
	switch from {
	case StatusPendingReview:
		return to == StatusConfirmed || to == StatusRejected
	case StatusConfirmed:
		return to == StatusFulfilled || to == StatusRejected
	default:
		return false
	}
}
