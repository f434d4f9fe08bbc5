package db

import "github.com/dukanapp/dukan/internal/models"

type Order = models.Order
type Sender = models.Sender
type OrderStatus = models.OrderStatus

const (
	StatusPendingReview = models.StatusPendingReview
	StatusConfirmed     = models.StatusConfirmed
	StatusRejected      = models.StatusRejected
	StatusFulfilled     = models.StatusFulfilled
)
