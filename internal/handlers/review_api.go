package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dukanapp/dukan/internal/db"
)

// ReviewOrder re-derives availability and review state for one stored
// order through the live catalog.
func (h *Handlers) ReviewOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	card, err := h.reviewService.ReviewOrder(ctx, orderID, operatorScope(ctx))
	if errors.Is(err, db.ErrOrderNotFound) {
		writeJSONError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		logger.Error("failed to review order", "order_id", orderID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "review failed")
		return
	}

	if err := writeJSON(w, http.StatusOK, card); err != nil {
		logger.Error("failed to encode review card", "error", err)
	}
}

// PendingOrders returns the review queue, oldest first.
func (h *Handlers) PendingOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	orders, err := h.reviewService.ListPending(ctx, limit)
	if err != nil {
		logger.Error("failed to list pending orders", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"orders": orders}); err != nil {
		logger.Error("failed to encode pending orders", "error", err)
	}
}

type updateStatusRequest struct {
	Status db.OrderStatus `json:"status"`
}

// UpdateOrderStatus applies an operator decision.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case db.StatusConfirmed, db.StatusRejected, db.StatusFulfilled:
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err = h.reviewService.UpdateStatus(ctx, orderID, req.Status)
	switch {
	case errors.Is(err, db.ErrOrderNotFound):
		writeJSONError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, db.ErrInvalidStatusTransition):
		writeJSONError(w, http.StatusConflict, "invalid status transition")
	case err != nil:
		logger.Error("failed to update order status", "order_id", orderID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "update failed")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type previewRequest struct {
	Text string `json:"text"`
}

// PreviewIntake dry-runs a pasted message through the engine.
func (h *Handlers) PreviewIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := h.reviewService.Preview(ctx, req.Text, operatorScope(ctx))
	if err := writeJSON(w, http.StatusOK, result); err != nil {
		logger.Error("failed to encode preview", "error", err)
	}
}
