package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mymmrac/telego"

	"github.com/dukanapp/dukan/internal/cache"
	"github.com/dukanapp/dukan/internal/telegram"
)

// secretTokenHeader is set by Telegram on every webhook delivery when the
// webhook was registered with a secret token.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const processedTTL = 24 * time.Hour

// TelegramWebhook receives bot updates. Once the secret checks out the
// response is always 200: Telegram retries non-2xx deliveries forever,
// and a malformed or failing update would wedge the whole update queue
// behind it.
func (h *Handlers) TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	secret := r.Header.Get(secretTokenHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.config.TelegramWebhookSecret)) != 1 {
		logger.Warn("telegram webhook with bad secret token", "remote_ip", clientIP(r))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var update telego.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Error("failed to decode telegram update", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	inbound, ok := telegram.DecodeUpdate(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	cacheKey := cache.MessageKey(telegram.ChannelName, inbound.UpdateID)
	if _, err := h.cacheProvider.Get(ctx, cacheKey); err == nil {
		logger.Info("update already processed", "update_id", inbound.UpdateID)
		w.WriteHeader(http.StatusOK)
		return
	}

	processErr := h.intakeService.HandleMessage(ctx, inbound)

	if processErr == nil {
		if err := h.cacheProvider.Set(ctx, cacheKey, "processed", processedTTL); err != nil {
			logger.Error("failed to mark update as processed in cache", "error", err)
		}
	} else {
		logger.Error("failed to process telegram update", "error", processErr, "update_id", inbound.UpdateID)
	}

	w.WriteHeader(http.StatusOK)
}
