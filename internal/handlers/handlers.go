package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukanapp/dukan/internal/auth"
	"github.com/dukanapp/dukan/internal/cache"
	"github.com/dukanapp/dukan/internal/config"
	"github.com/dukanapp/dukan/internal/logging"
	"github.com/dukanapp/dukan/internal/services"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

// Handlers provides the HTTP surface: the Telegram webhook and the
// operator review API.
type Handlers struct {
	config        *config.Config
	db            *pgxpool.Pool
	cacheProvider cache.Provider
	tokens        *auth.TokenService
	intakeService *services.IntakeService
	reviewService *services.ReviewService
	logger        *slog.Logger
}

type Dependencies struct {
	Config        *config.Config
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Tokens        *auth.TokenService
	IntakeService *services.IntakeService
	ReviewService *services.ReviewService
	Logger        *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("handlers dependencies: tokens is required")
	}
	if deps.IntakeService == nil {
		return nil, fmt.Errorf("handlers dependencies: intakeService is required")
	}
	if deps.ReviewService == nil {
		return nil, fmt.Errorf("handlers dependencies: reviewService is required")
	}

	return &Handlers{
		config:        deps.Config,
		db:            deps.DB,
		cacheProvider: deps.CacheProvider,
		tokens:        deps.Tokens,
		intakeService: deps.IntakeService,
		reviewService: deps.ReviewService,
		logger:        logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	// Test database connection
	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"service": "dukan",
	}); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode root response", "error", err)
	}
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, map[string]string{"error": message})
}
