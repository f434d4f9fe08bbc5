package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukanapp/dukan/internal/auth"
	"github.com/dukanapp/dukan/internal/cache"
	"github.com/dukanapp/dukan/internal/config"
	"github.com/dukanapp/dukan/internal/db"
	"github.com/dukanapp/dukan/internal/handlers"
	"github.com/dukanapp/dukan/internal/intake"
	"github.com/dukanapp/dukan/internal/logging"
	"github.com/dukanapp/dukan/internal/services"
	"github.com/dukanapp/dukan/internal/telegram"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	bot, err := telegram.NewClient(cfg.TelegramBotToken, logger.With("component", "telegram"))
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize telegram client: %w", err)
	}

	catalogStore := db.NewCatalogStore(database)
	orderStore := db.NewOrderStore(database)
	scopeStore := db.NewScopeStore(database)

	lexicon, err := intake.LoadLexiconFile(cfg.LexiconFile)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	// Colors only the catalog knows about still need to tokenize as
	// colors. A failure here degrades matching, it does not block startup.
	if colors, err := catalogStore.ColorNames(startupCtx); err != nil {
		logger.Warn("failed to load catalog colors into lexicon", "error", err)
	} else {
		lexicon.AddColors(colors)
	}

	engine := intake.NewEngine(catalogStore, catalogStore, orderStore, lexicon, intake.EngineConfig{
		DeliveryFee:        cfg.DeliveryFeeIQD,
		MatchThreshold:     cfg.MatchThreshold,
		MaxConcurrentItems: cfg.MaxConcurrentItems,
	}, logger.With("component", "intake_engine"))

	tokens := auth.NewTokenService(cfg.OperatorTokenSecret, 0)
	intakeService := services.NewIntakeService(engine, scopeStore, bot, logger.With("component", "intake_service"))
	reviewService := services.NewReviewService(engine, orderStore, logger.With("component", "review_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:        cfg,
		DB:            database,
		CacheProvider: cacheProvider,
		Tokens:        tokens,
		IntakeService: intakeService,
		ReviewService: reviewService,
		Logger:        logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	sentry.Flush(2 * time.Second)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var console slog.Handler
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		console = slog.NewJSONHandler(os.Stdout, opts)
	default:
		console = tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		})
	}

	if cfg.SentryDSN == "" {
		return slog.New(console)
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelInfo},
	}.NewSentryHandler(context.Background())
	return slog.New(logging.MultiHandler(console, sentryHandler))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
