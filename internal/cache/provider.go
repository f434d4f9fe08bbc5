package cache

// Package cache provides caching functionality for inbound message idempotency.

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for caching processed message IDs
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// MessageKey identifies one inbound message for duplicate-delivery
// detection. Telegram retries webhook deliveries until it sees a 2xx, so
// the same update can arrive more than once.
func MessageKey(channel, messageID string) string {
	return fmt.Sprintf("message:%s:%s", channel, messageID)
}
