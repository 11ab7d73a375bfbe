package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/config"
)

const keyPrefix = "evt:"

// Store is the slice of the Redis API the checker uses.
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Checker deduplicates events by ID against a Valkey/Redis seen-set.
// Event IDs are deterministic hashes of event content, so a redelivered or
// double-published event maps to the same key.
type Checker struct {
	store    Store
	enabled  bool
	failOpen bool
	ttl      time.Duration
	log      *zap.Logger
}

// NewClient creates a Redis client for the configured Valkey instance.
func NewClient(cfg config.Valkey) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	})
}

// NewChecker creates a checker from config.
func NewChecker(store Store, cfg config.Valkey, log *zap.Logger) *Checker {
	return &Checker{
		store:    store,
		enabled:  cfg.IdempotencyEnabled,
		failOpen: cfg.IdempotencyFailOpen,
		ttl:      time.Duration(cfg.IdempotencyTTLSec) * time.Second,
		log:      log,
	}
}

// FirstSeen reports whether this event ID has not been seen within the TTL,
// claiming it atomically (SETNX). When the cache is unreachable the checker
// either admits the event (fail-open) or surfaces the error, per config.
// Disabled checkers admit everything.
func (c *Checker) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	if !c.enabled {
		return true, nil
	}

	ok, err := c.store.SetNX(ctx, keyPrefix+eventID, 1, c.ttl).Result()
	if err != nil {
		if c.failOpen {
			c.log.Warn("Idempotency cache unavailable, admitting event",
				zap.String("event_id", eventID),
				zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	return ok, nil
}
