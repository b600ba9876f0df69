package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bizledger/cashbank/internal/logging"
)

// IdempotencyGuard claims an idempotency key while the request that carries
// it is in flight. The ledger's unique index remains the durable guard.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, businessID, key string) (bool, error)
	Release(ctx context.Context, businessID, key string)
}

// NewIdempotencyGuard returns a redis backed guard, or one that admits every
// request when redis is not configured.
func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) IdempotencyGuard {
	if client == nil {
		return noopGuard{}
	}
	return &RedisIdempotencyGuard{redis: client, ttl: ttl}
}

type RedisIdempotencyGuard struct {
	redis *redis.Client
	ttl   time.Duration
}

func idempotencyKey(businessID, key string) string {
	return fmt.Sprintf("cashbank:idempotency:%s:%s", businessID, key)
}

func (g *RedisIdempotencyGuard) Acquire(ctx context.Context, businessID, key string) (bool, error) {
	ok, err := g.redis.SetNX(ctx, idempotencyKey(businessID, key), "in-flight", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

func (g *RedisIdempotencyGuard) Release(ctx context.Context, businessID, key string) {
	if err := g.redis.Del(ctx, idempotencyKey(businessID, key)).Err(); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to release idempotency key")
	}
}

type noopGuard struct{}

func (noopGuard) Acquire(context.Context, string, string) (bool, error) { return true, nil }

func (noopGuard) Release(context.Context, string, string) {}
