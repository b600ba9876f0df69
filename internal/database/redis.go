package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/bizledger/cashbank/internal/config"
)

// OpenRedis returns a connected client, or nil when redis is unreachable.
// Redis is optional: callers fall back to database-only behaviour.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, log logrus.FieldLogger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis connection failed, continuing without Redis")
		rdb.Close()
		return nil
	}

	log.WithField("addr", cfg.Addr()).Info("Redis connection established")
	return rdb
}
