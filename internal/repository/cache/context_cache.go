package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-assistant-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:context:"

// ContextCache stores session contexts in redis so several API replicas share them.
type ContextCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.ContextCache = &ContextCache{}

func NewContextCache(rdb *redis.Client, ttl time.Duration) *ContextCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ContextCache{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (c *ContextCache) Get(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get context: %w", err)
	}
	return val, true, nil
}

func (c *ContextCache) Save(ctx context.Context, sessionID, contextBlock string) error {
	if err := c.rdb.Set(ctx, key(sessionID), contextBlock, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set context: %w", err)
	}
	return nil
}
