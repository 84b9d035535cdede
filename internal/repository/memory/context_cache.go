package memory

import (
	"context"
	"time"

	"library-assistant-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type ContextCache struct {
	cache *cache.Cache
}

var _ contract.ContextCache = &ContextCache{}

func NewContextCache(ttl time.Duration) *ContextCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// purges expired items every 10 minutes
	return &ContextCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *ContextCache) Save(_ context.Context, sessionID, contextBlock string) error {
	r.cache.Set(sessionID, contextBlock, cache.DefaultExpiration)
	return nil
}

func (r *ContextCache) Get(_ context.Context, sessionID string) (string, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (r *ContextCache) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
