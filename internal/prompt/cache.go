package prompt

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisCache backs the prompt cache with a shared `SET ... EX 300`
// store so the TTL is honored across process instances rather than
// per-process, generalizing the teacher's per-process rate-limiter map
// (internal/rag/embedder) the same way internal/orchestrator/dedupe.go's
// RedisDedupeStore already does for idempotency keys.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
