package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// semanticCacheTTL is the spec's ~5-minute cache lifetime (§6 "Semantic
// cache. TTL ~5 minutes; exact-match semantics suffice").
const semanticCacheTTL = 5 * time.Minute

// SemanticCache is, despite its name, an exact-match cache: the spec's
// own Open Questions note the write path uses a deterministic
// placeholder embedding, meaning only identical (user, query) pairs
// ever hit. This is adapted from internal/orchestrator/dedupe.go's
// RedisDedupeStore (a SET/GET-with-TTL Redis idempotency store),
// repurposed from correlation-id deduplication to query-result caching
// keyed by a SHA-256 digest of the user id and query text.
type SemanticCache struct {
	client *redis.Client
}

// NewSemanticCache wraps a shared Redis client.
func NewSemanticCache(client *redis.Client) *SemanticCache {
	return &SemanticCache{client: client}
}

func cacheKey(userID, query string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + query))
	return "semcache:" + hex.EncodeToString(sum[:])
}

// GetCachedResult returns a previously cached QueryResult for the exact
// (userID, query) pair, if present and unexpired.
func (c *SemanticCache) GetCachedResult(ctx context.Context, userID, query string) (QueryResult, bool) {
	if c == nil || c.client == nil {
		return QueryResult{}, false
	}
	raw, err := c.client.Get(ctx, cacheKey(userID, query)).Result()
	if err != nil {
		return QueryResult{}, false
	}
	var result QueryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return QueryResult{}, false
	}
	return result, true
}

// CacheResult persists a QueryResult under the deterministic query key.
// A write failure never fails the request; the caller logs it and moves
// on (spec §7 MemoryPersistError-style policy applied to the cache too).
func (c *SemanticCache) CacheResult(ctx context.Context, userID, query string, result QueryResult) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(userID, query), raw, semanticCacheTTL).Err()
}
