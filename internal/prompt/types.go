// Package prompt assembles the system prompt the reasoning engine runs
// against: a persona-gated, language-locked master template with a
// user-memory block injected, cached by composite key with a short TTL.
package prompt

import (
	"context"
	"time"

	"zantaracore/internal/memory"
)

// Cache is the narrow TTL key/value contract the builder needs; Redis
// (internal/orchestrator's RedisDedupeStore pattern, generalized here to
// a prompt-scoped interface so this package doesn't import orchestrator)
// or an in-process map both satisfy it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// cacheTTL is the spec's fixed 5-minute prompt cache lifetime.
const cacheTTL = 5 * time.Minute

// Params is everything the builder needs to assemble one request's
// system prompt.
type Params struct {
	UserID            string
	UserEmail         string
	Role              string
	Query             string
	DeepThink         bool
	Memory            memory.Context
	AdditionalContext string
	RAGResults        string
}
