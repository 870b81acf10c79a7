// Package embedding implements the two embedding providers used by the
// retrieval and memory layers: a remote OpenAI-compatible provider and a
// deterministic local provider that needs no network access. Both
// providers are fixed-dimension, matching the vector columns created in
// Qdrant and Postgres at startup.
package embedding

import "context"

// Provider converts text into embedding vectors.
type Provider interface {
	// EmbedBatch returns one vector per input string, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Name identifies the provider/model for logging and cache keys.
	Name() string
	// Dimension is the fixed vector width this provider produces.
	Dimension() int
	// Ping verifies the provider is reachable.
	Ping(ctx context.Context) error
}

// Generator picks a provider for embed-time (document ingestion, prefixed
// with EmbedPrefix) and search-time (query embedding, prefixed with
// SearchPrefix) calls, following the asymmetric-prefix convention some
// embedding models require.
type Generator struct {
	provider     Provider
	embedPrefix  string
	searchPrefix string
}

// NewGenerator wraps a provider with the configured prefixes.
func NewGenerator(p Provider, embedPrefix, searchPrefix string) *Generator {
	return &Generator{provider: p, embedPrefix: embedPrefix, searchPrefix: searchPrefix}
}

func (g *Generator) Dimension() int { return g.provider.Dimension() }
func (g *Generator) Name() string   { return g.provider.Name() }

// EmbedDocuments embeds chunks for storage.
func (g *Generator) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return g.provider.EmbedBatch(ctx, prefixAll(g.embedPrefix, texts))
}

// EmbedQuery embeds a single search query.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := g.provider.EmbedBatch(ctx, prefixAll(g.searchPrefix, []string{text}))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func prefixAll(prefix string, texts []string) []string {
	if prefix == "" {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = prefix + t
	}
	return out
}
