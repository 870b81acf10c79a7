package retrieval

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"zantaracore/internal/vectordb"
)

// warmupPriority lists the collections pre-loaded on startup, in
// priority order (pricing > visa > tax).
var warmupPriority = []string{"bali_zero_pricing", "visa_oracle", "tax_genius"}

// QueryEmbedder is the narrow embedding contract the service needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service is the retrieval pipeline: route -> embed -> fan out -> fuse
// -> resolve conflicts -> (optionally) rerank -> snippet.
type Service struct {
	router   *Router
	searcher Searcher
	embedder QueryEmbedder
	reranker Reranker
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithReranker attaches a cross-encoder reranking stage.
func WithReranker(r Reranker) Option {
	return func(s *Service) { s.reranker = r }
}

// NewService builds the retrieval service.
func NewService(router *Router, searcher Searcher, embedder QueryEmbedder, opts ...Option) *Service {
	s := &Service{router: router, searcher: searcher, embedder: embedder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchResult is the pipeline's output plus per-stage diagnostics for
// the health monitor.
type SearchResult struct {
	Items             []RetrievedItem
	Diagnostics       SourceDiagnostics
	StageMS           map[string]int64
	ConflictsDetected int
}

// Search runs the full multi-collection hybrid-search-with-conflict-
// resolution pipeline for one query. excludeRepealed drops entries whose
// status_vigensi payload field is "dicabut" (repealed); callers pass
// false only when they explicitly need repealed material surfaced.
func (s *Service) Search(ctx context.Context, query, lang, userTier string, k int, filter *vectordb.Filter, excludeRepealed bool) (SearchResult, error) {
	return s.search(ctx, query, lang, userTier, k, filter, excludeRepealed, nil)
}

// SearchCollection runs the same pipeline pinned to a single collection,
// bypassing topic routing entirely. This is the forced, no-fallback path
// pricing queries and any other single-collection tool invocation use.
func (s *Service) SearchCollection(ctx context.Context, query, lang, userTier, collection string, k int, filter *vectordb.Filter, excludeRepealed bool) (SearchResult, error) {
	return s.search(ctx, query, lang, userTier, k, filter, excludeRepealed, []string{collection})
}

func (s *Service) search(ctx context.Context, query, lang, userTier string, k int, filter *vectordb.Filter, excludeRepealed bool, collectionOverride []string) (SearchResult, error) {
	stages := map[string]int64{}

	t0 := time.Now()
	plan := BuildPlan(s.router, query, lang, userTier, k, filter, excludeRepealed)
	if collectionOverride != nil {
		plan.Collections = s.router.FilterByTier(collectionOverride, userTier)
	}
	stages["plan_ms"] = time.Since(t0).Milliseconds()

	t0 = time.Now()
	dense, err := s.embedder.EmbedQuery(ctx, query)
	stages["embed_ms"] = time.Since(t0).Milliseconds()
	if err != nil {
		return SearchResult{}, err
	}

	t0 = time.Now()
	hits, diag := ParallelCandidates(ctx, s.searcher, plan, dense, plan.Filter)
	stages["search_ms"] = time.Since(t0).Milliseconds()

	t0 = time.Now()
	fused := FuseRanks(hits, plan.RRFK)
	items, conflicts := ResolveConflicts(s.router, fused)
	if plan.FinalK > 0 && len(items) > plan.FinalK*2 {
		items = items[:plan.FinalK*2]
	}
	stages["fuse_ms"] = time.Since(t0).Milliseconds()

	if s.reranker != nil && ShouldRerank(true, items) {
		t0 = time.Now()
		reranked, rerr := s.reranker.Rerank(ctx, query, items)
		stages["rerank_ms"] = time.Since(t0).Milliseconds()
		if rerr == nil {
			items = reranked
		}
	}

	items = GenerateSnippets(items, query)
	if plan.FinalK > 0 && len(items) > plan.FinalK {
		items = items[:plan.FinalK]
	}

	return SearchResult{Items: items, Diagnostics: diag, StageMS: stages, ConflictsDetected: conflicts}, nil
}

// Warmup pre-loads the priority collections (pricing > visa > tax) with
// a single 1-result dense search each, plus one throwaway embedding to
// warm the embedding model. Every failure is logged and swallowed —
// warmup must never block or fail process readiness.
func (s *Service) Warmup(ctx context.Context) {
	dense, err := s.embedder.EmbedQuery(ctx, "warmup")
	if err != nil {
		log.Warn().Err(err).Msg("warmup_embedding_failed")
		return
	}

	var g errgroup.Group
	for _, name := range warmupPriority {
		collection := name
		g.Go(func() error {
			if _, err := s.searcher.HybridSearch(ctx, collection, dense, nil, 1, nil); err != nil {
				log.Warn().Err(err).Str("collection", collection).Msg("warmup_search_failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
