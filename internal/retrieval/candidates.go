package retrieval

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"zantaracore/internal/vectordb"
)

// Searcher is the subset of vectordb.Client the retrieval fan-out needs,
// narrowed to an interface so tests can substitute a fake.
type Searcher interface {
	HybridSearch(ctx context.Context, collection string, dense []float32, sparse map[uint32]float32, limit int, filter *vectordb.Filter) ([]vectordb.Result, error)
}

// collectionHit pairs a search result with the collection it came from.
type collectionHit struct {
	vectordb.Result
	Collection string
}

// ParallelCandidates fans out the hybrid search across every collection
// in the plan concurrently. Unlike a single all-or-nothing search, a
// failure on one collection is recorded in diagnostics and that
// collection's results are dropped; the others still return.
func ParallelCandidates(ctx context.Context, searcher Searcher, plan QueryPlan, dense []float32, filter *vectordb.Filter) ([]collectionHit, SourceDiagnostics) {
	diag := SourceDiagnostics{PerCollection: make(map[string]CollectionDiagnostic, len(plan.Collections))}
	if len(plan.Collections) == 0 {
		return nil, diag
	}
	sparse := SparseVector(plan.Query)

	type out struct {
		name string
		hits []vectordb.Result
		dur  time.Duration
		err  error
	}
	results := make(chan out, len(plan.Collections))
	// A plain errgroup.Group (not WithContext) so one collection's
	// failure never cancels the others still in flight; each failure is
	// recorded in diagnostics below instead of aborting the fan-out.
	var g errgroup.Group
	for _, name := range plan.Collections {
		collection := name
		g.Go(func() error {
			t0 := time.Now()
			hits, err := searcher.HybridSearch(ctx, collection, dense, sparse, plan.PerCollectionK, filter)
			results <- out{name: collection, hits: hits, dur: time.Since(t0), err: err}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var all []collectionHit
	var mu sync.Mutex
	for o := range results {
		mu.Lock()
		if o.err != nil {
			diag.PerCollection[o.name] = CollectionDiagnostic{Latency: o.dur, Err: o.err}
			mu.Unlock()
			continue
		}
		var scoreSum float64
		for _, h := range o.hits {
			all = append(all, collectionHit{Result: h, Collection: o.name})
			scoreSum += h.Score
		}
		avg := 0.0
		if len(o.hits) > 0 {
			avg = scoreSum / float64(len(o.hits))
		}
		diag.PerCollection[o.name] = CollectionDiagnostic{
			Latency:     o.dur,
			ResultCount: len(o.hits),
			HadResults:  len(o.hits) > 0,
			AvgScore:    avg,
		}
		mu.Unlock()
	}
	return all, diag
}
