package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"zantaracore/internal/vectordb"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type trackingSearcher struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (s *trackingSearcher) HybridSearch(_ context.Context, collection string, _ []float32, _ map[uint32]float32, limit int, _ *vectordb.Filter) ([]vectordb.Result, error) {
	s.mu.Lock()
	s.seen = append(s.seen, collection)
	s.mu.Unlock()
	if s.fails[collection] {
		return nil, errors.New("simulated unavailable")
	}
	if limit != 1 {
		return nil, errors.New("warmup must request exactly one result")
	}
	return []vectordb.Result{{ID: "w"}}, nil
}

func TestServiceWarmupSearchesPriorityCollections(t *testing.T) {
	searcher := &trackingSearcher{}
	svc := NewService(NewRouter(DefaultCollections()), searcher, &fakeEmbedder{})

	svc.Warmup(context.Background())

	assert.ElementsMatch(t, warmupPriority, searcher.seen)
}

func TestServiceWarmupSurvivesPartialFailure(t *testing.T) {
	searcher := &trackingSearcher{fails: map[string]bool{"tax_genius": true}}
	svc := NewService(NewRouter(DefaultCollections()), searcher, &fakeEmbedder{})

	assert.NotPanics(t, func() { svc.Warmup(context.Background()) })
	assert.ElementsMatch(t, warmupPriority, searcher.seen)
}

func TestServiceWarmupSkipsSearchOnEmbeddingFailure(t *testing.T) {
	searcher := &trackingSearcher{}
	svc := NewService(NewRouter(DefaultCollections()), searcher, &fakeEmbedder{err: errors.New("embedding backend down")})

	svc.Warmup(context.Background())

	assert.Empty(t, searcher.seen)
}
