package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zantaracore/internal/vectordb"
)

type fakeSearcher struct {
	byCollection map[string][]vectordb.Result
	failFor      string
}

func (f *fakeSearcher) HybridSearch(_ context.Context, collection string, _ []float32, _ map[uint32]float32, _ int, _ *vectordb.Filter) ([]vectordb.Result, error) {
	if collection == f.failFor {
		return nil, errors.New("simulated 503")
	}
	return f.byCollection[collection], nil
}

func TestParallelCandidatesDropsFailingCollectionButKeepsOthers(t *testing.T) {
	searcher := &fakeSearcher{
		byCollection: map[string][]vectordb.Result{
			"visa_oracle": {{ID: "a", Score: 0.7}},
			"tax_genius":  {{ID: "b", Score: 0.9}},
		},
		failFor: "tax_genius",
	}
	plan := QueryPlan{Query: "visa", Collections: []string{"visa_oracle", "tax_genius"}, PerCollectionK: 5}

	hits, diag := ParallelCandidates(context.Background(), searcher, plan, []float32{0.1}, nil)

	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
	assert.False(t, diag.PerCollection["tax_genius"].HadResults)
	require.Error(t, diag.PerCollection["tax_genius"].Err)
	assert.True(t, diag.PerCollection["visa_oracle"].HadResults)
	assert.Equal(t, 1, diag.PerCollection["visa_oracle"].ResultCount)
}

func TestParallelCandidatesEmptyPlanReturnsEmpty(t *testing.T) {
	hits, diag := ParallelCandidates(context.Background(), &fakeSearcher{}, QueryPlan{}, nil, nil)
	assert.Empty(t, hits)
	assert.Empty(t, diag.PerCollection)
}
