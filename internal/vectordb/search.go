package vectordb

import (
	"context"
	"errors"

	"github.com/qdrant/go-client/qdrant"

	"zantaracore/internal/errs"
)

// Result is one hybrid-search hit.
type Result struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// HybridSearch runs a dense-vector prefetch and a sparse (bm25) prefetch
// through server-side Reciprocal Rank Fusion, returning up to limit
// fused hits. sparse may be nil to fall back to a dense-only query.
func (c *Client) HybridSearch(ctx context.Context, collection string, dense []float32, sparse map[uint32]float32, limit int, filter *Filter) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	qf := filter.build()
	prefetch := []*qdrant.PrefetchQuery{
		{
			Query:          qdrant.NewQueryDense(dense),
			Using:          qdrant.PtrOf(VectorDense),
			Filter:         qf,
			Limit:          qdrant.PtrOf(uint64(limit * 4)),
		},
	}
	if len(sparse) > 0 {
		indices := make([]uint32, 0, len(sparse))
		values := make([]float32, 0, len(sparse))
		for idx, val := range sparse {
			indices = append(indices, idx)
			values = append(values, val)
		}
		prefetch = append(prefetch, &qdrant.PrefetchQuery{
			Query:  qdrant.NewQuerySparse(indices, values),
			Using:  qdrant.PtrOf(VectorSparse),
			Filter: qf,
			Limit:  qdrant.PtrOf(uint64(limit * 4)),
		})
	}

	var hits []*qdrant.ScoredPoint
	err := c.withRetry(ctx, func() error {
		var queryErr error
		if len(prefetch) == 1 {
			hits, queryErr = c.raw.Query(ctx, &qdrant.QueryPoints{
				CollectionName: collection,
				Query:          prefetch[0].Query,
				Using:          prefetch[0].Using,
				Filter:         qf,
				Limit:          qdrant.PtrOf(uint64(limit)),
				WithPayload:    qdrant.NewWithPayload(true),
			})
		} else {
			hits, queryErr = c.raw.Query(ctx, &qdrant.QueryPoints{
				CollectionName: collection,
				Prefetch:       prefetch,
				Query:          qdrant.NewQueryFusion(qdrant.Fusion_RRF),
				Filter:         qf,
				Limit:          qdrant.PtrOf(uint64(limit)),
				WithPayload:    qdrant.NewWithPayload(true),
			})
		}
		return queryErr
	})
	if err != nil {
		if errors.Is(err, errs.ErrUpstreamRejected) {
			return nil, nil
		}
		return nil, err
	}
	return toResults(hits), nil
}

func toResults(hits []*qdrant.ScoredPoint) []Result {
	out := make([]Result, 0, len(hits))
	for _, hit := range hits {
		uuidStr := hit.GetId().GetUuid()
		if uuidStr == "" {
			uuidStr = hit.GetId().String()
		}
		metadata := make(map[string]string)
		original := ""
		for k, v := range hit.GetPayload() {
			if k == PayloadIDField {
				original = v.GetStringValue()
				continue
			}
			metadata[k] = v.GetStringValue()
		}
		id := original
		if id == "" {
			id = uuidStr
		}
		out = append(out, Result{ID: id, Score: float64(hit.GetScore()), Metadata: metadata})
	}
	return out
}
