package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"zantaracore/internal/errs"
)

// Reranker re-scores a shortlist of items against the query using a
// cross-encoder. It is a pluggable stage: when disabled or when the
// fused top score already clears the confidence threshold, callers
// should skip the call rather than pay its latency.
type Reranker interface {
	Rerank(ctx context.Context, query string, items []RetrievedItem) ([]RetrievedItem, error)
}

// EarlyExitThreshold is the fused-score confidence above which
// reranking is skipped.
const EarlyExitThreshold = 0.9

// httpReranker calls a cross-encoder HTTP endpoint compatible with the
// llama.cpp /v1/rerank contract.
type httpReranker struct {
	host   string
	model  string
	client *http.Client
}

// NewHTTPReranker constructs a reranker against an OpenAI-compatible
// /v1/rerank endpoint.
func NewHTTPReranker(host, model string) Reranker {
	return &httpReranker{host: host, model: model, client: &http.Client{Timeout: 15 * time.Second}}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	TopN      int      `json:"top_n"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

func (r *httpReranker) Rerank(ctx context.Context, query string, items []RetrievedItem) ([]RetrievedItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	docs := make([]string, len(items))
	for i, it := range items {
		docs[i] = it.Text
	}
	body, err := json.Marshal(rerankRequest{Model: r.model, Query: query, TopN: len(docs), Documents: docs})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+"/v1/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: rerank call: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: rerank status %s", errs.ErrUpstreamUnavailable, resp.Status)
	}
	var rr rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	scored := make([]RetrievedItem, 0, len(rr.Results))
	for _, res := range rr.Results {
		if res.Index < 0 || res.Index >= len(items) {
			continue
		}
		item := items[res.Index]
		item.Score = res.RelevanceScore
		if item.Explanation == nil {
			item.Explanation = map[string]any{}
		}
		item.Explanation["rerank_score"] = res.RelevanceScore
		scored = append(scored, item)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored, nil
}

// ShouldRerank reports whether the reranking stage should run given the
// current top fused score.
func ShouldRerank(enabled bool, items []RetrievedItem) bool {
	if !enabled || len(items) == 0 {
		return false
	}
	return items[0].Score < EarlyExitThreshold
}
