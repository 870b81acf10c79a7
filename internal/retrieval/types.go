// Package retrieval implements the multi-collection hybrid search
// pipeline: query routing across named Qdrant collections, per-collection
// dense+sparse fusion, cross-collection conflict resolution between a
// collection and its "_updates" companion, optional cross-encoder
// reranking, and citation-ready snippet generation.
package retrieval

import (
	"time"

	"zantaracore/internal/vectordb"
)

// Collection describes one routable knowledge collection.
type Collection struct {
	Name string
	// UpdatesOf names the base collection this one supersedes entries in,
	// e.g. "tax_updates" has UpdatesOf == "tax_genius". Empty for base
	// collections.
	UpdatesOf string
	// Tiers lists the ownership tiers allowed to see this collection's
	// content (e.g. "public", "team", "enterprise"); empty means no tier
	// restriction.
	Tiers []string
}

// RetrievedItem is one ranked, citation-ready search hit.
type RetrievedItem struct {
	ID          string
	CollectionName string
	Score       float64
	Text        string
	Snippet     string
	Metadata    map[string]string
	Status      string // "preferred" | "outdated" | ""
	Explanation map[string]any
}

// SourceDiagnostics carries per-collection timings and counts, with
// failures recorded rather than raised.
type SourceDiagnostics struct {
	PerCollection map[string]CollectionDiagnostic
}

// CollectionDiagnostic is the health-monitor record for one collection
// in one query: had_results/result_count/avg_score plus any error that
// caused the collection to be dropped.
type CollectionDiagnostic struct {
	Latency     time.Duration
	ResultCount int
	HadResults  bool
	AvgScore    float64
	Err         error
}

// QueryPlan is the routed, filtered search plan for one query.
type QueryPlan struct {
	Query        string
	Lang         string
	Collections  []string
	PerCollectionK int
	Alpha        float64 // dense/sparse fusion weight, 0..1
	RRFK         int
	FinalK       int
	UserTier     string
	// Filter is the compiled per-collection filter applied to every
	// candidate search, carrying the default repealed-law exclusion
	// (status_vigensi != dicabut) merged with any caller-supplied
	// conditions unless the caller explicitly opted out.
	Filter *vectordb.Filter
}
