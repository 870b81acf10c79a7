package retrieval

import "sort"

const (
	statusPreferred = "preferred"
	statusOutdated  = "outdated"

	outdatedPenalty = 0.5
)

// ResolveConflicts compares every known (base, updates) collection pair
// present in hits directly, via Router.BaseOf — independent of any
// per-item topic matching. Whenever both a base collection and its
// "_updates" companion have hits in the same result set, the entire base
// side is flagged "outdated" and penalized in favor of the updates side,
// which is flagged "preferred". Hits from collections with no companion
// present are passed through unmarked. It returns the re-sorted items
// plus the number of distinct collection pairs found in conflict.
func ResolveConflicts(router *Router, hits []fusedHit) ([]RetrievedItem, int) {
	present := make(map[string]bool, len(hits))
	for _, h := range hits {
		present[h.Collection] = true
	}

	// conflicted maps a base collection name to its updates companion,
	// for every pair where both sides actually appear in this result set.
	conflicted := make(map[string]string)
	for collection := range present {
		base := router.BaseOf(collection)
		if base == "" || !present[base] {
			continue
		}
		conflicted[base] = collection
	}

	out := make([]RetrievedItem, 0, len(hits))
	for _, m := range hits {
		status := ""
		score := m.Fused
		if updates, ok := conflicted[m.Collection]; ok {
			status = statusOutdated
			score *= outdatedPenalty
			_ = updates
		} else if base := router.BaseOf(m.Collection); base != "" && conflicted[base] == m.Collection {
			status = statusPreferred
		}
		out = append(out, RetrievedItem{
			ID:             m.ID,
			CollectionName: m.Collection,
			Score:          score,
			Text:           m.Metadata["text"],
			Metadata:       m.Metadata,
			Status:         status,
			Explanation: map[string]any{
				"fused_rrf":              m.Fused,
				"within_collection_rank": m.Rank,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, len(conflicted)
}
