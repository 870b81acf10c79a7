package retrieval

import "sort"

// fusedHit is a collectionHit annotated with its RRF-fused score.
type fusedHit struct {
	collectionHit
	Rank  int
	Fused float64
}

// FuseRanks applies Reciprocal Rank Fusion within each collection's own
// hit list (already hybrid dense+sparse fused server-side by Qdrant),
// then merges every collection's ranked list into one globally-sorted
// slice. This lets an item that ranks #1 in a narrow collection compete
// fairly against items from a broad collection with more candidates.
func FuseRanks(hits []collectionHit, rrfK int) []fusedHit {
	if rrfK <= 0 {
		rrfK = 60
	}
	byCollection := make(map[string][]collectionHit)
	for _, h := range hits {
		byCollection[h.Collection] = append(byCollection[h.Collection], h)
	}
	for name := range byCollection {
		list := byCollection[name]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
		byCollection[name] = list
	}

	out := make([]fusedHit, 0, len(hits))
	for _, list := range byCollection {
		for i, h := range list {
			rank := i + 1
			out = append(out, fusedHit{
				collectionHit: h,
				Rank:          rank,
				Fused:         1.0 / float64(rrfK+rank),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Fused != out[j].Fused {
			return out[i].Fused > out[j].Fused
		}
		return out[i].ID < out[j].ID
	})
	return out
}
