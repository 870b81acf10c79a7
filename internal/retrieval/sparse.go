package retrieval

import (
	"hash/fnv"
	"strings"
)

// SparseVector turns free text into a term-hashed sparse vector usable
// as the bm25-style named vector in a Qdrant hybrid query. Each distinct
// token hashes to a stable dimension; the value is its term frequency.
// This stands in for a real BM25 index while keeping the hybrid fusion
// path exercised end to end.
func SparseVector(text string) map[uint32]float32 {
	tokens := strings.Fields(strings.ToLower(text))
	out := make(map[uint32]float32, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		out[h.Sum32()] += 1.0
	}
	return out
}
