package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zantaracore/internal/vectordb"
)

func TestFuseRanksOrdersByReciprocalRank(t *testing.T) {
	hits := []collectionHit{
		{Result: vectordb.Result{ID: "a", Score: 0.9}, Collection: "visa_oracle"},
		{Result: vectordb.Result{ID: "b", Score: 0.5}, Collection: "visa_oracle"},
		{Result: vectordb.Result{ID: "c", Score: 0.95}, Collection: "visa_updates"},
	}
	fused := FuseRanks(hits, 60)
	assert.Len(t, fused, 3)
	// "a" and "c" are both rank 1 in their own collection and should tie
	// ahead of "b" (rank 2 in visa_oracle).
	ranks := map[string]int{}
	for _, f := range fused {
		ranks[f.ID] = f.Rank
	}
	assert.Equal(t, 1, ranks["a"])
	assert.Equal(t, 1, ranks["c"])
	assert.Equal(t, 2, ranks["b"])
	assert.Less(t, fused[2].Fused, fused[0].Fused)
}

func TestFuseRanksDeterministicTieBreak(t *testing.T) {
	hits := []collectionHit{
		{Result: vectordb.Result{ID: "z", Score: 1.0}, Collection: "visa_oracle"},
		{Result: vectordb.Result{ID: "a", Score: 1.0}, Collection: "tax_genius"},
	}
	fused := FuseRanks(hits, 60)
	assert.Equal(t, "a", fused[0].ID, "equal fused scores break ties by ID")
}
