package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zantaracore/internal/vectordb"
)

func mkFused(id, collection string, fused float64) fusedHit {
	return fusedHit{
		collectionHit: collectionHit{
			Result:     vectordb.Result{ID: id, Metadata: map[string]string{"text": id}},
			Collection: collection,
		},
		Fused: fused,
	}
}

func TestResolveConflictsFlagsBaseUpdatesPairAsConflict(t *testing.T) {
	router := NewRouter(DefaultCollections())
	hits := []fusedHit{
		mkFused("base-1", "visa_oracle", 0.8),
		mkFused("update-1", "visa_updates", 0.6),
	}
	items, conflicts := ResolveConflicts(router, hits)

	byID := map[string]RetrievedItem{}
	for _, it := range items {
		byID[it.ID] = it
	}
	assert.Equal(t, "preferred", byID["update-1"].Status)
	assert.Equal(t, "outdated", byID["base-1"].Status)
	assert.Less(t, byID["base-1"].Score, 0.8, "outdated entries are penalized")
	assert.Equal(t, 1, conflicts)
}

func TestResolveConflictsCountsEachConflictingCollectionPairOnce(t *testing.T) {
	router := NewRouter(DefaultCollections())
	hits := []fusedHit{
		mkFused("visa-base-1", "visa_oracle", 0.7),
		mkFused("visa-base-2", "visa_oracle", 0.65),
		mkFused("visa-update-1", "visa_updates", 0.9),
		mkFused("tax-base-1", "tax_genius", 0.5),
		mkFused("tax-update-1", "tax_updates", 0.55),
	}
	_, conflicts := ResolveConflicts(router, hits)
	assert.Equal(t, 2, conflicts, "one conflict per base/updates pair, not per item")
}

func TestResolveConflictsLeavesUnrelatedCollectionsUnmarked(t *testing.T) {
	// tax_genius and legal_unified are unrelated base collections with no
	// "_updates" companion present; comparing by collection pair (not by
	// a shared topic_id) means neither is flagged, unlike the old
	// topic-id-based implementation which mistook this for a conflict.
	router := NewRouter(DefaultCollections())
	hits := []fusedHit{
		mkFused("tax-1", "tax_genius", 0.9),
		mkFused("legal-1", "legal_unified", 0.85),
	}
	items, conflicts := ResolveConflicts(router, hits)
	for _, it := range items {
		assert.Equal(t, "", it.Status)
	}
	assert.Equal(t, 0, conflicts)
}

func TestResolveConflictsNoConflictWhenCompanionAbsent(t *testing.T) {
	router := NewRouter(DefaultCollections())
	items, conflicts := ResolveConflicts(router, []fusedHit{mkFused("only", "tax_genius", 0.5)})
	assert.Equal(t, "", items[0].Status)
	assert.Equal(t, 0.5, items[0].Score)
	assert.Equal(t, 0, conflicts)
}
