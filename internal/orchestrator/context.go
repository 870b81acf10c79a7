package orchestrator

import (
	"context"

	"zantaracore/internal/memory"
	"zantaracore/internal/retrieval"
)

// memoryCollection is the personal/collective memory collection the
// identity/team intent enrichment searches, matching
// internal/retrieval.DefaultCollections' zantara_memories entry.
const memoryCollection = "zantara_memories"

// loadUserContext loads the memory.Context the prompt builder needs
// and, for identity/team intents, additionally runs a direct search
// against the personal-memory collection. Those hits are attached as
// candidates only — they are never folded into state.Sources or the
// reasoning loop's evidence, per spec §4.10 step 3.
func (o *Orchestrator) loadUserContext(ctx context.Context, userID, query string, intent Intent) (memory.Context, []retrieval.RetrievedItem) {
	var userCtx memory.Context
	if o.Memory != nil {
		if mc, err := o.Memory.GetUserContext(ctx, userID, query); err == nil {
			userCtx = mc
		}
	}

	var candidates []retrieval.RetrievedItem
	if o.Retrieval != nil && (intent.Category == "identity" || intent.Category == "team") {
		result, err := o.Retrieval.SearchCollection(ctx, query, "en", "team", memoryCollection, 5, nil, true)
		if err == nil {
			for _, item := range result.Items {
				if item.CollectionName == memoryCollection {
					candidates = append(candidates, item)
				}
			}
		}
	}

	return userCtx, candidates
}
