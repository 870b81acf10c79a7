package retrieval

import "zantaracore/internal/vectordb"

// RepealedStatusField and RepealedStatusValue identify the payload field
// BuildPlan excludes by default, keeping revoked/repealed legal material
// out of search results unless a caller opts out explicitly.
const (
	RepealedStatusField = "status_vigensi"
	RepealedStatusValue = "dicabut"
)

// BuildPlan routes a query to its candidate collections and fills in the
// per-collection fan-out size and fusion weights. userTier gates which
// tier-restricted collections (pricing, team) are eligible.
//
// filter carries any caller-supplied payload conditions; excludeRepealed
// defaults the plan to dropping status_vigensi == dicabut entries, per the
// repealed-law exclusion rule, unless the caller opts out.
func BuildPlan(router *Router, query, lang, userTier string, finalK int, filter *vectordb.Filter, excludeRepealed bool) QueryPlan {
	collections := router.FilterByTier(router.RouteTopics(query), userTier)
	if finalK <= 0 {
		finalK = 8
	}
	return QueryPlan{
		Query:          query,
		Lang:           lang,
		Collections:    collections,
		PerCollectionK: finalK * 3,
		Alpha:          0.6,
		RRFK:           60,
		FinalK:         finalK,
		UserTier:       userTier,
		Filter:         mergeRepealedExclusion(filter, excludeRepealed),
	}
}

// mergeRepealedExclusion appends the default repealed-law MustNot
// condition to filter unless excludeRepealed is false (caller opt-out).
// A caller condition already targeting the repealed value is left as is
// rather than duplicated.
func mergeRepealedExclusion(filter *vectordb.Filter, excludeRepealed bool) *vectordb.Filter {
	if !excludeRepealed {
		return filter
	}
	var must, mustNot []vectordb.Condition
	if filter != nil {
		must = filter.Must
		mustNot = filter.MustNot
	}
	for _, c := range mustNot {
		if c.Field == RepealedStatusField && containsValue(c, RepealedStatusValue) {
			return vectordb.NewFilter(must, mustNot)
		}
	}
	mustNot = append(mustNot, vectordb.Nin(RepealedStatusField, RepealedStatusValue))
	return vectordb.NewFilter(must, mustNot)
}

func containsValue(c vectordb.Condition, value string) bool {
	if c.Value == value {
		return true
	}
	for _, v := range c.Values {
		if v == value {
			return true
		}
	}
	return false
}
