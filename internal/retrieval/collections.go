package retrieval

import "strings"

// PricingCollection is the single collection pricing queries are forced
// into, with no fallback to the broader catalog.
const PricingCollection = "bali_zero_pricing"

// Router holds the known collection catalog and decides which
// collections a query should fan out to.
type Router struct {
	collections map[string]Collection
	// topics maps a coarse topic keyword to the base collections that
	// answer it; a query may match more than one topic.
	topics map[string][]string
}

// DefaultCollections is the catalog this deployment routes over: a base
// knowledge collection per domain plus its "_updates" companion, a team
// pricing collection, and the personal/collective memory collections.
func DefaultCollections() []Collection {
	return []Collection{
		{Name: "visa_oracle"},
		{Name: "visa_updates", UpdatesOf: "visa_oracle"},
		{Name: "tax_genius"},
		{Name: "tax_updates", UpdatesOf: "tax_genius"},
		{Name: "legal_unified"},
		{Name: "legal_updates", UpdatesOf: "legal_unified"},
		{Name: "kbli_unified"},
		{Name: "kbli_updates", UpdatesOf: "kbli_unified"},
		{Name: "cultural_insights"},
		{Name: "litigation_oracle"},
		{Name: "litigation_updates", UpdatesOf: "litigation_oracle"},
		{Name: "bali_zero_pricing", Tiers: []string{"public", "team", "enterprise"}},
		{Name: "bali_zero_team", Tiers: []string{"team", "enterprise"}},
		{Name: "zantara_memories", Tiers: []string{"public", "team", "enterprise"}},
	}
}

// NewRouter builds a router from the given collections, inferring a
// topic keyword per base collection from its name prefix (e.g.
// "visa_oracle" / "visa_updates" both match topic "visa").
func NewRouter(collections []Collection) *Router {
	r := &Router{collections: make(map[string]Collection, len(collections)), topics: make(map[string][]string)}
	for _, c := range collections {
		r.collections[c.Name] = c
		topic := strings.SplitN(c.Name, "_", 2)[0]
		r.topics[topic] = append(r.topics[topic], c.Name)
	}
	return r
}

// RouteTopics returns the set of collections whose topic keyword appears
// in the query, deduplicated. If no topic matches, all base (non-update)
// collections are returned so the query still gets a broad search.
func (r *Router) RouteTopics(query string) []string {
	q := strings.ToLower(query)
	seen := map[string]struct{}{}
	var out []string
	for topic, names := range r.topics {
		if !strings.Contains(q, topic) {
			continue
		}
		for _, n := range names {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				out = append(out, n)
			}
		}
	}
	if len(out) == 0 {
		for _, c := range r.collections {
			if c.UpdatesOf == "" {
				out = append(out, c.Name)
			}
		}
	}
	return out
}

// FilterByTier drops collections the user's ownership tier cannot see.
func (r *Router) FilterByTier(names []string, userTier string) []string {
	if userTier == "" {
		userTier = "public"
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		c, ok := r.collections[n]
		if !ok || len(c.Tiers) == 0 {
			out = append(out, n)
			continue
		}
		for _, t := range c.Tiers {
			if t == userTier {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// BaseOf returns the base collection name an "_updates" collection
// supersedes, or "" if c is already a base collection.
func (r *Router) BaseOf(collection string) string {
	return r.collections[collection].UpdatesOf
}

// Get returns the collection definition, if known.
func (r *Router) Get(name string) (Collection, bool) {
	c, ok := r.collections[name]
	return c, ok
}
