package orchestrator

import (
	"strings"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/retrieval"
)

// outOfDomainMessage is returned verbatim when a query carries none of
// the domain keywords and isn't recognized as casual conversation
// either (spec §4.10 step 1 / §8 scenario 2).
const outOfDomainMessage = "I'm Zantara, focused on Indonesian business setup, visa, and tax questions. I can't help with that, but feel free to ask me about KITAS, PT PMA, company licensing, or tax compliance."

// domainKeywords rules a query IN (business-relevant), mirroring the
// topic-keyword routing convention internal/retrieval/collections.go
// already uses for collection selection, generalized here to a
// yes/no in-domain check instead of a collection list.
var domainKeywords = []string{
	"visa", "kitas", "kitap", "tax", "pajak", "npwp", "pt pma", "pma",
	"company", "perusahaan", "license", "izin", "legal", "kontrak",
	"contract", "notaris", "notary", "investor", "immigration",
	"imigrasi", "kbli", "business", "bisnis", "bali zero", "setup",
	"registration", "permit",
}

// deepThinkKeywords force the highest tier plus the deep-think
// instruction prefix (spec §4.8/§GLOSSARY "Deep-think mode").
var deepThinkKeywords = []string{
	"analyze in depth", "comprehensive analysis", "think carefully",
	"detailed comparison", "pros and cons", "deep dive",
}

// proKeywords route to the highest-quality tier without deep-think's
// extra instruction prefix: multi-part or legally dense questions.
var proKeywords = []string{
	"compare", "difference between", "which is better", "strategy",
	"restructur", "merger", "litigation", "dispute", "lawsuit",
}

// IsOutOfDomain reports whether query carries none of the recognized
// business-domain keywords.
func IsOutOfDomain(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range domainKeywords {
		if strings.Contains(q, kw) {
			return false
		}
	}
	return true
}

// ClassifyIntent maps a query to a starting LLM tier and deep-think
// flag, standing in for the external intent-classifier collaborator
// (spec §6 "classify_intent(query) -> {category, suggested_ai,
// deep_think_mode}") with a keyword heuristic, following the same
// topic-keyword matching style as internal/retrieval.Router.RouteTopics.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)

	category := "general"
	for _, kw := range []string{"pricing", "price", "cost", "how much", "berapa"} {
		if strings.Contains(q, kw) {
			category = "pricing"
			break
		}
	}
	if category == "general" {
		for _, kw := range []string{"team", "internal", "staff", "colleague"} {
			if strings.Contains(q, kw) {
				category = "team"
				break
			}
		}
	}
	if category == "general" {
		for _, kw := range []string{"who are you", "what is bali zero", "about you"} {
			if strings.Contains(q, kw) {
				category = "identity"
				break
			}
		}
	}

	for _, kw := range deepThinkKeywords {
		if strings.Contains(q, kw) {
			return Intent{Category: category, Tier: llmgateway.TierPro, DeepThink: true}
		}
	}
	for _, kw := range proKeywords {
		if strings.Contains(q, kw) {
			return Intent{Category: category, Tier: llmgateway.TierPro}
		}
	}
	if category == "pricing" {
		return Intent{Category: category, Tier: llmgateway.TierLite}
	}
	return Intent{Category: category, Tier: llmgateway.TierFlash}
}

// pinnedCollection returns the single collection a vector_search call
// must be forced into for this intent, or "" when routing should follow
// the normal topic-keyword fan-out. Pricing queries are forced into
// bali_zero_pricing with no fallback to the broader catalog.
func (i Intent) pinnedCollection() string {
	if i.Category == "pricing" {
		return retrieval.PricingCollection
	}
	return ""
}
