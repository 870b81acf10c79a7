package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FactExtractor delegates post-turn fact extraction to an LLM prompt
// that returns structured candidate facts.
type FactExtractor interface {
	ExtractFacts(ctx context.Context, userMessage, aiResponse string) ([]Fact, error)
}

// QueryEmbedder is the narrow embedding contract used to rank
// collective facts by similarity to the current query.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ProfileLookup resolves a user id/email to its profile card. The
// identity service that owns team-membership data is an external
// collaborator; this is the narrow read the core needs from it.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (Profile, error)
}

// reservedTestPrefix marks user ids that must run memory persistence
// synchronously so tests can observe the write before asserting on it,
// per the spec's "fire-and-forget except for test-prefixed users" rule.
const reservedTestPrefix = "test_"

// Orchestrator is the public memory surface consumed by the request
// orchestrator: a read path building the per-request MemoryContext and a
// write path persisting facts extracted from the completed turn.
type Orchestrator struct {
	repo      *Repository
	extractor FactExtractor
	embedder  QueryEmbedder
	profiles  ProfileLookup
	runner    TaskRunner
}

// NewOrchestrator wires the memory orchestrator. runner defaults to
// InProcessRunner when nil.
func NewOrchestrator(repo *Repository, extractor FactExtractor, embedder QueryEmbedder, profiles ProfileLookup, runner TaskRunner) *Orchestrator {
	if runner == nil {
		runner = InProcessRunner{}
	}
	return &Orchestrator{repo: repo, extractor: extractor, embedder: embedder, profiles: profiles, runner: runner}
}

// GetUserContext loads everything the prompt builder needs about a user:
// profile, personal facts, query-relevant collective facts, a recent
// timeline summary, and counters. Called fresh on every request; nothing
// here is cached across turns.
func (o *Orchestrator) GetUserContext(ctx context.Context, userID, query string) (Context, error) {
	if userID == "" {
		return Context{}, nil
	}
	var mc Context

	if o.profiles != nil {
		if p, err := o.profiles.Profile(ctx, userID); err == nil {
			mc.Profile = p
		}
	}

	facts, err := o.repo.Facts(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("memory_facts_load_failed")
	}
	mc.Facts = facts

	mc.CollectiveFacts = o.queryRelevantCollectiveFacts(ctx, query)

	if timeline, err := o.repo.RecentTimeline(ctx, userID, 5); err == nil {
		mc.TimelineSummary = timeline
	}

	summary, counters, err := o.repo.UserStats(ctx, userID)
	if err == nil {
		mc.Summary = summary
		mc.Counters = counters
	}

	return mc, nil
}

// queryRelevantCollectiveFacts embeds the query and re-scores the recent
// collective-fact candidate set by cosine similarity, returning the
// highest-scoring handful. Falls back to plain recency if no embedder or
// query is available.
func (o *Orchestrator) queryRelevantCollectiveFacts(ctx context.Context, query string) []CollectiveFact {
	candidates, err := o.repo.CollectiveFacts(ctx, 50)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	if o.embedder == nil || strings.TrimSpace(query) == "" {
		if len(candidates) > 5 {
			candidates = candidates[:5]
		}
		return candidates
	}
	qvec, err := o.embedder.EmbedQuery(ctx, query)
	if err != nil || len(qvec) == 0 {
		if len(candidates) > 5 {
			candidates = candidates[:5]
		}
		return candidates
	}
	for i := range candidates {
		cvec, err := o.embedder.EmbedQuery(ctx, candidates[i].Content)
		if err != nil {
			continue
		}
		candidates[i].Score = cosineSimilarity(qvec, cvec)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return candidates
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ProcessConversation extracts facts from a completed turn and persists
// them. It is invoked as a fire-and-forget background task after
// streaming completes, except for user ids carrying reservedTestPrefix,
// which run synchronously so tests can observe facts_saved immediately.
func (o *Orchestrator) ProcessConversation(ctx context.Context, userID, userMessage, aiResponse string) ProcessResult {
	run := func(ctx context.Context) ProcessResult {
		return o.processConversationSync(ctx, userID, userMessage, aiResponse)
	}

	if strings.HasPrefix(userID, reservedTestPrefix) {
		return run(ctx)
	}

	o.runner.Go(func(bgCtx context.Context) {
		res := run(bgCtx)
		if !res.Success {
			log.Warn().Str("user_id", userID).Msg("memory_persist_failed")
		}
	})
	return ProcessResult{Success: true}
}

func (o *Orchestrator) processConversationSync(ctx context.Context, userID, userMessage, aiResponse string) ProcessResult {
	start := time.Now()
	if o.extractor == nil {
		return ProcessResult{Success: true, ProcessingMS: time.Since(start).Milliseconds()}
	}
	facts, err := o.extractor.ExtractFacts(ctx, userMessage, aiResponse)
	if err != nil {
		return ProcessResult{Success: false, ProcessingMS: time.Since(start).Milliseconds()}
	}
	saved := 0
	for _, f := range facts {
		f.UserID = userID
		if f.Content == "" {
			continue
		}
		ok, err := o.repo.AddFact(ctx, f)
		if err != nil {
			continue
		}
		if ok {
			saved++
		}
	}
	_ = o.repo.AddTimelineEntry(ctx, userID, summarizeTurn(userMessage, aiResponse))
	return ProcessResult{
		FactsExtracted: len(facts),
		FactsSaved:     saved,
		ProcessingMS:   time.Since(start).Milliseconds(),
		Success:        true,
	}
}

func summarizeTurn(userMessage, aiResponse string) string {
	const window = 240
	return "Q: " + truncate(userMessage, window/2) + " | A: " + truncate(aiResponse, window/2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
