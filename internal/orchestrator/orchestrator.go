// Package orchestrator assembles every other package into the two
// public request entry points an upstream HTTP/RPC layer consumes:
// ProcessQuery (spec §4.10) and StreamQuery (spec §4.11). It holds no
// per-request state; everything mutable lives in the reasoning.State
// created inside each call.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/memory"
	"zantaracore/internal/observability"
	"zantaracore/internal/pipeline"
	"zantaracore/internal/prompt"
	"zantaracore/internal/reasoning"
	"zantaracore/internal/retrieval"
)

// Orchestrator wires every process-wide singleton together and exposes
// the two public request entry points. It holds no per-request state;
// everything mutable lives in the reasoning.State created inside each
// call.
type Orchestrator struct {
	Gateway   *llmgateway.Gateway
	Engine    *reasoning.Engine
	Prompts   *prompt.Builder
	Memory    *memory.Orchestrator
	Retrieval *retrieval.Service
	Cache     *SemanticCache
	Pipeline  *pipeline.Pipeline
	// Metrics, when set, receives a fire-and-forget cascade/tier usage
	// counter for every reasoning loop run. Nil is fine.
	Metrics *observability.MetricsSink
}

// New builds an Orchestrator from its already-constructed collaborators.
// The response pipeline is built here so its verifier is wired to the
// same gateway used for reasoning. metrics may be nil.
func New(gw *llmgateway.Gateway, engine *reasoning.Engine, builder *prompt.Builder, mem *memory.Orchestrator, retr *retrieval.Service, cache *SemanticCache, metrics *observability.MetricsSink) *Orchestrator {
	return &Orchestrator{
		Gateway:   gw,
		Engine:    engine,
		Prompts:   builder,
		Memory:    mem,
		Retrieval: retr,
		Cache:     cache,
		Pipeline:  pipeline.Default(&gatewayVerifier{gateway: gw}),
		Metrics:   metrics,
	}
}

// recordTierUsage fires a background ClickHouse insert so the cascade
// tier that answered a query, its latency, and any error are recorded
// without the caller waiting on the write (spec §4.10/4.11 cascade/tier
// usage counters).
func (o *Orchestrator) recordTierUsage(queryID, tier string, elapsed time.Duration, err error) {
	if o.Metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		o.Metrics.RecordTierUsage(ctx, queryID, tier, elapsed, err)
	}()
}

// preflight runs the identity/casual/out-of-domain short-circuits
// shared by ProcessQuery and StreamQuery. A non-empty answer means the
// caller should return immediately without running the reasoning loop.
func preflight(query string) (answer, route string, short bool) {
	if reply, ok := prompt.CheckGreetings(query); ok {
		return reply, "greeting-short-circuit", true
	}
	if reply, ok := prompt.CheckIdentityQuestions(query); ok {
		return reply, "identity-short-circuit", true
	}
	if IsOutOfDomain(query) && !prompt.CheckCasualConversation(query) {
		return outOfDomainMessage, "out-of-domain-keyword-mismatch", true
	}
	return "", "", false
}

// ProcessQuery runs the full non-streaming pipeline (spec §4.10).
func (o *Orchestrator) ProcessQuery(ctx context.Context, req QueryRequest) (QueryResult, error) {
	start := time.Now()

	if answer, route, short := preflight(req.Query); short {
		return QueryResult{Answer: answer, RouteUsed: route, ExecutionTime: time.Since(start)}, nil
	}

	if o.Cache != nil {
		if cached, ok := o.Cache.GetCachedResult(ctx, req.UserID, req.Query); ok {
			cached.ExecutionTime = time.Since(start)
			return cached, nil
		}
	}

	intent := ClassifyIntent(req.Query)
	userCtx, candidates := o.loadUserContext(ctx, req.UserID, req.Query, intent)
	historyText := buildHistoryText(req.History)

	systemPrompt, err := o.Prompts.Build(ctx, prompt.Params{
		UserID:            req.UserID,
		UserEmail:         req.UserEmail,
		Role:              req.Role,
		Query:             req.Query,
		DeepThink:         intent.DeepThink,
		Memory:            userCtx,
		AdditionalContext: historyText,
	})
	if err != nil {
		return QueryResult{}, err
	}

	userTier := req.Role
	if userTier == "" {
		userTier = "public"
	}
	isAdmin := userTier == "admin" || intent.Category == "team"
	engineStart := time.Now()
	queryID := uuid.NewString()
	state, err := o.Engine.Run(ctx, req.Query, systemPrompt, userTier, isAdmin, intent.Tier, intent.pinnedCollection())
	if err != nil {
		o.recordTierUsage(queryID, string(intent.Tier), time.Since(engineStart), err)
		return QueryResult{}, err
	}
	o.recordTierUsage(queryID, state.ModelUsed, time.Since(engineStart), nil)

	data := pipeline.Data{
		Query:         req.Query,
		Answer:        state.FinalAnswer,
		ContextChunks: state.ContextGathered,
		Sources:       state.Sources,
	}
	data = o.Pipeline.Run(ctx, data)

	if pipeline.NeedsSelfCorrection(data) {
		corrected, err := o.selfCorrect(ctx, req.Query, data.Answer, state.ContextGathered, data, intent.Tier)
		if err == nil {
			data.Answer = corrected
			data = o.Pipeline.Run(ctx, pipeline.Data{Query: req.Query, Answer: corrected, ContextChunks: state.ContextGathered, Sources: state.Sources})
			data.VerificationStatus = "corrected"
		}
	}

	result := QueryResult{
		Answer:             data.Answer,
		Sources:            data.Citations,
		ContextUsed:        state.ContextGathered,
		ExecutionTime:      time.Since(start),
		RouteUsed:          "agentic-rag (" + state.ModelUsed + ")",
		Steps:              state.Steps,
		ToolsCalled:        countToolCalls(state.Steps),
		TotalSteps:         len(state.Steps),
		VerificationStatus: data.VerificationStatus,
		DebugInfo: map[string]any{
			"intent":            intent.Category,
			"stages_completed":  data.StagesCompleted,
			"memory_candidates": len(candidates),
		},
	}

	if o.Cache != nil {
		if err := o.Cache.CacheResult(ctx, req.UserID, req.Query, result); err != nil {
			log.Warn().Err(err).Msg("semantic_cache_write_failed")
		}
	}

	if o.Memory != nil && req.UserID != "" {
		o.Memory.ProcessConversation(ctx, req.UserID, req.Query, result.Answer)
	}

	return result, nil
}

func countToolCalls(steps []reasoning.Step) int {
	n := 0
	for _, s := range steps {
		if s.Action != nil {
			n++
		}
	}
	return n
}
