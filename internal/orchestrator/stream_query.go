package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"zantaracore/internal/memory"
	"zantaracore/internal/pipeline"
	"zantaracore/internal/prompt"
	"zantaracore/internal/reasoning"
)

// EventType names one of the typed events StreamQuery emits (spec
// §4.11).
type EventType string

const (
	EventMetadata  EventType = "metadata"
	EventStatus    EventType = "status"
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
	EventToken     EventType = "token"
	EventSources   EventType = "sources"
	EventError     EventType = "error"
	EventDone      EventType = "done"
)

// toolResultTruncateLen caps a tool_end event's result payload (spec
// §4.11 event table: "result: truncated to 200 chars").
const toolResultTruncateLen = 200

// tokenPacing is the pseudo-streaming delay between emitted word
// chunks (spec §4.11/§9 "Streaming pseudo-tokenization").
const tokenPacing = 10 * time.Millisecond

// minStreamableAnswerLen gates token emission: answers shorter than this
// many bytes, including most greeting and identity short-circuit replies
// (which also go through streamTokens), produce no `token` events and are
// delivered whole in the final `done` event's State.FinalAnswer.
const minStreamableAnswerLen = 50

// Event is one message on the stream returned by StreamQuery.
type Event struct {
	Type       EventType
	Status     string
	Metadata   map[string]any
	ToolName   string
	ToolArgs   map[string]any
	ToolResult string
	Token      string
	Sources    []reasoning.Source
	Error      string
	State      *reasoning.State
	DebugInfo  map[string]any
}

// StreamQuery runs the same preflight/intent/memory/prompt/reasoning
// pipeline as ProcessQuery but returns a channel of typed progress
// events instead of a single result (spec §4.11). The channel is closed
// after the terminal `done` event (or immediately after an `error`
// event aborts the loop).
func (o *Orchestrator) StreamQuery(ctx context.Context, req QueryRequest) <-chan Event {
	ch := make(chan Event, 32)
	go func() {
		defer close(ch)
		o.runStream(ctx, req, ch)
	}()
	return ch
}

func (o *Orchestrator) runStream(ctx context.Context, req QueryRequest, ch chan<- Event) {
	start := time.Now()
	ch <- Event{Type: EventMetadata, Metadata: map[string]any{"status": "started", "mode": "agentic-rag"}}

	if answer, route, short := preflight(req.Query); short {
		o.streamTokens(ctx, answer, ch)
		ch <- Event{Type: EventMetadata, Metadata: map[string]any{
			"status":         "completed",
			"execution_time": time.Since(start).String(),
			"route_used":     route,
		}}
		st := reasoning.NewState(req.Query, 0)
		st.FinalAnswer = answer
		ch <- Event{Type: EventDone, State: st}
		return
	}

	if o.Cache != nil {
		if cached, ok := o.Cache.GetCachedResult(ctx, req.UserID, req.Query); ok {
			o.streamTokens(ctx, cached.Answer, ch)
			if len(cached.Sources) > 0 {
				ch <- Event{Type: EventSources, Sources: cached.Sources}
			}
			ch <- Event{Type: EventMetadata, Metadata: map[string]any{
				"status":         "completed",
				"execution_time": time.Since(start).String(),
				"route_used":     cached.RouteUsed,
			}}
			st := reasoning.NewState(req.Query, 0)
			st.FinalAnswer = cached.Answer
			ch <- Event{Type: EventDone, State: st, DebugInfo: cached.DebugInfo}
			return
		}
	}

	ch <- Event{Type: EventStatus, Status: "Classifying intent..."}
	intent := ClassifyIntent(req.Query)

	ch <- Event{Type: EventStatus, Status: "Loading user context..."}
	userCtx, _ := o.loadUserContext(ctx, req.UserID, req.Query, intent)
	historyText := buildHistoryText(req.History)

	systemPrompt, err := o.Prompts.Build(ctx, promptParams(req, intent, userCtx, historyText))
	if err != nil {
		ch <- Event{Type: EventError, Error: err.Error()}
		return
	}

	userTier := req.Role
	if userTier == "" {
		userTier = "public"
	}
	isAdmin := userTier == "admin" || intent.Category == "team"

	ch <- Event{Type: EventStatus, Status: "Step 1: Thinking..."}
	engineStart := time.Now()
	queryID := uuid.NewString()
	state, err := o.Engine.Run(ctx, req.Query, systemPrompt, userTier, isAdmin, intent.Tier, intent.pinnedCollection())
	if err != nil {
		o.recordTierUsage(queryID, string(intent.Tier), time.Since(engineStart), err)
		ch <- Event{Type: EventError, Error: err.Error()}
		return
	}
	o.recordTierUsage(queryID, state.ModelUsed, time.Since(engineStart), nil)

	for _, step := range state.Steps {
		if step.Action == nil {
			continue
		}
		ch <- Event{Type: EventToolStart, ToolName: step.Action.ToolName, ToolArgs: step.Action.Arguments}
		ch <- Event{Type: EventToolEnd, ToolResult: truncateRunes(step.Action.Result, toolResultTruncateLen)}
	}

	ch <- Event{Type: EventStatus, Status: "Generating final answer..."}
	o.streamTokens(ctx, state.FinalAnswer, ch)

	data := pipeline.Data{
		Query:         req.Query,
		Answer:        state.FinalAnswer,
		ContextChunks: state.ContextGathered,
		Sources:       state.Sources,
	}
	data = o.Pipeline.Run(ctx, data)
	if pipeline.NeedsSelfCorrection(data) {
		if corrected, err := o.selfCorrect(ctx, req.Query, data.Answer, state.ContextGathered, data, intent.Tier); err == nil {
			data.Answer = corrected
			data = o.Pipeline.Run(ctx, pipeline.Data{Query: req.Query, Answer: corrected, ContextChunks: state.ContextGathered, Sources: state.Sources})
			data.VerificationStatus = "corrected"
		}
	}

	if len(data.Citations) > 0 {
		ch <- Event{Type: EventSources, Sources: data.Citations}
	}

	route := "agentic-rag (" + state.ModelUsed + ")"
	result := QueryResult{
		Answer:             data.Answer,
		Sources:            data.Citations,
		ContextUsed:        state.ContextGathered,
		ExecutionTime:      time.Since(start),
		RouteUsed:          route,
		Steps:              state.Steps,
		ToolsCalled:        countToolCalls(state.Steps),
		TotalSteps:         len(state.Steps),
		VerificationStatus: data.VerificationStatus,
	}
	if o.Cache != nil {
		_ = o.Cache.CacheResult(ctx, req.UserID, req.Query, result)
	}
	if o.Memory != nil && req.UserID != "" {
		o.Memory.ProcessConversation(ctx, req.UserID, req.Query, result.Answer)
	}

	ch <- Event{Type: EventMetadata, Metadata: map[string]any{
		"status":              "completed",
		"execution_time":      time.Since(start).String(),
		"route_used":          route,
		"context_length":      len(state.ContextGathered),
		"verification_score":  data.VerificationScore,
	}}
	ch <- Event{Type: EventDone, State: state, DebugInfo: map[string]any{
		"intent":           intent.Category,
		"stages_completed": data.StagesCompleted,
	}}
}

// streamTokens pseudo-tokenizes a completed answer into word/punctuation
// chunks with fixed pacing, skipping emission entirely for answers
// under the streamable-length threshold (spec §4.11 / §9).
func (o *Orchestrator) streamTokens(ctx context.Context, answer string, ch chan<- Event) {
	if len(answer) < minStreamableAnswerLen {
		return
	}
	for _, tok := range tokenize(answer) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ch <- Event{Type: EventToken, Token: tok}
		time.Sleep(tokenPacing)
	}
}

// tokenize splits text into word-ish chunks for pseudo-streaming,
// keeping trailing punctuation attached to its word like a real
// token stream would.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for i, f := range fields {
		if i > 0 {
			out = append(out, " "+f)
		} else {
			out = append(out, f)
		}
	}
	return out
}

func promptParams(req QueryRequest, intent Intent, userCtx memory.Context, historyText string) prompt.Params {
	return prompt.Params{
		UserID:            req.UserID,
		UserEmail:         req.UserEmail,
		Role:              req.Role,
		Query:             req.Query,
		DeepThink:         intent.DeepThink,
		Memory:            userCtx,
		AdditionalContext: historyText,
	}
}
