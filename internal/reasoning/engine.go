package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/tools"
)

// vectorSearchObservation mirrors internal/tools.vectorSearchObservation's
// JSON wire shape (that type is unexported, so the engine re-declares its
// own decoding target rather than reaching into another package's
// internals).
type vectorSearchObservation struct {
	Content string `json:"content"`
	Sources []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		URL      string  `json:"url"`
		Score    float64 `json:"score"`
		Category string  `json:"category"`
		DocID    string  `json:"doc_id"`
	} `json:"sources"`
}

// earlyExitObservationLen is the length threshold past which a single
// vector_search hit is judged strong enough to stop exploring and
// synthesize a final answer immediately, skipping remaining step budget.
const earlyExitObservationLen = 500

const noResultsSentinel = "No relevant passages were found in the knowledge base."

// degenerateFinalAnswers are near-empty "no-op" completions that the loop
// never surfaces verbatim; filterDegenerate replaces one with the gathered
// context or a "couldn't find" message, without retrying synthesizeFinal.
var degenerateFinalAnswers = []string{
	"no further action needed",
	"observation: none",
	"n/a",
	"",
}

// Engine drives the think/act/observe loop for one request.
type Engine struct {
	Gateway               Gateway
	Tools                 *tools.Registry
	ToolBudgetPerRequest  int
	DefaultMaxSteps       int
	VectorObservationCap  int
}

// NewEngine wires an engine from its gateway and tool registry, applying
// the spec's defaults for step budget and per-request tool-call cap.
func NewEngine(gw Gateway, registry *tools.Registry, maxToolCalls, maxSteps int) *Engine {
	if maxSteps <= 0 {
		maxSteps = 6
	}
	if maxToolCalls <= 0 {
		maxToolCalls = 10
	}
	return &Engine{Gateway: gw, Tools: registry, ToolBudgetPerRequest: maxToolCalls, DefaultMaxSteps: maxSteps}
}

// Run executes the ReAct loop for one query: THINK (ask the model for a
// thought plus either an action or a final answer), ACT (dispatch the
// chosen tool), OBSERVE (fold its result back into history), repeat.
//
// pinnedCollection, when non-empty, overrides any vector_search call's
// "collection" argument with it before dispatch — the mechanism the
// orchestrator uses to force pricing queries into bali_zero_pricing with
// no fallback to the broader catalog.
func (e *Engine) Run(ctx context.Context, query, systemPrompt, userTier string, isAdmin bool, startTier llmgateway.Tier, pinnedCollection string) (*State, error) {
	state := NewState(query, e.DefaultMaxSteps)
	budget := tools.NewBudget(e.ToolBudgetPerRequest)
	specs := e.Tools.Specs(isAdmin)
	decls := toolDecls(specs)

	history := []llmgateway.Message{{Role: "user", Content: query}}
	nativeDisabled := false

	for state.CurrentStep < state.MaxSteps {
		resp, tier, err := e.Gateway.SendMessage(ctx, systemPrompt, history, startTier, decls, !nativeDisabled)
		if err != nil {
			return state, fmt.Errorf("reasoning step %d: %w", state.CurrentStep, err)
		}
		state.ModelUsed = string(tier)

		call, isNative := extractCall(resp)
		if !isNative && len(resp.ToolCalls) == 0 {
			// This tier didn't honor native function calling (e.g. the
			// OpenRouter fallback); stick to regex parsing for the rest
			// of the loop instead of re-probing every step.
			nativeDisabled = true
		}

		if call.final {
			state.FinalAnswer = call.text
			state.Steps = append(state.Steps, Step{
				StepNumber: state.CurrentStep + 1,
				Thought:    call.thought,
				Observation: call.text,
				IsFinal:    true,
			})
			state.CurrentStep++
			break
		}

		if call.toolName == "" {
			// No parseable action and no final answer: treat the raw text
			// as the final answer rather than looping forever on silence.
			state.FinalAnswer = strings.TrimSpace(resp.Text)
			state.CurrentStep++
			break
		}

		if pinnedCollection != "" && call.toolName == "vector_search" {
			if call.args == nil {
				call.args = make(map[string]any, 1)
			}
			call.args["collection"] = pinnedCollection
		}

		observation, err := tools.Dispatch(ctx, e.Tools, budget, call.toolName, call.args, isAdmin)
		if err != nil {
			observation = fmt.Sprintf("Error: %v", err)
		}

		displayObservation, earlyExit := e.unwrapObservation(state, call.toolName, observation)

		step := Step{
			StepNumber: state.CurrentStep + 1,
			Thought:    call.thought,
			Action:     &ToolCall{ToolName: call.toolName, Arguments: call.args, Result: displayObservation},
			Observation: displayObservation,
		}
		state.Steps = append(state.Steps, step)
		state.ContextGathered = append(state.ContextGathered, displayObservation)
		state.CurrentStep++

		history = append(history,
			llmgateway.Message{Role: "assistant", Content: call.thought, ToolCalls: []llmgateway.ToolCall{{ID: call.toolName, Name: call.toolName, Args: call.args}}},
			llmgateway.Message{Role: "tool", Content: displayObservation, ToolID: call.toolName},
		)

		if earlyExit {
			log.Debug().Str("tool", call.toolName).Msg("reasoning_early_exit_strong_observation")
			break
		}
	}

	if state.FinalAnswer == "" {
		if err := e.synthesizeFinal(ctx, state, systemPrompt, history, startTier); err != nil {
			return state, err
		}
	}
	state.FinalAnswer = filterDegenerate(state.FinalAnswer, state.ContextGathered)
	return state, nil
}

// unwrapObservation special-cases vector_search results: its JSON payload
// is decoded so Content becomes the step's plain-text observation and
// Sources feed the agent state's citation list, rather than surfacing the
// raw JSON to the model and the user. Returns the early-exit signal for a
// sufficiently strong, non-empty hit.
func (e *Engine) unwrapObservation(state *State, toolName, raw string) (string, bool) {
	if toolName != "vector_search" {
		return raw, false
	}
	var obs vectorSearchObservation
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		return raw, false
	}
	capLen := e.VectorObservationCap
	if capLen <= 0 {
		capLen = 4000
	}
	content := obs.Content
	if len(content) > capLen {
		content = content[:capLen]
	}
	fresh := make([]Source, 0, len(obs.Sources))
	for _, s := range obs.Sources {
		fresh = append(fresh, Source{Title: s.Title, URL: s.URL, Collection: s.Category, Score: s.Score})
	}
	state.appendSources(fresh)

	strong := content != noResultsSentinel && len(content) > earlyExitObservationLen
	return content, strong
}

// synthesizeFinal is called when the loop exhausts its step budget (or
// hits the early-exit path) without the model ever emitting a FINAL
// ANSWER line: it asks the model once more, explicitly instructed to
// answer from the context already gathered instead of taking another
// action.
func (e *Engine) synthesizeFinal(ctx context.Context, state *State, systemPrompt string, history []llmgateway.Message, startTier llmgateway.Tier) error {
	history = append(history, llmgateway.Message{
		Role:    "user",
		Content: "Based on everything gathered so far, answer the original question directly and concisely. Do not call any more tools.",
	})
	resp, tier, err := e.Gateway.SendMessage(ctx, systemPrompt, history, startTier, nil, false)
	if err != nil {
		return fmt.Errorf("reasoning synthesis: %w", err)
	}
	state.ModelUsed = string(tier)
	state.FinalAnswer = strings.TrimSpace(resp.Text)
	return nil
}

// filterDegenerate replaces a near-empty or filler completion with a
// plain statement that nothing useful was found, rather than surfacing
// "no further action needed" or similar stubs to the user.
func filterDegenerate(answer string, gathered []string) string {
	norm := strings.ToLower(strings.TrimSpace(answer))
	for _, stub := range degenerateFinalAnswers {
		if norm == stub {
			if len(gathered) > 0 {
				return "Here is what I found:\n\n" + strings.Join(gathered, "\n\n")
			}
			return "I couldn't find enough information to answer that confidently. Could you rephrase or provide more detail?"
		}
	}
	return answer
}

// parsedCall is the engine's normalized view of either a native
// function-call response or a regex-parsed ACTION/FINAL ANSWER line.
type parsedCall struct {
	thought  string
	toolName string
	args     map[string]any
	final    bool
	text     string
}

func extractCall(resp llmgateway.Response) (parsedCall, bool) {
	if len(resp.ToolCalls) > 0 {
		tc := resp.ToolCalls[0]
		return parsedCall{thought: resp.Text, toolName: tc.Name, args: tc.Args}, true
	}
	c := tools.ParseReActText(resp.Text)
	if c.Finish {
		return parsedCall{thought: c.Thought, final: true, text: c.Final}, false
	}
	if c.Name != "" {
		return parsedCall{thought: c.Thought, toolName: c.Name, args: c.Args}, false
	}
	return parsedCall{thought: c.Thought, final: true, text: resp.Text}, false
}

func toolDecls(specs []tools.ToolSpec) []llmgateway.ToolDecl {
	out := make([]llmgateway.ToolDecl, 0, len(specs))
	for _, s := range specs {
		out = append(out, llmgateway.ToolDecl{Name: s.Name, Description: s.Description, Parameters: s.Parameters})
	}
	return out
}
