package reasoning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/tools"
)

// sequenceGateway returns one scripted response per SendMessage call, in
// order, and records the tools passed on each call.
type sequenceGateway struct {
	responses []llmgateway.Response
	calls     int
	toolsSeen [][]llmgateway.ToolDecl
}

func (g *sequenceGateway) SendMessage(_ context.Context, _ string, _ []llmgateway.Message, _ llmgateway.Tier, decls []llmgateway.ToolDecl, _ bool) (llmgateway.Response, llmgateway.Tier, error) {
	g.toolsSeen = append(g.toolsSeen, decls)
	resp := g.responses[g.calls]
	g.calls++
	return resp, llmgateway.TierFlash, nil
}

type fakeTool struct {
	name   string
	output string
	err    error
}

func (f *fakeTool) Describe() tools.ToolSpec { return tools.ToolSpec{Name: f.name} }

func (f *fakeTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	return f.output, f.err
}

func newEngine(gw Gateway, reg *tools.Registry) *Engine {
	return NewEngine(gw, reg, 10, 6)
}

func TestEngineRunReturnsPlainFinalAnswerDirectly(t *testing.T) {
	gw := &sequenceGateway{responses: []llmgateway.Response{{Text: "The KITAS process takes about two weeks."}}}
	engine := newEngine(gw, tools.NewRegistry())

	state, err := engine.Run(context.Background(), "how long does a KITAS take?", "sys", "free", false, llmgateway.TierFlash, "")
	require.NoError(t, err)
	assert.Equal(t, "The KITAS process takes about two weeks.", state.FinalAnswer)
	assert.Len(t, state.Steps, 1)
	assert.True(t, state.Steps[0].IsFinal)
}

func TestEngineRunDispatchesNativeToolCallThenFinalAnswer(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(&fakeTool{name: "calculator", output: "42"})
	gw := &sequenceGateway{responses: []llmgateway.Response{
		{Text: "let me compute", ToolCalls: []llmgateway.ToolCall{{ID: "calculator", Name: "calculator", Args: map[string]any{"expr": "6*7"}}}},
		{Text: "FINAL ANSWER: the answer is 42"},
	}}
	engine := newEngine(gw, reg)

	state, err := engine.Run(context.Background(), "what is 6*7?", "sys", "free", false, llmgateway.TierFlash, "")
	require.NoError(t, err)
	assert.Equal(t, 2, gw.calls)
	assert.Len(t, state.Steps, 2)
	require.NotNil(t, state.Steps[0].Action)
	assert.Equal(t, "calculator", state.Steps[0].Action.ToolName)
	assert.Equal(t, "42", state.Steps[0].Observation)
	assert.Contains(t, state.FinalAnswer, "42")
}

func TestEngineRunSynthesizesFinalAnswerWhenStepBudgetExhausted(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(&fakeTool{name: "calculator", output: "keeps going"})
	// Two steps of budget, neither produces a final answer; the engine must
	// then issue one extra synthesis call.
	gw := &sequenceGateway{responses: []llmgateway.Response{
		{ToolCalls: []llmgateway.ToolCall{{ID: "calculator", Name: "calculator"}}},
		{ToolCalls: []llmgateway.ToolCall{{ID: "calculator", Name: "calculator"}}},
		{Text: "synthesized from context"},
	}}
	engine := NewEngine(gw, reg, 10, 2)

	state, err := engine.Run(context.Background(), "q", "sys", "free", false, llmgateway.TierFlash, "")
	require.NoError(t, err)
	assert.Equal(t, 3, gw.calls)
	assert.Equal(t, "synthesized from context", state.FinalAnswer)
	// The synthesis call must not offer tools, per the no-more-actions instruction.
	assert.Empty(t, gw.toolsSeen[2])
}

func TestEngineRunUnwrapsVectorSearchObservationAndEarlyExits(t *testing.T) {
	reg := tools.NewRegistry()
	longContent := make([]byte, 600)
	for i := range longContent {
		longContent[i] = 'x'
	}
	payload := `{"content":"` + string(longContent) + `","sources":[{"id":"1","title":"Visa Guide","url":"https://example.com/visa","score":0.9,"category":"visa_oracle"}]}`
	reg.Register(&fakeTool{name: "vector_search", output: payload})
	gw := &sequenceGateway{responses: []llmgateway.Response{
		{ToolCalls: []llmgateway.ToolCall{{ID: "vector_search", Name: "vector_search"}}},
		{Text: "synthesized from the visa guide"},
	}}
	engine := NewEngine(gw, reg, 10, 6)

	state, err := engine.Run(context.Background(), "tell me about visas", "sys", "free", false, llmgateway.TierFlash, "")
	require.NoError(t, err)
	// The early exit breaks the act/observe loop after one step, but the
	// loop still has no FINAL ANSWER, so one synthesis call follows.
	require.Len(t, state.Sources, 1)
	assert.Equal(t, "Visa Guide", state.Sources[0].Title)
	assert.Equal(t, 2, gw.calls)
	assert.Equal(t, "synthesized from the visa guide", state.FinalAnswer)
}

func TestFilterDegenerateReplacesStubWithGatheredContext(t *testing.T) {
	out := filterDegenerate("n/a", []string{"some fact"})
	assert.Contains(t, out, "some fact")

	out = filterDegenerate("n/a", nil)
	assert.Contains(t, out, "couldn't find")

	out = filterDegenerate("a real answer", nil)
	assert.Equal(t, "a real answer", out)
}
