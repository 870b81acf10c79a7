package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReActTextParsesActionCall(t *testing.T) {
	in := "Thought: I need pricing info\nACTION: get_pricing(service_name=\"KITAS extension\")"
	call := ParseReActText(in)
	assert.Equal(t, "I need pricing info", call.Thought)
	assert.Equal(t, "get_pricing", call.Name)
	assert.Equal(t, "KITAS extension", call.Args["service_name"])
}

func TestParseReActTextParsesNumericArg(t *testing.T) {
	call := ParseReActText("Thought: compute\nACTION: calculator(x=12, y=3.5)")
	assert.Equal(t, float64(12), call.Args["x"])
	assert.Equal(t, 3.5, call.Args["y"])
}

func TestParseReActTextParsesFinalAnswer(t *testing.T) {
	call := ParseReActText("Thought: done\nFinal Answer: your KITAS costs $200.")
	assert.True(t, call.Finish)
	assert.Contains(t, call.Final, "KITAS costs $200")
}

func TestParseReActTextFallsBackToActionInputLine(t *testing.T) {
	call := ParseReActText("Thought: search it\nAction: vector_search\nAction Input: {\"query\": \"golden visa\"}")
	assert.Equal(t, "vector_search", call.Name)
	assert.Equal(t, "golden visa", call.Args["query"])
}
