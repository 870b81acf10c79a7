package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostProcessingStripsReasoningMarkers(t *testing.T) {
	d := Data{
		Query:  "what is a KITAS?",
		Answer: "Thought: let me check the docs\nA KITAS is a limited stay permit.\nAction: none",
	}
	out, err := PostProcessingStage{}.Process(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "A KITAS is a limited stay permit.", out.Answer)
}

func TestPostProcessingReformatsProceduralAnswerAsList(t *testing.T) {
	d := Data{
		Query:  "how do I apply for a KITAS?",
		Answer: "First gather your documents. Then submit the application. Finally wait for approval.",
	}
	out, err := PostProcessingStage{}.Process(context.Background(), d)
	require.NoError(t, err)
	assert.Contains(t, out.Answer, "1. First gather your documents.")
	assert.Contains(t, out.Answer, "2. Then submit the application.")
}

func TestPostProcessingLeavesAlreadyNumberedProceduralAnswer(t *testing.T) {
	answer := "1. Gather documents.\n2. Submit application."
	d := Data{Query: "steps to apply for a visa", Answer: answer}
	out, err := PostProcessingStage{}.Process(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, answer, out.Answer)
}

func TestPostProcessingPrependsEmotionalAcknowledgment(t *testing.T) {
	d := Data{Query: "I'm so worried about my visa expiring, help urgent", Answer: "Your visa is valid until next month."}
	out, err := PostProcessingStage{}.Process(context.Background(), d)
	require.NoError(t, err)
	assert.Contains(t, out.Answer, emotionalAcknowledgment)
}
