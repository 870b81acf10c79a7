package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	result VerifyResult
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string, _ []string) (VerifyResult, error) {
	return f.result, f.err
}

func TestVerificationStageSkipsShortAnswers(t *testing.T) {
	stage := &VerificationStage{Verifier: &fakeVerifier{result: VerifyResult{IsValid: false, Score: 0.1}}}
	out, err := stage.Process(context.Background(), Data{Answer: "too short", ContextChunks: []string{"chunk"}})
	require.NoError(t, err)
	assert.True(t, out.VerificationValid)
	assert.Equal(t, "unverified", out.VerificationStatus)
}

func TestVerificationStageSkipsWhenNoContext(t *testing.T) {
	stage := &VerificationStage{Verifier: &fakeVerifier{result: VerifyResult{IsValid: false, Score: 0.1}}}
	longAnswer := "This is a sufficiently long draft answer to pass the minimum length check for verification."
	out, err := stage.Process(context.Background(), Data{Answer: longAnswer})
	require.NoError(t, err)
	assert.Equal(t, "unverified", out.VerificationStatus)
}

func TestVerificationStageRunsVerifierWhenEligible(t *testing.T) {
	stage := &VerificationStage{Verifier: &fakeVerifier{result: VerifyResult{IsValid: true, Status: "valid", Score: 0.95}}}
	longAnswer := "This is a sufficiently long draft answer to pass the minimum length check for verification."
	out, err := stage.Process(context.Background(), Data{Answer: longAnswer, ContextChunks: []string{"chunk"}})
	require.NoError(t, err)
	assert.True(t, out.VerificationValid)
	assert.Equal(t, 0.95, out.VerificationScore)
}

func TestVerificationStagePropagatesVerifierError(t *testing.T) {
	stage := &VerificationStage{Verifier: &fakeVerifier{err: errors.New("verifier down")}}
	longAnswer := "This is a sufficiently long draft answer to pass the minimum length check for verification."
	_, err := stage.Process(context.Background(), Data{Answer: longAnswer, ContextChunks: []string{"chunk"}})
	assert.Error(t, err)
}

func TestNeedsSelfCorrection(t *testing.T) {
	assert.True(t, NeedsSelfCorrection(Data{VerificationStatus: "corrected", VerificationScore: 0.4, ContextChunks: []string{"c"}}))
	assert.False(t, NeedsSelfCorrection(Data{VerificationStatus: "unverified", VerificationScore: 0.1, ContextChunks: []string{"c"}}))
	assert.False(t, NeedsSelfCorrection(Data{VerificationStatus: "corrected", VerificationScore: 0.9, ContextChunks: []string{"c"}}))
	assert.False(t, NeedsSelfCorrection(Data{VerificationStatus: "corrected", VerificationScore: 0.4}))
}
