// Package pipeline implements the fixed post-retrieval response
// pipeline: verification (with self-correction support), post-processing,
// citation normalization, and final formatting. Stages run sequentially;
// a stage failure is logged and the pipeline continues with the
// previous data rather than aborting the request.
package pipeline

import (
	"context"

	"zantaracore/internal/reasoning"
)

// Data is the value threaded through every stage.
type Data struct {
	Query             string
	Answer            string
	ContextChunks     []string
	Sources           []reasoning.Source
	VerificationValid bool
	VerificationScore float64
	VerificationStatus string // "valid" | "invalid" | "corrected" | "unverified"
	VerificationReason string
	MissingCitations  []string
	StagesCompleted   []string
	Citations         []reasoning.Source
}

// Stage is one pipeline step.
type Stage interface {
	Name() string
	Process(ctx context.Context, d Data) (Data, error)
}

// VerifyResult is what a Verifier reports about one draft answer.
type VerifyResult struct {
	IsValid          bool
	Status           string
	Score            float64
	Reasoning        string
	MissingCitations []string
}

// Verifier judges whether a draft answer is supported by its context
// chunks. Implementations may call an LLM or apply deterministic
// heuristics; the pipeline doesn't care which.
type Verifier interface {
	Verify(ctx context.Context, answer string, contextChunks []string) (VerifyResult, error)
}
