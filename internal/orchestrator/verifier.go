package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/pipeline"
)

// gatewayVerifier implements pipeline.Verifier by asking the same LLM
// gateway used for reasoning to judge whether a draft answer is
// supported by its retrieved context, at the cheapest tier (the
// verification check itself doesn't need deep reasoning capacity).
type gatewayVerifier struct {
	gateway *llmgateway.Gateway
}

const verifierSystemPrompt = `You are a strict fact-checker. Given a draft answer and the context chunks it was supposed to be grounded in, decide whether every claim in the draft is supported by the context.

Respond with ONLY a JSON object of this exact shape, no other text:
{"is_valid": bool, "status": "valid"|"invalid", "score": number between 0 and 1, "reasoning": "short explanation", "missing_citations": ["claim not supported by context", ...]}`

type verifierResponse struct {
	IsValid          bool     `json:"is_valid"`
	Status           string   `json:"status"`
	Score            float64  `json:"score"`
	Reasoning        string   `json:"reasoning"`
	MissingCitations []string `json:"missing_citations"`
}

// Verify asks the verifier model for a structured judgment. A
// malformed or unparseable response degrades to a middling score
// rather than failing the pipeline stage outright, since the
// verification stage already tolerates errors by logging and carrying
// the previous data forward.
func (v *gatewayVerifier) Verify(ctx context.Context, answer string, contextChunks []string) (pipeline.VerifyResult, error) {
	if v == nil || v.gateway == nil {
		return pipeline.VerifyResult{IsValid: true, Status: "unverified", Score: 1}, nil
	}

	prompt := fmt.Sprintf("Context chunks:\n%s\n\nDraft answer:\n%s", strings.Join(contextChunks, "\n---\n"), answer)
	resp, _, err := v.gateway.SendMessage(ctx, verifierSystemPrompt, []llmgateway.Message{{Role: "user", Content: prompt}}, llmgateway.TierLite, nil, false)
	if err != nil {
		return pipeline.VerifyResult{}, err
	}

	var parsed verifierResponse
	text := extractJSONObject(resp.Text)
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return pipeline.VerifyResult{IsValid: false, Status: "invalid", Score: 0.5, Reasoning: "verifier response was not parseable JSON"}, nil
	}

	return pipeline.VerifyResult{
		IsValid:          parsed.IsValid,
		Status:           parsed.Status,
		Score:            parsed.Score,
		Reasoning:        parsed.Reasoning,
		MissingCitations: parsed.MissingCitations,
	}, nil
}

// extractJSONObject trims any leading/trailing prose a model adds
// around the requested JSON object, taking the outermost {...} span.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
