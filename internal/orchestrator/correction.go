package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/pipeline"
)

// selfCorrect issues exactly one corrective gateway call when
// verification scores the draft below threshold: it names the missing
// citations the verifier flagged and asks the model to revise the
// answer so every claim is grounded in the supplied context (spec
// §4.9 "Self-correction").
func (o *Orchestrator) selfCorrect(ctx context.Context, query, draft string, contextChunks []string, data pipeline.Data, tier llmgateway.Tier) (string, error) {
	var missing string
	if len(data.MissingCitations) > 0 {
		missing = "Specifically unsupported claims: " + strings.Join(data.MissingCitations, "; ") + "."
	}

	prompt := fmt.Sprintf(
		"Your previous answer to %q was flagged as not fully supported by the retrieved evidence (verification score %.2f). %s\n\nEvidence:\n%s\n\nPrevious answer:\n%s\n\nRewrite the answer so every claim is grounded in the evidence above. If the evidence doesn't support a claim, remove or soften it rather than inventing support.",
		query, data.VerificationScore, missing, strings.Join(contextChunks, "\n---\n"), draft,
	)

	resp, _, err := o.Gateway.SendMessage(ctx, "You are revising a previously drafted answer to be fully evidence-grounded.", []llmgateway.Message{{Role: "user", Content: prompt}}, tier, nil, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
