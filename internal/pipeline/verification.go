package pipeline

import "context"

// minVerifiableLen is the minimum draft length the verifier bothers
// checking; shorter answers (greetings, short-circuits that reached the
// pipeline some other way) skip straight through as unverified.
const minVerifiableLen = 50

// selfCorrectionThreshold is the score below which the orchestrator
// should trigger a corrective gateway call and re-run the pipeline.
const selfCorrectionThreshold = 0.7

// VerificationStage asks a Verifier whether the draft answer is
// supported by the retrieved context, skipping the check entirely for
// short answers or answers with no context to check against.
type VerificationStage struct {
	Verifier Verifier
}

func (s *VerificationStage) Name() string { return "verification" }

func (s *VerificationStage) Process(ctx context.Context, d Data) (Data, error) {
	if len(d.Answer) < minVerifiableLen || len(d.ContextChunks) == 0 {
		d.VerificationValid = true
		d.VerificationStatus = "unverified"
		return d, nil
	}
	if s.Verifier == nil {
		d.VerificationValid = true
		d.VerificationStatus = "unverified"
		return d, nil
	}
	result, err := s.Verifier.Verify(ctx, d.Answer, d.ContextChunks)
	if err != nil {
		return d, err
	}
	d.VerificationValid = result.IsValid
	d.VerificationScore = result.Score
	d.VerificationStatus = result.Status
	d.VerificationReason = result.Reasoning
	d.MissingCitations = result.MissingCitations
	return d, nil
}

// NeedsSelfCorrection reports whether the orchestrator should run a
// corrective gateway call and re-run the pipeline on the result.
func NeedsSelfCorrection(d Data) bool {
	return d.VerificationStatus != "unverified" && d.VerificationScore < selfCorrectionThreshold && len(d.ContextChunks) > 0
}
