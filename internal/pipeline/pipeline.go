package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Pipeline runs a fixed, ordered list of stages. A stage's error is
// logged and the pipeline proceeds with the data as it stood before
// that stage, rather than aborting the request — grounded on
// internal/rag/service.Service.Retrieve's sequential, error-tolerant
// staging.
type Pipeline struct {
	stages []Stage
}

// Default builds the spec's fixed stage order: verification,
// post-processing, citation, format.
func Default(verifier Verifier) *Pipeline {
	return New(
		&VerificationStage{Verifier: verifier},
		PostProcessingStage{},
		CitationStage{},
		FormatStage{},
	)
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order, recording each stage's name into
// StagesCompleted whether or not it errored.
func (p *Pipeline) Run(ctx context.Context, d Data) Data {
	for _, stage := range p.stages {
		next, err := stage.Process(ctx, d)
		if err != nil {
			log.Warn().Err(err).Str("stage", stage.Name()).Msg("pipeline_stage_failed")
			d.StagesCompleted = append(d.StagesCompleted, stage.Name()+":failed")
			continue
		}
		d = next
		d.StagesCompleted = append(d.StagesCompleted, stage.Name())
	}
	return d
}
