package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stageFunc struct {
	name string
	fn   func(Data) (Data, error)
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Process(_ context.Context, d Data) (Data, error) { return s.fn(d) }

func TestPipelineRunRecordsEveryStageInOrder(t *testing.T) {
	p := New(
		stageFunc{"one", func(d Data) (Data, error) { d.Answer += "1"; return d, nil }},
		stageFunc{"two", func(d Data) (Data, error) { d.Answer += "2"; return d, nil }},
	)
	out := p.Run(context.Background(), Data{Answer: "0"})
	assert.Equal(t, "012", out.Answer)
	assert.Equal(t, []string{"one", "two"}, out.StagesCompleted)
}

func TestPipelineRunContinuesAfterFailingStage(t *testing.T) {
	p := New(
		stageFunc{"broken", func(d Data) (Data, error) { return d, errors.New("boom") }},
		stageFunc{"after", func(d Data) (Data, error) { d.Answer += "after"; return d, nil }},
	)
	out := p.Run(context.Background(), Data{Answer: "start-"})
	assert.Equal(t, "start-after", out.Answer)
	assert.Equal(t, []string{"broken:failed", "after"}, out.StagesCompleted)
}

func TestFormatStageTrimsAndGuaranteesNonNilCitations(t *testing.T) {
	out, err := FormatStage{}.Process(context.Background(), Data{Answer: "  padded  "})
	assert.NoError(t, err)
	assert.Equal(t, "padded", out.Answer)
	assert.NotNil(t, out.Citations)
	assert.Len(t, out.Citations, 0)
}
