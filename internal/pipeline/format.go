package pipeline

import (
	"context"
	"strings"

	"zantaracore/internal/reasoning"
)

// FormatStage trims whitespace and guarantees the Citations field is
// never nil, so downstream JSON encoding always emits a "citations"
// array rather than a null.
type FormatStage struct{}

func (FormatStage) Name() string { return "format" }

func (FormatStage) Process(_ context.Context, d Data) (Data, error) {
	d.Answer = strings.TrimSpace(d.Answer)
	if d.Citations == nil {
		d.Citations = []reasoning.Source{}
	}
	return d, nil
}
