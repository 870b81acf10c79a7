package pipeline

import (
	"context"
	"sort"

	"zantaracore/internal/reasoning"
)

const maxCitations = 10

// CitationStage deduplicates sources by (title, url), sorts by score
// descending, and caps the result at 10.
type CitationStage struct{}

func (CitationStage) Name() string { return "citation" }

func (CitationStage) Process(_ context.Context, d Data) (Data, error) {
	seen := make(map[string]struct{}, len(d.Sources))
	deduped := make([]reasoning.Source, 0, len(d.Sources))
	for _, s := range d.Sources {
		key := s.Title + "|" + s.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, s)
	}
	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].Score > deduped[j].Score })
	if len(deduped) > maxCitations {
		deduped = deduped[:maxCitations]
	}
	d.Citations = deduped
	return d, nil
}
