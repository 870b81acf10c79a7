package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"zantaracore/internal/retrieval"
)

// diagnosticsSink is implemented by *observability.MetricsSink. Kept as a
// narrow interface here so this package doesn't depend on observability's
// ClickHouse driver import just to publish one health record per search.
type diagnosticsSink interface {
	RecordRetrievalDiagnostics(ctx context.Context, queryID string, diag retrieval.SourceDiagnostics)
}

// VectorSearchTool exposes the hybrid retrieval pipeline as a callable tool
// for the reasoning engine.
type VectorSearchTool struct {
	Service  *retrieval.Service
	UserTier string
	// Metrics, when set, receives a fire-and-forget copy of every
	// search's per-collection health diagnostics. Nil is fine.
	Metrics diagnosticsSink
}

func (t *VectorSearchTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "vector_search",
		Description: "Search the knowledge base (visa, tax, legal, pricing, memory collections) for passages relevant to a question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "the question or topic to search for"},
				"lang":  map[string]any{"type": "string", "description": "ISO language code of the query, e.g. en or id"},
				"k":     map[string]any{"type": "integer", "description": "number of results to return, default 5"},
				"collection": map[string]any{
					"type":        "string",
					"description": "restrict the search to a single named collection instead of routing across the catalog",
					"enum":        []string{"legal_unified", "visa_oracle", "tax_genius", "kbli_unified", "litigation_oracle"},
				},
			},
			"required": []string{"query"},
		},
	}
}

// vectorSearchSource is one citation-ready hit in the tool's observation
// payload; field names match what the reasoning engine and the citation
// pipeline stage expect when unwrapping a vector_search observation.
type vectorSearchSource struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	DocID    string  `json:"doc_id"`
}

// vectorSearchObservation is the JSON shape returned to the reasoning
// loop: Content becomes the step's observation text, Sources accumulate
// into the agent state's citation list.
type vectorSearchObservation struct {
	Content string               `json:"content"`
	Sources []vectorSearchSource `json:"sources"`
}

// noResultsContent is the sentinel the reasoning engine checks for before
// applying its early-exit-on-strong-observation rule.
const noResultsContent = "No relevant passages were found in the knowledge base."

func (t *VectorSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "query"); err != nil {
		return "", err
	}
	query, _ := args["query"].(string)
	lang, _ := args["lang"].(string)
	if lang == "" {
		lang = "en"
	}
	k := 5
	if raw, ok := args["k"]; ok {
		if f, ok := raw.(float64); ok {
			k = int(f)
		}
	}
	collection, _ := args["collection"].(string)

	var result retrieval.SearchResult
	var err error
	if collection != "" {
		result, err = t.Service.SearchCollection(ctx, query, lang, t.UserTier, collection, k, nil, true)
	} else {
		result, err = t.Service.Search(ctx, query, lang, t.UserTier, k, nil, true)
	}
	if err != nil {
		return "", err
	}
	if t.Metrics != nil {
		go func(diag retrieval.SourceDiagnostics) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("metrics_sink_panic")
				}
			}()
			metricsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			t.Metrics.RecordRetrievalDiagnostics(metricsCtx, uuid.NewString(), diag)
		}(result.Diagnostics)
	}
	if len(result.Items) == 0 {
		b, _ := json.Marshal(vectorSearchObservation{Content: noResultsContent})
		return string(b), nil
	}

	var sb strings.Builder
	sources := make([]vectorSearchSource, 0, len(result.Items))
	for i, item := range result.Items {
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Text
		}
		title := item.Metadata["title"]
		if title == "" {
			title = item.CollectionName
		}
		fmt.Fprintf(&sb, "%d. [%s|%s] %s\n", i+1, item.CollectionName, item.Status, snippet)
		sources = append(sources, vectorSearchSource{
			ID:       item.ID,
			Title:    title,
			URL:      item.Metadata["url"],
			Score:    item.Score,
			Category: item.CollectionName,
			DocID:    item.Metadata["doc_id"],
		})
	}
	b, err := json.Marshal(vectorSearchObservation{Content: strings.TrimSpace(sb.String()), Sources: sources})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
