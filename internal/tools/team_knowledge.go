package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"zantaracore/internal/retrieval"
)

// TeamKnowledgeTool searches the team-internal collection (SOPs, escalation
// paths, staff contacts) rather than the public knowledge base. It is
// restricted to the team/enterprise tier by the retrieval router's own
// FilterByTier logic, so the tool itself stays thin.
type TeamKnowledgeTool struct {
	Service *retrieval.Service
}

func (t *TeamKnowledgeTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "team_knowledge",
		Description: "Search Bali Zero's internal team knowledge base (SOPs, escalation contacts, staff assignments).",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "what you need to know internally"},
			},
			"required": []string{"query"},
		},
	}
}

func (t *TeamKnowledgeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "query"); err != nil {
		return "", err
	}
	query, _ := args["query"].(string)

	result, err := t.Service.SearchCollection(ctx, query, "en", "team", "bali_zero_team", 5, nil, true)
	if err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "No internal knowledge found for that query.", nil
	}
	out := make([]string, 0, len(result.Items))
	for i, item := range result.Items {
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Text
		}
		out = append(out, fmt.Sprintf("%d. %s", i+1, snippet))
	}
	b, _ := json.Marshal(out)
	return string(b), nil
}
