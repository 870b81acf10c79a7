package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// GraphStore is the read surface the tool needs from the knowledge-graph
// cache (internal/memory maintains the write side: Repository.UpsertEntity
// and Repository.UpsertRelationship with mention-count and strength-averaging semantics).
type GraphStore interface {
	Neighbors(ctx context.Context, id, rel string) ([]string, error)
	NodeProps(ctx context.Context, id string) (map[string]any, bool, error)
}

// GraphTraversalTool walks the entity knowledge graph (people, companies,
// visa types, tax obligations) a small number of hops from a starting
// entity, following a named relation at each hop.
type GraphTraversalTool struct {
	Store   GraphStore
	MaxHops int
}

func (t *GraphTraversalTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "graph_traversal",
		Description: "Traverse the entity knowledge graph from a starting node following a relation, up to a few hops, to find related entities.",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_id": map[string]any{"type": "string", "description": "id of the starting entity"},
				"relation": map[string]any{"type": "string", "description": "relation name to follow, e.g. requires_document or sponsored_by"},
				"hops":     map[string]any{"type": "integer", "description": "number of hops, default 1, max 3"},
			},
			"required": []string{"start_id", "relation"},
		},
	}
}

func (t *GraphTraversalTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "start_id", "relation"); err != nil {
		return "", err
	}
	start, _ := args["start_id"].(string)
	rel, _ := args["relation"].(string)
	hops := 1
	if raw, ok := args["hops"].(float64); ok {
		hops = int(raw)
	}
	maxHops := t.MaxHops
	if maxHops <= 0 {
		maxHops = 3
	}
	if hops > maxHops {
		hops = maxHops
	}
	if hops < 1 {
		hops = 1
	}

	frontier := []string{start}
	visited := map[string]bool{start: true}
	for hop := 0; hop < hops; hop++ {
		var next []string
		for _, id := range frontier {
			neighbors, err := t.Store.Neighbors(ctx, id, rel)
			if err != nil {
				return "", err
			}
			for _, n := range neighbors {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	delete(visited, start)
	result := make([]string, 0, len(visited))
	for id := range visited {
		result = append(result, id)
	}
	if len(result) == 0 {
		return fmt.Sprintf("No entities found %d hop(s) from %q via %q.", hops, start, rel), nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
