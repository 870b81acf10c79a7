package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraphStore struct {
	edges map[string]map[string][]string // id -> rel -> neighbors
}

func (f *fakeGraphStore) Neighbors(_ context.Context, id, rel string) ([]string, error) {
	return f.edges[id][rel], nil
}

func (f *fakeGraphStore) NodeProps(_ context.Context, id string) (map[string]any, bool, error) {
	return nil, false, nil
}

func TestGraphTraversalSingleHop(t *testing.T) {
	store := &fakeGraphStore{edges: map[string]map[string][]string{
		"kitas": {"requires_document": {"passport", "sponsor_letter"}},
	}}
	tool := &GraphTraversalTool{Store: store}
	out, err := tool.Execute(context.Background(), map[string]any{"start_id": "kitas", "relation": "requires_document"})
	require.NoError(t, err)
	assert.Contains(t, out, "passport")
	assert.Contains(t, out, "sponsor_letter")
}

func TestGraphTraversalMultiHop(t *testing.T) {
	store := &fakeGraphStore{edges: map[string]map[string][]string{
		"a": {"rel": {"b"}},
		"b": {"rel": {"c"}},
	}}
	tool := &GraphTraversalTool{Store: store}
	out, err := tool.Execute(context.Background(), map[string]any{"start_id": "a", "relation": "rel", "hops": float64(2)})
	require.NoError(t, err)
	assert.Contains(t, out, "c")
	assert.NotContains(t, out, "\"a\"")
}

func TestGraphTraversalNoResults(t *testing.T) {
	tool := &GraphTraversalTool{Store: &fakeGraphStore{edges: map[string]map[string][]string{}}}
	out, err := tool.Execute(context.Background(), map[string]any{"start_id": "x", "relation": "rel"})
	require.NoError(t, err)
	assert.Contains(t, out, "No entities found")
}
