package mcp

import (
	"context"
	"os"
	"testing"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientSeedsDomainSchemas(t *testing.T) {
	mock := NewMockMCPClient()

	resp, err := mock.ListTools(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, resp.Tools, 2)

	var filing *mcp.ToolRetType
	for i := range resp.Tools {
		if resp.Tools[i].Name == "file_document" {
			filing = &resp.Tools[i]
		}
	}
	require.NotNil(t, filing, "file_document schema must be present")
	schema, ok := filing.InputSchema.(map[string]interface{})
	require.True(t, ok)
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "case_id")
	assert.Contains(t, props, "document_path")
}

func TestManagerCallToolRoutesToNamedServer(t *testing.T) {
	filingClient := NewMockMCPClient()
	filingClient.CallToolFunc = func(ctx context.Context, name string, args interface{}) (*mcp.ToolResponse, error) {
		return &mcp.ToolResponse{Content: []*mcp.Content{{TextContent: &mcp.TextContent{Text: "filed via " + name}}}}, nil
	}

	m := &Manager{
		clients:  map[string]MCPClient{"filing": filingClient},
		cleanups: map[string]func() error{"filing": func() error { return nil }},
		tiers:    map[string][]string{"filing": {"enterprise"}},
	}

	assert.ElementsMatch(t, []string{"filing"}, m.List())

	resp, err := m.CallTool(context.Background(), "filing", "file_document", map[string]string{
		"case_id":       "CASE-1",
		"document_path": "/tmp/doc.pdf",
	})
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "filed via file_document", resp.Content[0].TextContent.Text)
	assert.Len(t, filingClient.CallToolCalls, 1)
}

func TestManagerCallToolUnknownServerErrors(t *testing.T) {
	m := &Manager{clients: map[string]MCPClient{}, cleanups: map[string]func() error{}}
	_, err := m.CallTool(context.Background(), "missing", "tool", nil)
	assert.Error(t, err)
}

func TestAllowedForTierRespectsServerTierGate(t *testing.T) {
	m := &Manager{tiers: map[string][]string{
		"filing":       {"enterprise"},
		"court-lookup": nil,
	}}
	assert.True(t, m.AllowedForTier("filing", "enterprise"))
	assert.False(t, m.AllowedForTier("filing", "team"))
	assert.True(t, m.AllowedForTier("court-lookup", "team"), "no tiers configured means any admin caller is allowed")
	assert.False(t, m.AllowedForTier("unknown", "enterprise"))
}

func TestLoadServerConfigsParsesTiers(t *testing.T) {
	configContent := `
mcpServers:
  filing:
    command: echo
    args:
      - hello
    env:
      TEST_VAR: test_value
    tiers:
      - enterprise
  court-lookup:
    command: cat
`
	tmpfile, err := os.CreateTemp("", "config*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(configContent))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	configs, err := LoadServerConfigs(tmpfile.Name())
	require.NoError(t, err)
	require.Len(t, configs, 2)

	filing, ok := configs["filing"]
	require.True(t, ok)
	assert.Equal(t, "echo", filing.Command)
	assert.Equal(t, []string{"hello"}, filing.Args)
	assert.Equal(t, "test_value", filing.Env["TEST_VAR"])
	assert.Equal(t, []string{"enterprise"}, filing.Tiers)

	lookup, ok := configs["court-lookup"]
	require.True(t, ok)
	assert.Equal(t, "cat", lookup.Command)
	assert.Empty(t, lookup.Tiers)
}
