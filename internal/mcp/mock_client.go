package mcp

import (
	"context"

	mcp "github.com/metoro-io/mcp-golang"
)

// ToolRetType represents a tool definition with its schema.
type ToolRetType struct {
	Description *string     `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description,omitempty"`
	InputSchema interface{} `json:"inputSchema" yaml:"inputSchema" mapstructure:"inputSchema"`
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
}

// MockMCPClient is a test double for MCPClient, seeded with schemas for
// the external legal/filing servers this deployment actually connects
// mcp_super to (a document-filing tool and a court-record lookup), so
// tests exercise the same shapes production config would describe.
type MockMCPClient struct {
	ListToolsFunc  func(ctx context.Context, cursor *string) (*mcp.ToolsResponse, error)
	CallToolFunc   func(ctx context.Context, name string, args interface{}) (*mcp.ToolResponse, error)
	InitializeFunc func(ctx context.Context) (*mcp.InitializeResponse, error)

	ListToolsCalls  []ListToolsCall
	CallToolCalls   []CallToolCall
	InitializeCalls int

	ToolSchemas map[string]interface{}
}

type ListToolsCall struct {
	Ctx    context.Context
	Cursor *string
}

type CallToolCall struct {
	Ctx  context.Context
	Name string
	Args interface{}
}

var _ MCPClient = (*MockMCPClient)(nil)

// NewMockMCPClient builds a mock seeded with schemas for a filing
// server and a court-record lookup server, the two MCP integrations the
// litigation workflow calls through mcp_super.
func NewMockMCPClient() *MockMCPClient {
	mock := &MockMCPClient{ToolSchemas: map[string]interface{}{}}

	mock.AddToolSchema("file_document", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"case_id": map[string]interface{}{
				"type":        "string",
				"description": "the litigation case identifier",
			},
			"document_path": map[string]interface{}{
				"type":        "string",
				"description": "path to the document to file",
			},
		},
		"required": []string{"case_id", "document_path"},
	})

	mock.AddToolSchema("lookup_court_record", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"case_number": map[string]interface{}{
				"type":        "string",
				"description": "court case number to look up",
			},
		},
		"required": []string{"case_number"},
	})

	return mock
}

func (m *MockMCPClient) AddToolSchema(toolName string, schema interface{}) {
	if m.ToolSchemas == nil {
		m.ToolSchemas = map[string]interface{}{}
	}
	m.ToolSchemas[toolName] = schema
}

func (m *MockMCPClient) ListTools(ctx context.Context, cursor *string) (*mcp.ToolsResponse, error) {
	m.ListToolsCalls = append(m.ListToolsCalls, ListToolsCall{Ctx: ctx, Cursor: cursor})
	if m.ListToolsFunc != nil {
		return m.ListToolsFunc(ctx, cursor)
	}

	tools := make([]mcp.ToolRetType, 0, len(m.ToolSchemas))
	for name, schema := range m.ToolSchemas {
		desc := "Mock tool " + name
		tools = append(tools, mcp.ToolRetType{Name: name, Description: &desc, InputSchema: schema})
	}
	return &mcp.ToolsResponse{Tools: tools}, nil
}

func (m *MockMCPClient) CallTool(ctx context.Context, name string, args interface{}) (*mcp.ToolResponse, error) {
	m.CallToolCalls = append(m.CallToolCalls, CallToolCall{Ctx: ctx, Name: name, Args: args})
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, name, args)
	}
	return &mcp.ToolResponse{}, nil
}

func (m *MockMCPClient) Initialize(ctx context.Context) (*mcp.InitializeResponse, error) {
	m.InitializeCalls++
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx)
	}
	return &mcp.InitializeResponse{}, nil
}
