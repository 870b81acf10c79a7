package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"zantaracore/internal/errs"
	"zantaracore/internal/mcp"
)

// MCPSuperTool is an admin-only escape hatch that dispatches to any tool
// exposed by a configured MCP server, addressed as "server::tool". It exists
// for operators debugging or extending the assistant without a dedicated
// first-class tool, and is never exposed to non-admin callers.
type MCPSuperTool struct {
	Manager *mcp.Manager
}

func (t *MCPSuperTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "mcp_super",
		Description: "Admin escape hatch: call any tool on a connected MCP server, addressed as server::tool.",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tool": map[string]any{"type": "string", "description": "server::tool"},
				"args": map[string]any{"type": "object", "description": "arguments to pass to the tool"},
			},
			"required": []string{"tool"},
		},
	}
}

func (t *MCPSuperTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "tool"); err != nil {
		return "", err
	}
	ref, _ := args["tool"].(string)
	parts := strings.SplitN(ref, "::", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: tool must be addressed as server::tool, got %q", errs.ErrInvalidArgs, ref)
	}
	if !t.Manager.AllowedForTier(parts[0], "admin") {
		return "", fmt.Errorf("%w: server %q is restricted beyond the admin gate", errs.ErrNotAuthorized, parts[0])
	}

	var toolArgs any = args["args"]
	resp, err := t.Manager.CallTool(ctx, parts[0], parts[1], toolArgs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrToolExecution, err)
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
