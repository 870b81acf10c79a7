// Package mcp manages external Model Context Protocol servers: it
// starts them as child processes over stdio, keeps one client per
// server, and exposes ListTools/CallTool for the mcp_super admin tool
// to dispatch against. Every server lifecycle event is logged so an
// operator can audit what the admin escape hatch actually touched.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"gopkg.in/yaml.v2"

	"zantaracore/internal/observability"
)

// MCPClient is the subset of mcp.Client's surface the manager needs,
// narrowed to an interface so tests can substitute MockMCPClient.
type MCPClient interface {
	ListTools(ctx context.Context, cursor *string) (*mcp.ToolsResponse, error)
	CallTool(ctx context.Context, name string, args interface{}) (*mcp.ToolResponse, error)
	Initialize(ctx context.Context) (*mcp.InitializeResponse, error)
}

var _ MCPClient = (*mcp.Client)(nil)

// ServerConfig holds the command, arguments, environment, and tier gate
// for one MCP server as defined under the `mcpServers` key in
// mcp_servers.yaml. Tiers mirors internal/retrieval.Collection.Tiers'
// ownership-tier convention: empty means every admin caller may reach
// it, non-empty restricts it further still.
type ServerConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Tiers   []string          `yaml:"tiers"`
}

// serversConfig unmarshals only the mcpServers section of the YAML file.
type serversConfig struct {
	Servers map[string]ServerConfig `yaml:"mcpServers"`
}

// LoadServerConfigs reads the mcpServers section from the given YAML
// file and returns a map of server name to ServerConfig.
func LoadServerConfigs(configPath string) (map[string]ServerConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var scfg serversConfig
	if err := yaml.Unmarshal(data, &scfg); err != nil {
		return nil, fmt.Errorf("unmarshaling mcpServers: %w", err)
	}
	return scfg.Servers, nil
}

// StartClientsFromConfig starts one child process per ServerConfig and
// returns an initialized client plus a cleanup function for each.
func StartClientsFromConfig(ctx context.Context, configs map[string]ServerConfig) (map[string]MCPClient, map[string]func() error, error) {
	auditLog := observability.Component("mcp")
	clients := make(map[string]MCPClient)
	cleanups := make(map[string]func() error)
	for name, cfg := range configs {
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		if len(cfg.Env) > 0 {
			env := os.Environ()
			for k, v := range cfg.Env {
				env = append(env, fmt.Sprintf("%s=%s", k, v))
			}
			cmd.Env = env
		}
		stdin, err := cmd.StdinPipe()
		if err != nil {
			cleanupAll(cleanups)
			return nil, nil, fmt.Errorf("stdin pipe for %s: %w", name, err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			cleanupAll(cleanups)
			return nil, nil, fmt.Errorf("stdout pipe for %s: %w", name, err)
		}
		if err := cmd.Start(); err != nil {
			cleanupAll(cleanups)
			return nil, nil, fmt.Errorf("starting %s: %w", name, err)
		}
		transport := stdio.NewStdioServerTransportWithIO(stdout, stdin)
		client := mcp.NewClient(transport)
		if _, err := client.Initialize(ctx); err != nil {
			_ = cmd.Process.Kill()
			cleanupAll(cleanups)
			return nil, nil, fmt.Errorf("initializing client for %s: %w", name, err)
		}
		auditLog.Info().Str("mcp_server", name).Str("command", cfg.Command).Strs("tiers", cfg.Tiers).Msg("mcp_server_started")
		clients[name] = client
		proc := cmd.Process
		serverName := name
		cleanups[name] = func() error {
			auditLog.Info().Str("mcp_server", serverName).Msg("mcp_server_stopping")
			return proc.Kill()
		}
	}
	return clients, cleanups, nil
}

func cleanupAll(funcs map[string]func() error) {
	for _, f := range funcs {
		_ = f()
	}
}

// Manager holds every running MCP server client, keyed by server name,
// plus each server's tier gate and the cleanup needed on Close.
type Manager struct {
	clients  map[string]MCPClient
	cleanups map[string]func() error
	tiers    map[string][]string
}

// NewManager loads mcpServers from configPath and starts one client per
// entry.
func NewManager(ctx context.Context, configPath string) (*Manager, error) {
	configs, err := LoadServerConfigs(configPath)
	if err != nil {
		return nil, err
	}
	clients, cleanups, err := StartClientsFromConfig(ctx, configs)
	if err != nil {
		return nil, err
	}
	tiers := make(map[string][]string, len(configs))
	for name, cfg := range configs {
		tiers[name] = cfg.Tiers
	}
	return &Manager{clients: clients, cleanups: cleanups, tiers: tiers}, nil
}

// List returns the names of all configured MCP servers.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	return names
}

// Client retrieves the MCP client for the given server name.
func (m *Manager) Client(name string) (MCPClient, bool) {
	c, ok := m.clients[name]
	return c, ok
}

// AllowedForTier reports whether userTier may reach the named server.
// A server with no configured tiers is reachable by any caller that
// already cleared the admin gate ahead of it; an unknown server name is
// never allowed.
func (m *Manager) AllowedForTier(name, userTier string) bool {
	tiers, ok := m.tiers[name]
	if !ok {
		return false
	}
	if len(tiers) == 0 {
		return true
	}
	for _, t := range tiers {
		if t == userTier {
			return true
		}
	}
	return false
}

// ListTools returns the available tools for the given server name.
func (m *Manager) ListTools(ctx context.Context, name string) ([]mcp.ToolRetType, error) {
	client, ok := m.Client(name)
	if !ok {
		return nil, fmt.Errorf("server %q not found", name)
	}
	resp, err := client.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools on %s: %w", name, err)
	}
	return resp.Tools, nil
}

// CallTool invokes the specified tool with args on the given server,
// logging the call for audit purposes since this path backs the admin
// escape-hatch tool.
func (m *Manager) CallTool(ctx context.Context, server, tool string, args interface{}) (*mcp.ToolResponse, error) {
	client, ok := m.Client(server)
	if !ok {
		return nil, fmt.Errorf("server %q not found", server)
	}
	auditLog := observability.Component("mcp")
	auditLog.Info().Str("mcp_server", server).Str("mcp_tool", tool).Msg("mcp_super_tool_call")
	res, err := client.CallTool(ctx, tool, args)
	if err != nil {
		auditLog.Warn().Err(err).Str("mcp_server", server).Str("mcp_tool", tool).Msg("mcp_super_tool_call_failed")
		return nil, fmt.Errorf("calling tool %q on %s: %w", tool, server, err)
	}
	return res, nil
}

// Close terminates every server process managed by this Manager.
func (m *Manager) Close() {
	cleanupAll(m.cleanups)
}
