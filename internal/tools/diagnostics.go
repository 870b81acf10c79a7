package tools

import (
	"context"
	"encoding/json"
	"time"

	"zantaracore/internal/embedding"
)

// Pinger is implemented by anything the diagnostics tool should health-check
// (the vector DB client, the semantic cache, and so on).
type Pinger interface {
	Ping(ctx context.Context) error
}

// DiagnosticsTool reports the reachability of backing services, for admins
// debugging a degraded response (e.g. the cascade falling back to a lower
// LLM tier, or retrieval returning empty collections).
type DiagnosticsTool struct {
	Embedder embedding.Provider
	Services map[string]Pinger
}

func (t *DiagnosticsTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "diagnostics",
		Description: "Check the reachability of backing services (vector database, cache, embeddings) for troubleshooting.",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

type diagnosticEntry struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

func (t *DiagnosticsTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	report := make([]diagnosticEntry, 0, len(t.Services)+1)

	if t.Embedder != nil {
		start := time.Now()
		err := t.Embedder.Ping(ctx)
		entry := diagnosticEntry{Name: "embedding:" + t.Embedder.Name(), Healthy: err == nil, Latency: time.Since(start).String()}
		if err != nil {
			entry.Error = err.Error()
		}
		report = append(report, entry)
	}

	for name, svc := range t.Services {
		start := time.Now()
		err := svc.Ping(ctx)
		entry := diagnosticEntry{Name: name, Healthy: err == nil, Latency: time.Since(start).String()}
		if err != nil {
			entry.Error = err.Error()
		}
		report = append(report, entry)
	}

	b, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
