package orchestrator

import (
	"time"

	"zantaracore/internal/llmgateway"
	"zantaracore/internal/reasoning"
)

// HistoryTurn is one prior conversational turn the caller supplies.
// Defensive: the orchestrator drops turns with empty content and defaults
// an empty role to "user" (sanitizeHistory) rather than panicking on them.
type HistoryTurn struct {
	Role    string
	Content string
}

// QueryRequest is the immutable input to ProcessQuery/StreamQuery.
type QueryRequest struct {
	Query     string
	UserID    string
	UserEmail string
	Role      string
	History   []HistoryTurn
}

// QueryResult is everything ProcessQuery returns to its caller (spec
// §4.10's enumerated result fields).
type QueryResult struct {
	Answer             string
	Sources            []reasoning.Source
	ContextUsed        []string
	ExecutionTime      time.Duration
	RouteUsed          string
	Steps              []reasoning.Step
	ToolsCalled        int
	TotalSteps         int
	VerificationStatus string
	DebugInfo          map[string]any
}

// Intent is the outcome of ClassifyIntent: which LLM tier to start the
// reasoning loop at and whether deep-think mode is requested.
type Intent struct {
	Category  string
	Tier      llmgateway.Tier
	DeepThink bool
}
