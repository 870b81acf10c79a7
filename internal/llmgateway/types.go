// Package llmgateway implements the tiered LLM cascade the reasoning
// engine drives: three first-party Gemini tiers plus an OpenRouter
// fallback, a uniform SendMessage entry point, native function-call
// parsing, and automatic degrade-on-error tier cascading that recreates
// the chat session across a model change.
package llmgateway

import "context"

// Tier names a priced capability level of the cascade, cheapest first
// except for the external fallback.
type Tier string

const (
	TierLite        Tier = "lite"
	TierFlash       Tier = "flash"
	TierPro         Tier = "pro"
	TierOpenRouter  Tier = "openrouter"
)

// Message is the application-managed conversation turn the gateway
// converts into each provider's expected role/part layout.
type Message struct {
	Role      string // "system" | "user" | "assistant" | "tool"
	Content   string
	ToolCalls []ToolCall
	ToolID    string
}

// ToolCall is one function-call the model asked to make.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolDecl is a function declaration derived from a tool's parameter
// schema for the provider's native function-calling surface.
type ToolDecl struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelClient is the narrow per-tier contract: send a conversation, get
// back text, any native tool calls, and the model name actually used.
type ModelClient interface {
	Send(ctx context.Context, system string, history []Message, tools []ToolDecl, enableFunctionCalling bool) (Response, error)
	Ping(ctx context.Context) error
	SupportsNativeFunctionCalling() bool
}

// Response is one model turn.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Model     string
	Raw       any
}
