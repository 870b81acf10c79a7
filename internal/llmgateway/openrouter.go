package llmgateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"zantaracore/internal/errs"
)

// openRouterClient is the fourth cascade tier: a third-party fallback
// reached over OpenRouter's OpenAI-compatible chat-completions API.
// Grounded on the same openai-go/v2 client already wired for the remote
// embedding provider (internal/embedding/remote.go), pointed at
// OpenRouter's base URL via option.WithBaseURL rather than adopting a
// dedicated OpenRouter SDK, since no repo in the example pack imports
// one (see DESIGN.md Open Question resolutions).
type openRouterClient struct {
	client openai.Client
	model  string
}

// NewOpenRouter constructs the OpenRouter fallback client.
func NewOpenRouter(apiKey, baseURL, model string) ModelClient {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &openRouterClient{client: client, model: model}
}

// SupportsNativeFunctionCalling is false: the spec requires the gateway
// to return a raw nil/None response shape here so the reasoning engine
// disables native parsing and falls back to the regex ACTION: parser.
func (c *openRouterClient) SupportsNativeFunctionCalling() bool { return false }

func (c *openRouterClient) Ping(ctx context.Context) error {
	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxTokens: openai.Int(1),
	})
	if err != nil {
		return fmt.Errorf("%w: openrouter ping: %v", errs.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *openRouterClient) Send(ctx context.Context, system string, history []Message, _ []ToolDecl, _ bool) (Response, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, m := range history {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case "tool":
			msgs = append(msgs, openai.UserMessage("Observation: "+m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "429") || strings.Contains(msg, "rate") || strings.Contains(msg, "quota") {
			return Response{}, fmt.Errorf("%w: openrouter: %v", errs.ErrUpstreamUnavailable, err)
		}
		return Response{}, fmt.Errorf("%w: openrouter: %v", errs.ErrUpstreamRejected, err)
	}
	if len(resp.Choices) == 0 {
		return Response{Model: c.model}, nil
	}
	// Native tool calls are intentionally never populated here; per spec
	// the gateway returns the raw text only and the caller parses any
	// ACTION: line with the regex fallback.
	return Response{Text: resp.Choices[0].Message.Content, Model: c.model}, nil
}
