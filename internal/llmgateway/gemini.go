package llmgateway

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"zantaracore/internal/errs"
)

// geminiClient wraps one genai model configuration. Three instances
// (lite/flash/pro) share the same underlying *genai.Client and differ
// only in model name, following the teacher's internal/llm/google
// client.go pattern of a single client parametrized per call by model
// string — generalized here into one client struct per cascade tier so
// each tier's model name is fixed at construction instead of threaded
// through every call.
type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini constructs a tier's Gemini client against a shared
// *genai.Client (one dial per process, reused across tiers).
func NewGemini(client *genai.Client, model string) ModelClient {
	return &geminiClient{client: client, model: model}
}

func (c *geminiClient) SupportsNativeFunctionCalling() bool { return true }

func (c *geminiClient) Ping(ctx context.Context) error {
	_, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromText("ping", genai.RoleUser),
	}, nil)
	if err != nil {
		return fmt.Errorf("%w: gemini ping %s: %v", errs.ErrUpstreamUnavailable, c.model, err)
	}
	return nil
}

func (c *geminiClient) Send(ctx context.Context, system string, history []Message, tools []ToolDecl, enableFunctionCalling bool) (Response, error) {
	contents, err := toContents(history)
	if err != nil {
		return Response{}, err
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if enableFunctionCalling && len(tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDecls(tools)}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return Response{}, classifyGeminiError(c.model, err)
	}
	return responseFromGemini(resp, c.model)
}

func classifyGeminiError(model string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"), strings.Contains(msg, "rate"), strings.Contains(msg, "429"),
		strings.Contains(msg, "unavailable"), strings.Contains(msg, "503"), strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: gemini %s: %v", errs.ErrUpstreamUnavailable, model, err)
	default:
		return fmt.Errorf("%w: gemini %s: %v", errs.ErrUpstreamRejected, model, err)
	}
}

func toContents(history []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case "user", "system":
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case "assistant":
			parts := []*genai.Part{}
			if strings.TrimSpace(m.Content) != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, tc.Args))
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case "tool":
			resp := map[string]any{"output": m.Content}
			part := genai.NewPartFromFunctionResponse(m.ToolID, resp)
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		default:
			return nil, fmt.Errorf("%w: unsupported gemini role %q", errs.ErrInvalidArgs, m.Role)
		}
	}
	return contents, nil
}

func toFunctionDecls(tools []ToolDecl) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		out = append(out, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return out
}

func responseFromGemini(resp *genai.GenerateContentResponse, model string) (Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{Model: model, Raw: resp}, nil
	}
	var sb strings.Builder
	var calls []ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			calls = append(calls, ToolCall{Name: part.FunctionCall.Name, Args: part.FunctionCall.Args})
		}
	}
	return Response{Text: sb.String(), ToolCalls: calls, Model: model, Raw: resp}, nil
}
