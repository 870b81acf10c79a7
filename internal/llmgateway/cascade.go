package llmgateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"zantaracore/internal/errs"
)

// tierOrder is the fixed degrade path: PRO -> FLASH -> LITE ->
// OPENROUTER. A request starting at a given tier only cascades forward
// through this list from its own position.
var tierOrder = []Tier{TierPro, TierFlash, TierLite, TierOpenRouter}

// Gateway is the single public LLM entry point: it selects the starting
// tier, invokes that tier's client, and on a retryable error degrades to
// the next tier in tierOrder, recreating the "chat session" implicitly
// since every call is stateless and carries the full history itself.
type Gateway struct {
	clients map[Tier]ModelClient
}

// NewGateway wires a gateway from a tier->client map. Tiers absent from
// the map are skipped during cascade.
func NewGateway(clients map[Tier]ModelClient) *Gateway {
	return &Gateway{clients: clients}
}

// SendMessage runs the cascade starting at tier, returning the response
// text, the model/tier name actually used, and the raw provider
// response. enableFunctionCalling is honored per tier: when the
// responding tier doesn't support native function calling (OpenRouter),
// the returned ToolCalls is always empty regardless of the flag, signal
// enough for the reasoning engine to fall back to regex parsing.
func (g *Gateway) SendMessage(ctx context.Context, system string, history []Message, startTier Tier, tools []ToolDecl, enableFunctionCalling bool) (Response, Tier, error) {
	start := indexOf(tierOrder, startTier)
	if start < 0 {
		start = 0
	}
	var lastErr error
	for _, tier := range tierOrder[start:] {
		client, ok := g.clients[tier]
		if !ok {
			continue
		}
		resp, err := client.Send(ctx, system, history, tools, enableFunctionCalling && client.SupportsNativeFunctionCalling())
		if err == nil {
			return resp, tier, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return Response{}, tier, err
		}
		log.Warn().Err(err).Str("tier", string(tier)).Msg("llm_gateway_cascade_degrade")
	}
	if lastErr == nil {
		lastErr = errs.ErrCascadeExhausted
	}
	return Response{}, "", fmt.Errorf("%w: %v", errs.ErrCascadeExhausted, lastErr)
}

// HealthCheck pings every configured tier and returns the set that
// responded.
func (g *Gateway) HealthCheck(ctx context.Context) map[Tier]bool {
	out := make(map[Tier]bool, len(g.clients))
	for tier, client := range g.clients {
		out[tier] = client.Ping(ctx) == nil
	}
	return out
}

// isRetryable reports whether an error should cascade to the next tier
// (quota/rate/transient-unavailable) versus being treated as fatal
// (invalid args, auth).
func isRetryable(err error) bool {
	return errors.Is(err, errs.ErrUpstreamUnavailable)
}

func indexOf(tiers []Tier, t Tier) int {
	for i, x := range tiers {
		if x == t {
			return i
		}
	}
	return -1
}
