package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zantaracore/internal/llmgateway"
)

const extractionPrompt = `Extract durable personal facts about the user from this exchange (name, role, company, visa status, preferences). Reply with ONLY a JSON array of objects: [{"content": string, "fact_type": string, "confidence": number between 0 and 1}]. Return [] if nothing durable was said.`

// GatewayFactExtractor implements FactExtractor by asking the cheapest
// cascade tier to pull structured facts out of a completed turn.
type GatewayFactExtractor struct {
	Gateway *llmgateway.Gateway
}

func (e *GatewayFactExtractor) ExtractFacts(ctx context.Context, userMessage, aiResponse string) ([]Fact, error) {
	if e.Gateway == nil {
		return nil, nil
	}
	user := fmt.Sprintf("User: %s\nAssistant: %s", userMessage, aiResponse)
	resp, _, err := e.Gateway.SendMessage(ctx, extractionPrompt, []llmgateway.Message{{Role: "user", Content: user}}, llmgateway.TierLite, nil, false)
	if err != nil {
		return nil, err
	}
	var parsed []struct {
		Content    string  `json:"content"`
		FactType   string  `json:"fact_type"`
		Confidence float64 `json:"confidence"`
	}
	text := extractJSONArray(resp.Text)
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, nil
	}
	facts := make([]Fact, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		facts = append(facts, Fact{Content: p.Content, FactType: p.FactType, Confidence: p.Confidence, Source: "conversation"})
	}
	return facts, nil
}

// extractJSONArray pulls the span from the first "[" to the last "]" out
// of a model reply that may wrap JSON in prose or a markdown code fence.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return "[]"
	}
	return s[start : end+1]
}

// PostgresProfileLookup resolves a user's identity card from the same
// team directory table the admin/internal-team prompt persona override
// checks, keyed by user id (an email address in this deployment).
type PostgresProfileLookup struct {
	Pool *pgxpool.Pool
}

func (p *PostgresProfileLookup) Profile(ctx context.Context, userID string) (Profile, error) {
	var prof Profile
	row := p.Pool.QueryRow(ctx, `
		SELECT name, role, department, language, email FROM team_members WHERE email = $1
	`, userID)
	if err := row.Scan(&prof.Name, &prof.Role, &prof.Department, &prof.Language, &prof.Email); err != nil {
		if err == pgx.ErrNoRows {
			return Profile{Email: userID}, nil
		}
		return Profile{}, err
	}
	return prof, nil
}
