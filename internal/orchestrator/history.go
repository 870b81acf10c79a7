package orchestrator

import (
	"fmt"
	"strings"
)

// Rough token estimate: ~4 chars/token, matching the convention used
// elsewhere in the pack's context-window accounting (no tokenizer
// dependency is wired for this; it's a budget heuristic, not a billing
// figure).
const charsPerToken = 4

// recentWindowTokens caps the most-recent-turns window kept verbatim;
// older turns are summarized instead of dropped (spec §4.10 step 5).
const recentWindowTokens = 4000

// totalBudgetTokens is the hard ceiling on the assembled history text.
const totalBudgetTokens = 8000

// fallbackTurnCount and fallbackCharCap are the degraded-mode limits
// used when the windowed-summary compression itself fails or produces
// something still over budget.
const fallbackTurnCount = 10
const fallbackCharCap = 500

// buildHistoryText renders prior turns into the text appended to the
// system prompt as additional context: a verbatim recent window plus an
// extractive summary of anything older, falling back to a simple
// last-10-messages/500-char-each truncation if the result is still over
// the total token budget.
func buildHistoryText(history []HistoryTurn) string {
	history = sanitizeHistory(history)
	if len(history) == 0 {
		return ""
	}

	recent, older := splitByTokenBudget(history, recentWindowTokens)

	var sb strings.Builder
	if len(older) > 0 {
		sb.WriteString("Earlier in this conversation: ")
		sb.WriteString(summarizeTurns(older))
		sb.WriteString("\n\n")
	}
	for _, t := range recent {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
	}

	out := sb.String()
	if estimateTokens(out) <= totalBudgetTokens {
		return out
	}
	return fallbackTruncate(history)
}

// sanitizeHistory is the defensive type check spec §4.10 step 4 calls
// for: turns with empty content are dropped and an empty role defaults to
// "user", rather than either causing a panic downstream.
func sanitizeHistory(history []HistoryTurn) []HistoryTurn {
	out := make([]HistoryTurn, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		if t.Role == "" {
			t.Role = "user"
		}
		out = append(out, t)
	}
	return out
}

func estimateTokens(s string) int {
	return len(s) / charsPerToken
}

// splitByTokenBudget walks history from the most recent turn backward,
// keeping whole turns until the recent-window token budget is spent;
// everything older is returned separately for summarization.
func splitByTokenBudget(history []HistoryTurn, budget int) (recent, older []HistoryTurn) {
	used := 0
	cut := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := estimateTokens(history[i].Content)
		if used+cost > budget && cut != len(history) {
			break
		}
		used += cost
		cut = i
	}
	return history[cut:], history[:cut]
}

// summarizeTurns is a plain extractive summary: the first 120 runes of
// each older turn, joined. No LLM call is made here
// — compression failure (exceeding the token budget even after this)
// triggers the harder fallbackTruncate path instead of a second
// summarization pass.
func summarizeTurns(turns []HistoryTurn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, truncateRunes(t.Content, 120))
	}
	return strings.Join(parts, " ... ")
}

// fallbackTruncate is the degraded-mode path: the last 10 turns,
// capped at 500 chars each, with no summarization of anything older.
func fallbackTruncate(history []HistoryTurn) string {
	if len(history) > fallbackTurnCount {
		history = history[len(history)-fallbackTurnCount:]
	}
	var sb strings.Builder
	for _, t := range history {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, truncateRunes(t.Content, fallbackCharCap))
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
