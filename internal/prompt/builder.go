package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"zantaracore/internal/memory"
)

// masterTemplate is the base persona. {rag_results} and {user_memory} are
// substituted after the language lock and before the persona overrides
// are applied; {query} is deliberately left unresolved until after the
// cache lookup so the
// cached entry is reusable across distinct queries with identical
// persona/memory shape.
const masterTemplate = `You are Zantara, the Bali Zero assistant for Indonesian business setup, visa, and tax questions. Kamu ngejelasin sesuatu kayak temen yang ngerti banget soal urusan PT PMA, KITAS, dan pajak, tapi tetap akurat dan nggak ngasal. Literally always ground your answer in the evidence below; if it's missing, say so instead of guessing.

Relevant knowledge:
{rag_results}

What you know about this user:
{user_memory}

{query}
`

const noMemoryYet = "No specific memory yet"

const antiPreambleInstruction = "\n\nAnswer directly. Do not open with a restatement of the question or a generic acknowledgement."

// Builder assembles and caches system prompts.
type Builder struct {
	cache Cache
}

func NewBuilder(cache Cache) *Builder {
	return &Builder{cache: cache}
}

// Build returns the final system prompt for one request.
func (b *Builder) Build(ctx context.Context, p Params) (string, error) {
	key, _ := b.cacheKey(p)

	templatized, err := b.templatized(ctx, key, p)
	if err != nil {
		return "", err
	}

	final := strings.Replace(templatized, "{query}", "User Query: "+p.Query, 1)
	final += antiPreambleInstruction
	if p.DeepThink {
		final = "Take extra care: reason step by step before committing to an answer.\n\n" + final
	}
	if p.AdditionalContext != "" {
		final += "\n\nAdditional context:\n" + p.AdditionalContext
	}
	return final, nil
}

// templatized returns the cached-or-freshly-built prompt with the
// {query} placeholder still unresolved.
func (b *Builder) templatized(ctx context.Context, key string, p Params) (string, error) {
	if b.cache != nil {
		if cached, ok, err := b.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
	}

	template, _ := applyLanguageLock(masterTemplate, p.Query)

	memBlock := b.memoryBlock(p.Memory)
	out := strings.NewReplacer(
		"{rag_results}", strings.TrimSpace(p.RAGResults),
		"{user_memory}", memBlock,
	).Replace(template)

	out = applyPersonaOverrides(out, p.UserID, p.UserEmail, p.Role)

	if b.cache != nil {
		_ = b.cache.Set(ctx, key, out, cacheTTL)
	}
	return out, nil
}

// memoryBlock renders the profile card, personal facts, timeline
// summary, and collective knowledge, or the fixed "no memory" sentinel
// when there is nothing to show. No code branches on the sentinel; it
// only appears in the prompt text.
func (b *Builder) memoryBlock(m memory.Context) string {
	if len(m.Facts) == 0 && m.TimelineSummary == "" && len(m.CollectiveFacts) == 0 && m.Profile.Name == "" {
		return noMemoryYet
	}
	var sb strings.Builder
	if m.Profile.Name != "" {
		fmt.Fprintf(&sb, "Profile: %s", m.Profile.Name)
		if m.Profile.Role != "" {
			fmt.Fprintf(&sb, ", %s", m.Profile.Role)
		}
		if m.Profile.Department != "" {
			fmt.Fprintf(&sb, " (%s)", m.Profile.Department)
		}
		sb.WriteString("\n")
	}
	if len(m.Facts) > 0 {
		sb.WriteString("Known facts:\n")
		for _, f := range m.Facts {
			fmt.Fprintf(&sb, "- %s\n", f.Content)
		}
	}
	if m.TimelineSummary != "" {
		fmt.Fprintf(&sb, "Recent conversation summary: %s\n", m.TimelineSummary)
	}
	if len(m.CollectiveFacts) > 0 {
		sb.WriteString("Relevant knowledge from other users:\n")
		for _, f := range m.CollectiveFacts {
			fmt.Fprintf(&sb, "- %s\n", f.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}

// cacheKey builds the spec's composite cache key and also returns the
// detected language tag for callers that want it.
func (b *Builder) cacheKey(p Params) (string, string) {
	tag, _ := classify(p.Query)
	parts := []string{
		"prompt",
		p.UserID,
		strconv.FormatBool(p.DeepThink),
		strconv.Itoa(len(p.Memory.Facts)),
		strconv.Itoa(len(p.Memory.CollectiveFacts)),
		strconv.Itoa(len(p.Memory.TimelineSummary)),
		strconv.FormatBool(isCreator(p.UserID)),
		strconv.FormatBool(isInternalTeam(p.UserEmail, p.Role)),
		strconv.Itoa(len(p.AdditionalContext)),
		tag,
	}
	return strings.Join(parts, ":"), tag
}
