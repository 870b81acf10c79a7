package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// reasoningMarkers are leaked internal-monologue prefixes that must
// never reach the user.
var reasoningMarkers = regexp.MustCompile(`(?im)^\s*(thought|action|observation)\s*:.*$`)

// proceduralPattern flags questions asking "how do I ..." / step-by-step
// instructions, which get reformatted as a numbered list when the draft
// isn't already one.
var proceduralPattern = regexp.MustCompile(`(?i)\b(how (do|can) i|steps? to|cara|langkah)\b`)

var numberedLinePattern = regexp.MustCompile(`(?m)^\s*\d+[.)]`)

// emotionalPattern flags a frustrated or anxious user query so the
// assistant opens with a brief acknowledgment before the substance.
var emotionalPattern = regexp.MustCompile(`(?i)\b(worried|frustrated|stressed|scared|khawatir|bingung|takut|urgent|segera)\b`)

const emotionalAcknowledgment = "I understand this is a stressful topic — let's sort it out. "

// PostProcessingStage strips leaked reasoning markers, reformats
// procedural answers into numbered lists, and prepends an emotional
// acknowledgment when the query reads as anxious or frustrated.
type PostProcessingStage struct{}

func (PostProcessingStage) Name() string { return "post_processing" }

func (PostProcessingStage) Process(_ context.Context, d Data) (Data, error) {
	answer := reasoningMarkers.ReplaceAllString(d.Answer, "")
	answer = strings.TrimSpace(answer)

	if proceduralPattern.MatchString(d.Query) && !numberedLinePattern.MatchString(answer) {
		answer = toNumberedList(answer)
	}
	if emotionalPattern.MatchString(d.Query) {
		answer = emotionalAcknowledgment + answer
	}

	d.Answer = answer
	return d, nil
}

// toNumberedList splits a procedural answer on sentence boundaries and
// reformats it as a numbered list, a purely cosmetic transform applied
// only when the model didn't already produce one.
func toNumberedList(answer string) string {
	sentences := strings.FieldsFunc(answer, func(r rune) bool { return r == '.' || r == '\n' })
	var sb strings.Builder
	n := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n++
		sb.WriteString(strconv.Itoa(n))
		sb.WriteString(". ")
		sb.WriteString(s)
		sb.WriteString(".\n")
	}
	if n == 0 {
		return answer
	}
	return strings.TrimSpace(sb.String())
}
