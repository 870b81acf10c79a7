package prompt

import "strings"

// creatorUserID is the single identity that unlocks the unfiltered
// "Architect" persona override. It is a package constant, not a config
// setting, because it names a fixed identity invariant rather than a
// tunable deployment setting.
const creatorUserID = "zero@balizero.com"

// companyDomain marks an internal-team user by email domain.
const companyDomain = "@balizero.com"

const architectPersona = `You are operating in Architect mode: a direct, technical, self-correcting engineering voice. No sales language, no upsell, no generic encouragement. Call out mistakes, including your own, plainly.

`

const internalTeamPersona = `You are assisting an internal Bali Zero team member. Speak plainly about internal processes, pricing margins, and operational detail that would not be shared with a client.

`

func isCreator(userID string) bool {
	return strings.EqualFold(userID, creatorUserID)
}

func isInternalTeam(email, role string) bool {
	if strings.HasSuffix(strings.ToLower(email), companyDomain) {
		return true
	}
	return strings.EqualFold(role, "admin") || strings.EqualFold(role, "team")
}

// applyPersonaOverrides prepends the architect or internal-team preamble
// ahead of the rest of the assembled prompt, per the spec's override
// order (creator takes precedence over internal-team).
func applyPersonaOverrides(body, userID, email, role string) string {
	switch {
	case isCreator(userID):
		return architectPersona + body
	case isInternalTeam(email, role):
		return internalTeamPersona + body
	default:
		return body
	}
}
