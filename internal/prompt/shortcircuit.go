package prompt

import (
	"regexp"
	"strings"
)

var latinScript = regexp.MustCompile(`^[\x{0000}-\x{024F}\s.,!?'"()-]+$`)

// businessKeywords is the set whose presence rules a query OUT of the
// casual-conversation short-circuit even when it's short.
var businessKeywords = []string{
	"visa", "kitas", "kitap", "tax", "pajak", "npwp", "pt pma", "license",
	"izin", "company", "perusahaan", "legal", "kontrak", "contract", "bzi",
	"notaris", "notary", "investor", "immigration", "imigrasi",
}

// casualPatterns are heuristic phrase fragments typical of small talk.
var casualPatterns = []string{
	"weather", "cuaca", "makan", "food", "lapar", "music", "lagu",
	"movie", "film", "liburan", "holiday", "weekend", "hobby",
}

// CheckGreetings returns a fixed localized reply for a single-word or
// very short greeting, bypassing retrieval entirely.
func CheckGreetings(query string) (reply string, ok bool) {
	return greetingFor(query)
}

// CheckCasualConversation reports whether the query looks like small
// talk with no business intent. A business keyword always rules it out;
// otherwise a casual-topic pattern rules it in at any length or script,
// and anything else counts only if it is short (<60 bytes) and
// Latin-script.
func CheckCasualConversation(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, kw := range businessKeywords {
		if strings.Contains(q, kw) {
			return false
		}
	}
	for _, p := range casualPatterns {
		if strings.Contains(q, p) {
			return true
		}
	}
	return len(query) < 60 && latinScript.MatchString(query)
}

// identityQuestionPatterns are phrasings asking who/what the assistant is.
var identityQuestionPatterns = []string{
	"who are you", "what are you", "siapa kamu", "siapa kau", "kamu siapa",
	"are you an ai", "are you a bot", "are you human", "kamu bot",
}

const identityReply = "I'm Zantara, an AI assistant built by Bali Zero to help with Indonesian business, visa, and tax questions."

// CheckIdentityQuestions returns the fixed identity reply when the query
// is recognizably asking what/who the assistant is.
func CheckIdentityQuestions(query string) (reply string, ok bool) {
	q := strings.ToLower(query)
	for _, p := range identityQuestionPatterns {
		if strings.Contains(q, p) {
			return identityReply, true
		}
	}
	return "", false
}
