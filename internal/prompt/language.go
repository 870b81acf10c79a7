package prompt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// langSignature is one supported non-default language's detection rule
// and localized short replies.
type langSignature struct {
	tag      string
	name     string
	script   *regexp.Regexp
	keywords []string
	greeting string
	casual   string
}

// languages covers the spec's minimum detection set. Indonesian
// (Jaksel-flavored) is the default and is not in this list — it is what
// classify falls back to when nothing else matches.
var languages = []langSignature{
	{tag: "it", name: "Italian", keywords: []string{"ciao", "grazie", "buongiorno", "come stai"}, greeting: "Ciao! Come posso aiutarti oggi?"},
	{tag: "en", name: "English", keywords: []string{"hello", "hi ", "thanks", "good morning", "how are you"}, greeting: "Hi! How can I help you today?"},
	{tag: "uk", name: "Ukrainian", script: regexp.MustCompile(`[\x{0400}-\x{04FF}]`), keywords: []string{"привіт", "дякую"}, greeting: "Привіт! Чим можу допомогти?"},
	{tag: "ru", name: "Russian", script: regexp.MustCompile(`[\x{0400}-\x{04FF}]`), keywords: []string{"привет", "спасибо"}, greeting: "Привет! Чем могу помочь?"},
	{tag: "fr", name: "French", keywords: []string{"bonjour", "merci", "salut"}, greeting: "Bonjour ! Comment puis-je vous aider ?"},
	{tag: "es", name: "Spanish", keywords: []string{"hola", "gracias", "buenos dias"}, greeting: "¡Hola! ¿Cómo puedo ayudarte hoy?"},
	{tag: "de", name: "German", keywords: []string{"hallo", "danke", "guten tag"}, greeting: "Hallo! Wie kann ich Ihnen helfen?"},
	{tag: "zh", name: "Chinese", script: regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`), keywords: []string{"你好", "谢谢"}, greeting: "你好！我能帮你什么忙？"},
	{tag: "ar", name: "Arabic", script: regexp.MustCompile(`[\x{0600}-\x{06FF}]`), keywords: []string{"مرحبا", "شكرا"}, greeting: "مرحبا! كيف يمكنني مساعدتك اليوم؟"},
}

// jakselLexicon is the Jakarta-Selatan slang vocabulary stripped from
// the master template whenever the query is classified as
// non-Indonesian, per the spec's language-invariant requirement.
var jakselLexicon = []string{
	"literally", "which is", "kayak", "gitu", "gue", "lo", "banget",
	"sih", "dong", "anjay", "spill", "worth it", "vibes", "mager",
}

// classify returns the detected language tag ("id" for default
// Indonesian/Jaksel) and its human name.
func classify(query string) (tag, name string) {
	q := strings.ToLower(query)
	for _, l := range languages {
		for _, kw := range l.keywords {
			if strings.Contains(q, kw) {
				return l.tag, l.name
			}
		}
	}
	for _, l := range languages {
		if l.script != nil && l.script.MatchString(query) {
			return l.tag, l.name
		}
	}
	return "id", "Indonesian"
}

// applyLanguageLock strips Jaksel slang from the template and prepends
// a hard directive when the query is not Indonesian; the Indonesian
// (default Jaksel) case is returned unchanged.
func applyLanguageLock(template, query string) (string, string) {
	tag, name := classify(query)
	if tag == "id" {
		return template, tag
	}
	stripped := template
	for _, w := range jakselLexicon {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		stripped = re.ReplaceAllString(stripped, "")
	}
	directive := "IMPORTANT: respond entirely in " + name + ", do not use any Indonesian words or slang.\n\n"
	return directive + stripped, tag
}

func greetingFor(query string) (string, bool) {
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return "", false
	}
	words := strings.Fields(q)
	if len(words) > 3 {
		return "", false
	}
	for _, l := range languages {
		for _, kw := range l.keywords {
			k := strings.TrimSpace(kw)
			next, _ := utf8.DecodeRuneInString(strings.TrimPrefix(q, k))
			if q == kw || (strings.HasPrefix(q, k) && !unicode.Is(unicode.Latin, next)) {
				if l.greeting != "" {
					return l.greeting, true
				}
			}
		}
	}
	switch q {
	case "hi", "hello", "hey":
		return "Hi! How can I help you today?", true
	case "halo", "hai", "pagi", "permisi":
		return "Halo! Ada yang bisa gue bantu hari ini?", true
	}
	return "", false
}
