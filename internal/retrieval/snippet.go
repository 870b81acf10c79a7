package retrieval

import "strings"

// GenerateSnippets fills in Snippet for items that have full text but no
// snippet yet, centering a ~160-character window on the first query-term
// match (falling back to a leading truncation when no term is found).
func GenerateSnippets(items []RetrievedItem, query string) []RetrievedItem {
	for i := range items {
		if items[i].Snippet != "" {
			continue
		}
		text := items[i].Text
		if text == "" {
			text = items[i].Metadata["text"]
		}
		items[i].Snippet = windowSnippet(text, query)
	}
	return items
}

func windowSnippet(text, query string) string {
	const window = 160
	if text == "" {
		return ""
	}
	if query == "" {
		return truncate(text, window)
	}
	lower := strings.ToLower(text)
	q := strings.ToLower(strings.TrimSpace(query))
	idx := strings.Index(lower, q)
	if idx == -1 {
		for _, term := range strings.Fields(q) {
			if idx = strings.Index(lower, term); idx != -1 {
				break
			}
		}
	}
	if idx == -1 {
		return truncate(text, window)
	}
	start := idx - 60
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func truncate(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}
