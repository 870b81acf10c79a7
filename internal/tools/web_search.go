package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"zantaracore/internal/errs"
)

const webUserAgent = "Mozilla/5.0 (compatible; ZantaraCore/1.0; +https://balizero.com/bot)"

// WebFetchTool retrieves a public web page and converts its main content to
// markdown. It first tries a plain HTTP GET (cheap, works for most static
// regulatory/government pages); when the page comes back mostly empty it
// falls back to a headless render via chromedp for JS-rendered pages.
type WebFetchTool struct {
	HTTPClient *http.Client
}

func (t *WebFetchTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "web_fetch",
		Description: "Fetch a public web page by URL and return its main content as markdown.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "the page to fetch"},
			},
			"required": []string{"url"},
		},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "url"); err != nil {
		return "", err
	}
	address, _ := args["url"].(string)
	if _, err := url.ParseRequestURI(address); err != nil {
		return "", fmt.Errorf("%w: invalid url %q", errs.ErrInvalidArgs, address)
	}

	raw, err := t.fetchHTML(ctx, address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}

	article, err := readability.FromReader(strings.NewReader(raw), &url.URL{Scheme: "https", Host: address})
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return "", fmt.Errorf("%w: could not extract readable content from %s", errs.ErrUpstreamRejected, address)
	}

	md, err := converter.ConvertString(article.Content)
	if err != nil {
		return article.TextContent, nil
	}
	return strings.TrimSpace(md), nil
}

// fetchHTML tries a plain GET first and only pays for a headless browser
// when the response looks too thin to be real content (common for pages
// that render their body via client-side JS).
func (t *WebFetchTool) fetchHTML(ctx context.Context, address string) (string, error) {
	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if readErr == nil && resp.StatusCode == http.StatusOK && len(body) > 2048 {
			return string(body), nil
		}
	}

	renderCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	timeoutCtx, cancelTimeout := context.WithTimeout(renderCtx, 20*time.Second)
	defer cancelTimeout()

	var rendered string
	if err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(address),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &rendered),
	); err != nil {
		return "", fmt.Errorf("headless render failed: %w", err)
	}
	return rendered, nil
}

// WebSearchTool runs a web search against DuckDuckGo's no-JS HTML endpoint
// and returns the top result titles, URLs, and snippets.
type WebSearchTool struct {
	HTTPClient *http.Client
}

func (t *WebSearchTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "web_search",
		Description: "Search the public web for a query and return a short list of result titles, URLs, and snippets.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "the search query"},
			},
			"required": []string{"query"},
		},
	}
}

type searchHit struct {
	Title   string
	URL     string
	Snippet string
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "query"); err != nil {
		return "", err
	}
	query, _ := args["query"].(string)

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: search returned status %d", errs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}

	hits := extractDDGResults(doc, 5)
	if len(hits) == 0 {
		return "No search results found.", nil
	}
	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n", i+1, h.Title, h.URL, h.Snippet)
	}
	return sb.String(), nil
}

func extractDDGResults(n *html.Node, limit int) []searchHit {
	var hits []searchHit
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if len(hits) >= limit {
			return
		}
		if node.Type == html.ElementNode && node.Data == "a" && hasClass(node, "result__a") {
			href := attr(node, "href")
			title := collectText(node)
			hits = append(hits, searchHit{Title: strings.TrimSpace(title), URL: href})
		}
		if node.Type == html.ElementNode && node.Data == "a" && hasClass(node, "result__snippet") {
			if len(hits) > 0 {
				hits[len(hits)-1].Snippet = strings.TrimSpace(collectText(node))
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return hits
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(a.Val, class) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
