package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// fetchPage retrieves a page body, treating anything but 200 as an error.
func fetchPage(ctx context.Context, client HTTPClient, url, providerID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", providerID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s page returned status %d body: %s", providerID, resp.StatusCode(), responseSnippet(body))
	}

	return body, nil
}

// absURL resolves an anchor href the way ranking pages use them: protocol
// relative and root relative links are completed, absolute http(s) links are
// kept, and anything else is dropped.
func absURL(href, base string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(base, "/") + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return ""
	}
}

// canonicalURL reduces a URL to its article pattern match and, when scheme is
// set, rewrites the scheme. Query strings and fragments after the match are
// dropped so the same article linked two ways deduplicates to one key.
func canonicalURL(raw string, pattern *regexp.Regexp, scheme string) (string, bool) {
	m := pattern.FindString(raw)
	if m == "" {
		return "", false
	}
	if scheme = strings.TrimSpace(scheme); scheme != "" {
		if i := strings.Index(m, "://"); i > 0 {
			m = scheme + m[i:]
		}
	}
	return m, true
}

// SelectionText returns the text nodes under sel, each trimmed, joined by a
// single space.
func SelectionText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
