package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/newsreel/pkg/providers"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	// DefaultSummarySelector targets the paragraphs of the article body.
	DefaultSummarySelector = "div.article p"

	// Ellipsis marks a truncated summary.
	Ellipsis = "…"
)

// summaryText joins the text of the article-body paragraphs, falling back to
// every paragraph on the page when the body container yields nothing.
func summaryText(doc *goquery.Document, selector string) string {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSummarySelector
	}
	if text := paragraphText(doc.Find(selector)); text != "" {
		return text
	}
	return paragraphText(doc.Find("p"))
}

func paragraphText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, p *goquery.Selection) {
		if t := providers.SelectionText(p); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// readableText is the last resort for pages without paragraph markup.
func readableText(body []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(article.TextContent), " ")
}

// Truncate keeps the first maxLen characters of text and appends Ellipsis
// when text is longer; shorter text is returned unchanged.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + Ellipsis
}
