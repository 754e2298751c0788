package providers

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Adda-Baaj/newsreel/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// htmlRankingFetcher scrapes an HTML ranking page: anchors inside the ranking
// container first, then a raw-text scan for article URLs when the anchors do
// not yield enough distinct articles.
type htmlRankingFetcher struct {
	client HTTPClient
}

// NewHTMLRankingFetcher builds a Fetcher for HTML ranking pages.
func NewHTMLRankingFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &htmlRankingFetcher{client: client}
}

// ID returns the provider type served by this fetcher.
func (f *htmlRankingFetcher) ID() string {
	return ProviderTypeHTMLRanking
}

// Fetch retrieves the ranking page for q.Date and returns candidates in page order.
func (f *htmlRankingFetcher) Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.Candidate, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeHTMLRanking) {
		return nil, fmt.Errorf("html ranking fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}
	pattern, err := regexp.Compile(cfg.ArticlePattern)
	if err != nil {
		return nil, fmt.Errorf("provider %q article_pattern: %w", cfg.ID, err)
	}

	raw, err := fetchPage(ctx, f.client, cfg.SourceURLFor(q.Date), cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s ranking html: %w", cfg.ID, err)
	}

	candidates := rankingAnchors(doc, cfg, pattern)
	if distinctURLs(candidates) < q.Take {
		candidates = append(candidates, rawArticleURLs(raw, pattern, cfg.CanonicalScheme)...)
	}
	return candidates, nil
}

// rankingAnchors collects the article anchors inside the ranking container.
func rankingAnchors(doc *goquery.Document, cfg Provider, pattern *regexp.Regexp) []domain.Candidate {
	sel := strings.TrimSpace(cfg.ContainerSelector) + " a[href]"
	var out []domain.Candidate
	doc.Find(strings.TrimSpace(sel)).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, ok := canonicalURL(absURL(href, cfg.BaseURL), pattern, cfg.CanonicalScheme)
		if !ok {
			return
		}
		out = append(out, domain.Candidate{Title: SelectionText(a), URL: u})
	})
	return out
}

// rawArticleURLs scans the page source for article URLs; titles are unknown.
func rawArticleURLs(raw []byte, pattern *regexp.Regexp, scheme string) []domain.Candidate {
	matches := pattern.FindAll(raw, -1)
	out := make([]domain.Candidate, 0, len(matches))
	for _, m := range matches {
		if u, ok := canonicalURL(string(m), pattern, scheme); ok {
			out = append(out, domain.Candidate{URL: u})
		}
	}
	return out
}

func distinctURLs(candidates []domain.Candidate) int {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.URL] = struct{}{}
	}
	return len(seen)
}
