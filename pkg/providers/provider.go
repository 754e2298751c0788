package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
)

const (
	// Supported provider types.
	ProviderTypeHTMLRanking = "html-ranking"
	ProviderTypeGoogleNews  = "google-news"

	// DatePlaceholder is replaced in SourceURL by the run date.
	DatePlaceholder = "{date}"

	defaultDateFormat = "20060102"
	defaultUserAgent  = "Mozilla/5.0 DalsuBot"
)

// HTTPClient is the transport used by fetchers.
type HTTPClient = httpclient.Client

// Provider describes one ranking source.
type Provider struct {
	ID                string            `mapstructure:"id" yaml:"id" json:"id"`
	Type              string            `mapstructure:"type" yaml:"type" json:"type"`
	SourceURL         string            `mapstructure:"source_url" yaml:"source_url" json:"source_url"`
	BaseURL           string            `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	ContainerSelector string            `mapstructure:"container_selector" yaml:"container_selector" json:"container_selector"`
	ArticlePattern    string            `mapstructure:"article_pattern" yaml:"article_pattern" json:"article_pattern"`
	CanonicalScheme   string            `mapstructure:"canonical_scheme" yaml:"canonical_scheme" json:"canonical_scheme"`
	DateFormat        string            `mapstructure:"date_format" yaml:"date_format" json:"date_format"`
	UserAgent         string            `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	Headers           map[string]string `mapstructure:"headers" yaml:"headers" json:"headers"`
	RequestDelayMS    int               `mapstructure:"request_delay_ms" yaml:"request_delay_ms" json:"request_delay_ms"`
}

// Query narrows a fetch to one ranking day and the number of items wanted.
type Query struct {
	Date time.Time
	Take int
}

// Fetcher turns a ranking source into ordered raw candidates. Candidates may
// contain duplicates and empty titles; the ranker cleans them up.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, q Query) ([]domain.Candidate, error)
}

// FetcherRegistry resolves the fetcher responsible for a provider.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// RequestDelay is the pause between article requests against this provider.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelayMS <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelayMS) * time.Millisecond
}

// SourceURLFor expands the date placeholder in SourceURL.
func (p Provider) SourceURLFor(date time.Time) string {
	layout := p.DateFormat
	if strings.TrimSpace(layout) == "" {
		layout = defaultDateFormat
	}
	return strings.ReplaceAll(p.SourceURL, DatePlaceholder, date.Format(layout))
}

// Headers returns the request headers for the provider, always carrying a
// User-Agent.
func Headers(cfg Provider) map[string]string {
	out := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		if k = strings.TrimSpace(k); k != "" && strings.TrimSpace(v) != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	if _, ok := out["User-Agent"]; !ok {
		ua := strings.TrimSpace(cfg.UserAgent)
		if ua == "" {
			ua = defaultUserAgent
		}
		out["User-Agent"] = ua
	}
	return out
}

// NateProvider is the default ranking source: the daily Nate news ranking.
func NateProvider() Provider {
	return Provider{
		ID:                "nate",
		Type:              ProviderTypeHTMLRanking,
		SourceURL:         "https://news.nate.com/rank/interest?sc=all&p=day&date=" + DatePlaceholder,
		BaseURL:           "https://news.nate.com",
		ContainerSelector: "div.ranknews",
		ArticlePattern:    `https?://news\.nate\.com/view/[0-9A-Za-z]+`,
		CanonicalScheme:   "https",
		DateFormat:        defaultDateFormat,
		UserAgent:         defaultUserAgent,
	}
}

// BuiltinProviders is the provider catalogue available without configuration.
func BuiltinProviders() []Provider {
	return []Provider{NateProvider()}
}
