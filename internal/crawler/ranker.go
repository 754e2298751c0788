package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/internal/logger"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
)

// ErrNoItems means the ranking source produced nothing usable.
var ErrNoItems = errors.New("no ranking items found")

const (
	defaultTake          = 6
	defaultTitleMinChars = 6
)

// RankerOptions controls extraction.
type RankerOptions struct {
	Take                int
	TitleMinChars       int
	PreviousDayFallback bool
}

// Ranker turns a ranking source into the ordered, deduplicated item list.
type Ranker struct {
	registry providers.FetcherRegistry
	client   httpclient.Client
	log      logger.Logger
	provider providers.Provider
	opts     RankerOptions
}

// NewRanker creates a Ranker for one provider.
func NewRanker(registry providers.FetcherRegistry, client httpclient.Client, log logger.Logger, provider providers.Provider, opts RankerOptions) *Ranker {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if registry == nil {
		registry = providers.DefaultFetcherRegistry(client)
	}
	if opts.Take <= 0 {
		opts.Take = defaultTake
	}
	if opts.TitleMinChars <= 0 {
		opts.TitleMinChars = defaultTitleMinChars
	}
	return &Ranker{
		registry: registry,
		client:   client,
		log:      logger.Ensure(log),
		provider: provider,
		opts:     opts,
	}
}

// Provider returns the ranking source this ranker reads.
func (r *Ranker) Provider() providers.Provider { return r.provider }

// Extract returns up to Take items for date in rank order. When the day
// yields nothing and PreviousDayFallback is set, the previous day's ranking
// is tried once before giving up with ErrNoItems.
func (r *Ranker) Extract(ctx context.Context, date time.Time) ([]domain.NewsItem, error) {
	items, err := r.extractDay(ctx, date)
	if len(items) > 0 {
		return items, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	r.logEmptyDay(date, err)

	if r.opts.PreviousDayFallback {
		prev := date.AddDate(0, 0, -1)
		r.log.InfoObj("falling back to previous day ranking", "ranking_fallback", map[string]any{
			"provider_id": r.provider.ID,
			"date":        prev.Format("2006-01-02"),
		})
		items, prevErr := r.extractDay(ctx, prev)
		if len(items) > 0 {
			return items, nil
		}
		r.logEmptyDay(prev, prevErr)
		if prevErr != nil {
			err = prevErr
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoItems, err)
	}
	return nil, ErrNoItems
}

func (r *Ranker) logEmptyDay(date time.Time, err error) {
	payload := map[string]any{
		"provider_id": r.provider.ID,
		"date":        date.Format("2006-01-02"),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	r.log.WarnObj("ranking yielded no items", "ranking_empty", payload)
}

// extractDay walks the day's candidates in order: first-seen URL wins, short
// titles are backfilled from article metadata, and the walk stops at Take.
func (r *Ranker) extractDay(ctx context.Context, date time.Time) ([]domain.NewsItem, error) {
	fetcher, err := r.registry.FetcherFor(r.provider)
	if err != nil {
		return nil, err
	}

	candidates, err := fetcher.Fetch(ctx, r.provider, providers.Query{Date: date, Take: r.opts.Take})
	if err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", err)
	}

	items := make([]domain.NewsItem, 0, r.opts.Take)
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if len(items) >= r.opts.Take {
			break
		}
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		u := strings.TrimSpace(c.URL)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		title, outcome := r.resolveTitle(ctx, strings.TrimSpace(c.Title), u)
		if title == "" {
			r.log.DebugObj("dropping untitled candidate", "candidate_dropped", map[string]any{
				"url":    u,
				"reason": outcome.Reason,
			})
			continue
		}

		items = append(items, domain.NewsItem{
			Rank:     len(items) + 1,
			Title:    title,
			URL:      u,
			Outcomes: domain.Outcomes{Title: outcome},
		})
	}

	return items, nil
}

// resolveTitle keeps titles that meet the length threshold; shorter ones are
// replaced by the article's og:title or <title> when the page offers one.
func (r *Ranker) resolveTitle(ctx context.Context, title, articleURL string) (string, domain.FieldOutcome) {
	if utf8.RuneCountInString(title) >= r.opts.TitleMinChars {
		return title, domain.Ok()
	}

	meta, err := r.fetchMeta(ctx, articleURL)
	if err != nil {
		r.log.WarnObj("title backfill failed", "title_backfill_error", map[string]any{
			"url":   articleURL,
			"error": err.Error(),
		})
		return title, domain.Failed(err)
	}
	if meta.Title != "" {
		return meta.Title, domain.Ok()
	}
	return title, domain.Empty("article has no og:title or <title>")
}

func (r *Ranker) fetchMeta(ctx context.Context, articleURL string) (pageMeta, error) {
	resp, err := r.client.Get(ctx, articleURL, providers.Headers(r.provider))
	if err != nil {
		return pageMeta{}, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return pageMeta{}, fmt.Errorf("status %d", resp.StatusCode())
	}
	return parseMeta(resp.Body())
}
