package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/internal/logger"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
	"github.com/Adda-Baaj/newsreel/pkg/providers"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes     = 2 << 20 // 2 MiB
	defaultWorkers       = 4
	defaultSummaryMaxLen = 30
	imageFileFormat      = "news_%d.jpg"
)

// ScraperOptions tunes enrichment.
type ScraperOptions struct {
	Workers         int
	SummarySelector string
	SummaryMaxLen   int
	Gagline         GaglineFunc
}

// Scraper enriches ranked items by scraping their article pages: preview
// image, a local copy of it, a short summary and the caption line.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
	opts   ScraperOptions
}

// NewScraper creates a new Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger, opts ScraperOptions) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.SummaryMaxLen <= 0 {
		opts.SummaryMaxLen = defaultSummaryMaxLen
	}
	if opts.Gagline == nil {
		opts.Gagline = FixedGagline(DefaultGagline)
	}
	return &Scraper{client: client, log: logger.Ensure(log), opts: opts}
}

// Enrich enriches every item independently. The result is index-aligned with
// items, so rank order is preserved regardless of worker scheduling. Field
// failures never abort the batch; they are recorded in each item's Outcomes.
func (s *Scraper) Enrich(ctx context.Context, cfg providers.Provider, items []domain.NewsItem, outDir string) []domain.NewsItem {
	delay := cfg.RequestDelay()
	out := make([]domain.NewsItem, len(items))
	copy(out, items) // default to originals so partial results are returned on cancel

	if len(items) == 0 {
		return out
	}

	workerCount := min(len(items), s.opts.Workers)

	var limiter <-chan time.Time
	var ticker *time.Ticker
	if delay > 0 {
		ticker = time.NewTicker(delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, cfg, items, outDir, limiter, jobCh, out, &wg, workerID)
	}

	for idx := range items {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

// articleWorker processes items from the job channel, respecting the rate limiter.
func (s *Scraper) articleWorker(
	ctx context.Context,
	cfg providers.Provider,
	items []domain.NewsItem,
	outDir string,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.NewsItem,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		out[idx] = s.enrichItem(ctx, cfg, items[idx], idx, outDir, workerID)
	}
}

// enrichItem fetches the article once and derives every enrichment field from it.
func (s *Scraper) enrichItem(ctx context.Context, cfg providers.Provider, item domain.NewsItem, idx int, outDir string, workerID int) domain.NewsItem {
	updated := item
	updated.Gagline = s.opts.Gagline(item.Title)

	s.log.DebugObj("scraping article", "scrape_start", map[string]any{
		"worker_id":   workerID,
		"provider_id": cfg.ID,
		"url":         item.URL,
	})

	doc, body, err := s.fetchArticle(ctx, cfg, item.URL, workerID)
	if err != nil {
		s.log.WarnObj("article fetch failed", "article_error", map[string]any{
			"worker_id":   workerID,
			"provider_id": cfg.ID,
			"url":         item.URL,
			"error":       err.Error(),
		})
		updated.Outcomes.PreviewImage = domain.Failed(err)
		updated.Outcomes.LocalImage = domain.Failed(fmt.Errorf("article unavailable: %w", err))
		updated.Outcomes.Summary = domain.Failed(err)
		return updated
	}

	meta := metaFromDocument(doc)
	if meta.ImageURL == "" {
		updated.Outcomes.PreviewImage = domain.Empty("og:image meta not found")
		updated.Outcomes.LocalImage = domain.Empty("no preview image")
	} else {
		updated.PreviewImageURL = resolveURL(meta.ImageURL, item.URL)
		updated.Outcomes.PreviewImage = domain.Ok()

		path := filepath.Join(outDir, fmt.Sprintf(imageFileFormat, idx+1))
		if err := s.downloadImage(ctx, cfg, updated.PreviewImageURL, path); err != nil {
			s.log.WarnObj("image download failed", "image_error", map[string]any{
				"worker_id": workerID,
				"url":       item.URL,
				"image_url": updated.PreviewImageURL,
				"error":     err.Error(),
			})
			updated.Outcomes.LocalImage = domain.Failed(err)
		} else {
			updated.LocalImagePath = path
			updated.Outcomes.LocalImage = domain.Ok()
		}
	}

	text := summaryText(doc, s.opts.SummarySelector)
	if text == "" {
		text = readableText(body, item.URL)
	}
	if text == "" {
		updated.Outcomes.Summary = domain.Empty("no paragraph text in article")
	} else {
		updated.Summary = Truncate(text, s.opts.SummaryMaxLen)
		updated.Outcomes.Summary = domain.Ok()
	}

	return updated
}

// fetchArticle downloads and parses an article page.
func (s *Scraper) fetchArticle(ctx context.Context, cfg providers.Provider, pageURL string, workerID int) (*goquery.Document, []byte, error) {
	resp, err := s.client.Get(ctx, pageURL, providers.Headers(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return nil, nil, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id":   workerID,
			"provider_id": cfg.ID,
			"url":         pageURL,
			"original":    len(body),
			"kept":        maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, body, nil
}

// downloadImage stores the image at path. Anything but a 200 with a body is
// an error and leaves no file behind.
func (s *Scraper) downloadImage(ctx context.Context, cfg providers.Provider, imageURL, path string) error {
	resp, err := s.client.Get(ctx, imageURL, providers.Headers(cfg))
	if err != nil {
		return fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("image returned status %d", resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return errors.New("image body is empty")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}
	return metaFromDocument(doc), nil
}

// metaFromDocument reads open-graph metadata. The HTML parser already handles
// attribute order, quoting and entities; residual "&amp;" left by pages that
// double-escape their image URLs is unescaped as well.
func metaFromDocument(doc *goquery.Document) pageMeta {
	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			extract(`meta[name="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		ImageURL: strings.ReplaceAll(firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="og:image"]`),
		), "&amp;", "&"),
	}
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title    string
	ImageURL string
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
