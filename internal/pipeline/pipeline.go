// Package pipeline runs one daily briefing end to end: rank, enrich, time,
// render the script, subtitles and slides, then assemble the video.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adda-Baaj/newsreel/internal/config"
	"github.com/Adda-Baaj/newsreel/internal/crawler"
	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/internal/history"
	"github.com/Adda-Baaj/newsreel/internal/logger"
	"github.com/Adda-Baaj/newsreel/internal/render"
	"github.com/Adda-Baaj/newsreel/internal/slides"
	"github.com/Adda-Baaj/newsreel/internal/timeline"
	"github.com/Adda-Baaj/newsreel/internal/video"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
	"github.com/Adda-Baaj/newsreel/pkg/publishers"
)

const (
	dateLayout       = "20060102"
	slidesDir        = "slides"
	slideFileFormat  = "slide_%03d.png"
	defaultRenderCap = 4
)

// Recorder stores a finished run.
type Recorder interface {
	Record(rec history.RunRecord) error
}

// Deps are the collaborators of a pipeline. Nil fields fall back to the
// production implementation derived from the configuration.
type Deps struct {
	Client     httpclient.Client
	Registry   providers.FetcherRegistry
	Fonts      slides.FontProvider
	Encoder    video.Encoder
	Prober     video.Prober
	History    Recorder
	Publishers []publishers.Publisher
	Log        logger.Logger
	Now        func() time.Time
	NewID      func() string
}

// Result describes the artifacts of one run.
type Result struct {
	RunID        string
	RunDate      string
	Provider     string
	Dir          string
	ScriptPath   string
	SubtitlePath string
	VideoPath    string
	SlidePaths   []string
	Items        []domain.NewsItem
	Timeline     timeline.Timeline
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Pipeline owns the configured stages.
type Pipeline struct {
	cfg       *config.Config
	provider  providers.Provider
	ranker    *crawler.Ranker
	scraper   *crawler.Scraper
	fonts     slides.FontProvider
	renderer  *slides.Renderer
	assembler *video.Assembler
	history   Recorder
	pubs      []publishers.Publisher
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// New builds a pipeline from cfg. Configuration problems that can be caught
// before any network traffic, like a bad gagline template, fail here.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline config is nil")
	}
	log := logger.Ensure(deps.Log)

	provider, err := cfg.Provider()
	if err != nil {
		return nil, err
	}

	client := deps.Client
	if client == nil {
		client = httpclient.NewRestyClient(cfg.HTTP.Timeout)
	}
	registry := deps.Registry
	if registry == nil {
		registry = providers.DefaultFetcherRegistry(client)
	}

	gagline, err := crawler.NewGagline(cfg.Briefing.Gagline)
	if err != nil {
		return nil, err
	}

	fonts := deps.Fonts
	if fonts == nil {
		fonts = slides.NewFileFontProvider(cfg.Fonts.Candidates, cfg.Fonts.Strict)
	}
	renderer, err := slides.NewRenderer(cfg.Slides, fonts, log)
	if err != nil {
		return nil, fmt.Errorf("slide renderer: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}

	return &Pipeline{
		cfg:      cfg,
		provider: provider,
		ranker: crawler.NewRanker(registry, client, log, provider, crawler.RankerOptions{
			Take:                cfg.Ranking.Take,
			TitleMinChars:       cfg.Ranking.TitleMinChars,
			PreviousDayFallback: cfg.Ranking.PreviousDayFallback,
		}),
		scraper: crawler.NewScraper(client, log, crawler.ScraperOptions{
			Workers:         cfg.Enrich.Workers,
			SummarySelector: cfg.Summary.Selector,
			SummaryMaxLen:   cfg.Summary.MaxLen,
			Gagline:         gagline,
		}),
		fonts:     fonts,
		renderer:  renderer,
		assembler: video.NewAssembler(cfg.Video, deps.Encoder, deps.Prober, log),
		history:   deps.History,
		pubs:      deps.Publishers,
		log:       log,
		now:       now,
		newID:     newID,
	}, nil
}

// Run produces the briefing for date. Per-item enrichment failures are
// recorded on the items; ranking, font, write and encode failures abort the
// run. History and publishing happen afterwards and never fail it.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (*Result, error) {
	res := &Result{
		RunID:     p.newID(),
		RunDate:   date.Format(dateLayout),
		Provider:  p.provider.ID,
		StartedAt: p.now(),
	}
	p.log.InfoObj("briefing run started", "run", map[string]any{
		"run_id":   res.RunID,
		"run_date": res.RunDate,
		"provider": res.Provider,
	})

	if loader, ok := p.fonts.(interface{ Load() error }); ok {
		if err := loader.Load(); err != nil {
			return nil, err
		}
	}

	items, err := p.ranker.Extract(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("extract ranking: %w", err)
	}

	res.Dir = filepath.Join(p.cfg.Output.Dir, res.RunDate)
	if err := os.MkdirAll(filepath.Join(res.Dir, slidesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	items = p.scraper.Enrich(ctx, p.provider, items, res.Dir)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logOutcomes(items)

	items, tl := timeline.Allocate(items, p.cfg.Timing)
	res.Items = items
	res.Timeline = tl

	base := filepath.Join(res.Dir, p.cfg.Output.Prefix+"_"+res.RunDate)
	res.ScriptPath = base + ".md"
	res.SubtitlePath = base + ".srt"
	res.VideoPath = base + ".mp4"

	if err := os.WriteFile(res.ScriptPath, render.Script(items, p.cfg.Briefing.Script), 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	srt, err := render.Subtitles(items, tl, p.cfg.Briefing.Subtitles)
	if err != nil {
		return nil, fmt.Errorf("render subtitles: %w", err)
	}
	if err := os.WriteFile(res.SubtitlePath, srt, 0o644); err != nil {
		return nil, fmt.Errorf("write subtitles: %w", err)
	}

	res.SlidePaths, err = p.renderSlides(ctx, items, res.Dir)
	if err != nil {
		return nil, err
	}

	if err := p.assembler.Assemble(ctx, tl, res.SlidePaths, res.VideoPath); err != nil {
		return nil, fmt.Errorf("assemble video: %w", err)
	}
	res.FinishedAt = p.now()

	p.log.InfoObj("briefing run finished", "run", map[string]any{
		"run_id":        res.RunID,
		"items":         len(items),
		"total_seconds": tl.TotalSeconds(),
		"video":         res.VideoPath,
	})

	p.record(res)
	p.publish(ctx, res)
	return res, nil
}

// Slides lays out one slide per timeline segment: intro, items, outro.
func (p *Pipeline) Slides(items []domain.NewsItem) []slides.Slide {
	out := make([]slides.Slide, 0, len(items)+2)
	intro := p.cfg.Briefing.Intro
	out = append(out, slides.Slide{ImagePath: intro.Image, Title: intro.Title, Caption: intro.Caption})
	for _, item := range items {
		out = append(out, slides.Slide{
			ImagePath: item.LocalImagePath,
			Caption:   joinLines(item.Summary, item.Gagline),
		})
	}
	outro := p.cfg.Briefing.Outro
	out = append(out, slides.Slide{ImagePath: outro.Image, Title: outro.Title, Caption: outro.Caption})
	return out
}

func (p *Pipeline) renderSlides(ctx context.Context, items []domain.NewsItem, dir string) ([]string, error) {
	layout := p.Slides(items)
	paths := make([]string, len(layout))

	limit := p.cfg.Output.RenderLimit
	if limit <= 0 {
		limit = defaultRenderCap
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, s := range layout {
		paths[i] = filepath.Join(dir, slidesDir, fmt.Sprintf(slideFileFormat, i))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.renderer.RenderToFile(s, paths[i]); err != nil {
				return fmt.Errorf("render slide %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (p *Pipeline) logOutcomes(items []domain.NewsItem) {
	for _, item := range items {
		o := item.Outcomes
		if o.PreviewImage.OK() && o.LocalImage.OK() && o.Summary.OK() {
			continue
		}
		p.log.WarnObj("item enriched partially", "item", map[string]any{
			"rank":     item.Rank,
			"url":      item.URL,
			"outcomes": o,
		})
	}
}

func (p *Pipeline) record(res *Result) {
	if p.history == nil {
		return
	}
	titles := make([]string, len(res.Items))
	for i, item := range res.Items {
		titles[i] = item.Title
	}
	err := p.history.Record(history.RunRecord{
		RunID:        res.RunID,
		RunDate:      res.RunDate,
		ProviderID:   res.Provider,
		ItemCount:    len(res.Items),
		Titles:       titles,
		TotalSeconds: res.Timeline.TotalSeconds(),
		OutputDir:    res.Dir,
		VideoPath:    res.VideoPath,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
	})
	if err != nil {
		p.log.WarnObj("history record failed", "error", err.Error())
	}
}

func (p *Pipeline) publish(ctx context.Context, res *Result) {
	if len(p.pubs) == 0 {
		return
	}
	evt := publishers.Event{
		ID:         p.newID(),
		Type:       publishers.EventTypeBriefingGenerated,
		ProviderID: res.Provider,
		RunDate:    res.RunDate,
		Items:      res.Items,
		Artifacts: publishers.Artifacts{
			Directory: res.Dir,
			Script:    res.ScriptPath,
			Subtitles: res.SubtitlePath,
			Video:     res.VideoPath,
		},
		TotalSeconds: res.Timeline.TotalSeconds(),
		GeneratedAt:  res.FinishedAt,
	}
	if err := publishers.PublishAll(ctx, p.pubs, evt, p.log); err != nil {
		p.log.WarnObj("publishing run event failed", "error", err.Error())
	}
}

func joinLines(lines ...string) string {
	var kept []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
