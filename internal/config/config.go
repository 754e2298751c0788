// Package config loads newsreel settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/newsreel/internal/render"
	"github.com/Adda-Baaj/newsreel/internal/slides"
	"github.com/Adda-Baaj/newsreel/internal/timeline"
	"github.com/Adda-Baaj/newsreel/internal/video"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
	"github.com/Adda-Baaj/newsreel/pkg/publishers"
)

// EnvPrefix prefixes every environment override, e.g. NEWSREEL_RANKING_TAKE.
const EnvPrefix = "NEWSREEL"

// Config is the complete newsreel configuration.
type Config struct {
	Ranking    RankingConfig        `mapstructure:"ranking"`
	Providers  []providers.Provider `mapstructure:"providers"`
	HTTP       HTTPConfig           `mapstructure:"http"`
	Enrich     EnrichConfig         `mapstructure:"enrich"`
	Summary    SummaryConfig        `mapstructure:"summary"`
	Timing     timeline.Config      `mapstructure:"timing"`
	Briefing   BriefingConfig       `mapstructure:"briefing"`
	Slides     slides.Config        `mapstructure:"slides"`
	Fonts      FontsConfig          `mapstructure:"fonts"`
	Video      video.Config         `mapstructure:"video"`
	Output     OutputConfig         `mapstructure:"output"`
	History    HistoryConfig        `mapstructure:"history"`
	Publishers PublishersConfig     `mapstructure:"publishers"`
	Schedule   ScheduleConfig       `mapstructure:"schedule"`
	Logging    LoggingConfig        `mapstructure:"logging"`
}

// RankingConfig selects the ranking source and how much of it to keep.
type RankingConfig struct {
	Provider            string `mapstructure:"provider"`
	Take                int    `mapstructure:"take"`
	TitleMinChars       int    `mapstructure:"title_min_chars"`
	PreviousDayFallback bool   `mapstructure:"previous_day_fallback"`
	Timezone            string `mapstructure:"timezone"`
}

// HTTPConfig tunes outbound requests.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// EnrichConfig sizes the article worker pool.
type EnrichConfig struct {
	Workers int `mapstructure:"workers"`
}

// SummaryConfig controls summary extraction.
type SummaryConfig struct {
	Selector string `mapstructure:"selector"`
	MaxLen   int    `mapstructure:"max_len"`
}

// SlideText is the fixed content of the intro or outro slide.
type SlideText struct {
	Image   string `mapstructure:"image"`
	Title   string `mapstructure:"title"`
	Caption string `mapstructure:"caption"`
}

// BriefingConfig holds the anchor's wording.
type BriefingConfig struct {
	Gagline   string              `mapstructure:"gagline"`
	Script    render.ScriptText   `mapstructure:"script"`
	Subtitles render.SubtitleText `mapstructure:"subtitles"`
	Intro     SlideText           `mapstructure:"intro"`
	Outro     SlideText           `mapstructure:"outro"`
}

// FontsConfig lists font files to try, in order.
type FontsConfig struct {
	Candidates []string `mapstructure:"candidates"`
	Strict     bool     `mapstructure:"strict"`
}

// OutputConfig places the artifacts.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	Prefix      string `mapstructure:"prefix"`
	RenderLimit int    `mapstructure:"render_limit"`
}

// HistoryConfig enables the run log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// PublishersConfig declares event sinks inline, in a separate file, or both.
type PublishersConfig struct {
	File    string                       `mapstructure:"file"`
	Entries []publishers.PublisherConfig `mapstructure:"entries"`
}

// ScheduleConfig drives the daily scheduler.
type ScheduleConfig struct {
	Time       string `mapstructure:"time"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// LoggingConfig selects level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. An explicit cfgFile must exist; otherwise
// newsreel.yaml is looked up in "." and $HOME/.config/newsreel and may be
// absent. Variables from a .env file are loaded first and never override
// the real environment.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("newsreel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/newsreel")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ranking.provider", "nate")
	v.SetDefault("ranking.take", 6)
	v.SetDefault("ranking.title_min_chars", 6)
	v.SetDefault("ranking.previous_day_fallback", true)
	v.SetDefault("ranking.timezone", "Asia/Seoul")

	v.SetDefault("http.timeout", 20*time.Second)
	v.SetDefault("http.user_agent", "Mozilla/5.0 DalsuBot")

	v.SetDefault("enrich.workers", 4)

	v.SetDefault("summary.selector", "div.article p")
	v.SetDefault("summary.max_len", 30)

	v.SetDefault("timing.intro_seconds", timeline.DefaultIntroSeconds)
	v.SetDefault("timing.closing_seconds", timeline.DefaultClosingSeconds)
	v.SetDefault("timing.item_seconds", timeline.DefaultItemSeconds)

	script := render.DefaultScriptText()
	v.SetDefault("briefing.gagline", "오늘도 달수는 쿨~합니다!")
	v.SetDefault("briefing.script.intro_heading", script.IntroHeading)
	v.SetDefault("briefing.script.intro_lines", script.IntroLines)
	v.SetDefault("briefing.script.item_heading", script.ItemHeading)
	v.SetDefault("briefing.script.title_label", script.TitleLabel)
	v.SetDefault("briefing.script.summary_label", script.SummaryLabel)
	v.SetDefault("briefing.script.gagline_label", script.GaglineLabel)
	v.SetDefault("briefing.script.closing_heading", script.ClosingHeading)
	v.SetDefault("briefing.script.closing_lines", script.ClosingLines)
	subs := render.DefaultSubtitleText()
	v.SetDefault("briefing.subtitles.intro_lines", subs.IntroLines)
	v.SetDefault("briefing.subtitles.outro_lines", subs.OutroLines)
	v.SetDefault("briefing.intro.image", "assets/intro.png")
	v.SetDefault("briefing.intro.title", "달수 뉴스룸")
	v.SetDefault("briefing.intro.caption", "오늘의 뉴스를 전해드립니다.")
	v.SetDefault("briefing.outro.image", "assets/outro.png")
	v.SetDefault("briefing.outro.title", "지금까지 달수 뉴스였습니다")
	v.SetDefault("briefing.outro.caption", "내일도 쿨~하게 소식 전해드리겠습니다.")

	sc := slides.DefaultConfig()
	v.SetDefault("slides.width", sc.Width)
	v.SetDefault("slides.height", sc.Height)
	v.SetDefault("slides.background", sc.Background)
	v.SetDefault("slides.image_max_height", sc.ImageMaxHeight)
	v.SetDefault("slides.band_top", sc.BandTop)
	v.SetDefault("slides.band_height", sc.BandHeight)
	v.SetDefault("slides.stroke_width", sc.StrokeWidth)
	v.SetDefault("slides.line_spacing", sc.LineSpacing)
	v.SetDefault("slides.title.x", sc.Title.X)
	v.SetDefault("slides.title.y", sc.Title.Y)
	v.SetDefault("slides.title.size", sc.Title.Size)
	v.SetDefault("slides.title.wrap_width", sc.Title.WrapWidth)
	v.SetDefault("slides.caption.x", sc.Caption.X)
	v.SetDefault("slides.caption.y", sc.Caption.Y)
	v.SetDefault("slides.caption.size", sc.Caption.Size)
	v.SetDefault("slides.caption.wrap_width", sc.Caption.WrapWidth)

	v.SetDefault("fonts.candidates", slides.DefaultFontCandidates())
	v.SetDefault("fonts.strict", true)

	v.SetDefault("video.fps", 30)
	v.SetDefault("video.codec", "libx264")
	v.SetDefault("video.pixel_format", "yuv420p")
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.ffprobe_path", "ffprobe")
	v.SetDefault("video.verify", false)
	v.SetDefault("video.keep_plan", false)

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.prefix", "Dalsu")
	v.SetDefault("output.render_limit", 4)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "out/history.db")

	v.SetDefault("publishers.file", "")

	v.SetDefault("schedule.time", "07:00")
	v.SetDefault("schedule.run_on_start", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// sanitize trims strings and merges the built-in provider catalogue with the
// configured one; configured entries win on id.
func (c *Config) sanitize() {
	c.Ranking.Provider = strings.ToLower(strings.TrimSpace(c.Ranking.Provider))
	c.Ranking.Timezone = strings.TrimSpace(c.Ranking.Timezone)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	c.Output.Prefix = strings.TrimSpace(c.Output.Prefix)
	c.Publishers.File = strings.TrimSpace(c.Publishers.File)
	c.Schedule.Time = strings.TrimSpace(c.Schedule.Time)

	merged := providers.BuiltinProviders()
	for _, p := range c.Providers {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		p.Type = strings.ToLower(strings.TrimSpace(p.Type))
		replaced := false
		for i := range merged {
			if merged[i].ID == p.ID {
				merged[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, p)
		}
	}
	for i := range merged {
		if merged[i].UserAgent == "" {
			merged[i].UserAgent = c.HTTP.UserAgent
		}
	}
	c.Providers = merged
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := c.Provider(); err != nil {
		return err
	}
	if c.Ranking.Take <= 0 {
		return fmt.Errorf("ranking.take must be positive, got %d", c.Ranking.Take)
	}
	if _, err := time.LoadLocation(c.Ranking.Timezone); err != nil {
		return fmt.Errorf("ranking.timezone: %w", err)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Summary.MaxLen <= 0 {
		return fmt.Errorf("summary.max_len must be positive, got %d", c.Summary.MaxLen)
	}
	if c.Timing.IntroSeconds <= 0 || c.Timing.ClosingSeconds <= 0 || c.Timing.DefaultItemSeconds <= 0 {
		return errors.New("timing durations must be positive")
	}
	if c.Slides.Width <= 0 || c.Slides.Height <= 0 {
		return fmt.Errorf("slides canvas %dx%d is invalid", c.Slides.Width, c.Slides.Height)
	}
	if _, err := slides.ParseHexColor(c.Slides.Background); err != nil {
		return fmt.Errorf("slides.background: %w", err)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video.fps must be positive, got %d", c.Video.FPS)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	if c.Output.Prefix == "" {
		return errors.New("output.prefix is required")
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path is required when history is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be console or json)", c.Logging.Format)
	}
	return nil
}

// Provider returns the ranking source selected by ranking.provider.
func (c *Config) Provider() (providers.Provider, error) {
	for _, p := range c.Providers {
		if p.ID == c.Ranking.Provider {
			return p, nil
		}
	}
	return providers.Provider{}, fmt.Errorf("ranking.provider %q is not configured", c.Ranking.Provider)
}

// Location is the time zone that stamps run dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ranking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PublisherConfigs returns the enabled publishers from the inline entries
// and the publishers file.
func (c *Config) PublisherConfigs() ([]publishers.PublisherConfig, error) {
	entries := append([]publishers.PublisherConfig(nil), c.Publishers.Entries...)
	if c.Publishers.File != "" {
		fileReg, err := publishers.LoadRegistry(c.Publishers.File)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileReg.All()...)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	reg, err := publishers.NewConfigRegistry(entries)
	if err != nil {
		return nil, err
	}
	return reg.Enabled(), nil
}
