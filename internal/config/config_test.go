package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsreel/internal/slides"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "newsreel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "nate", cfg.Ranking.Provider)
	assert.Equal(t, 6, cfg.Ranking.Take)
	assert.Equal(t, 6, cfg.Ranking.TitleMinChars)
	assert.True(t, cfg.Ranking.PreviousDayFallback)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 30, cfg.Summary.MaxLen)
	assert.Equal(t, 6, cfg.Timing.IntroSeconds)
	assert.Equal(t, 6, cfg.Timing.ClosingSeconds)
	assert.Equal(t, 22, cfg.Timing.DefaultItemSeconds)
	assert.Equal(t, slides.DefaultConfig(), cfg.Slides)
	assert.True(t, cfg.Fonts.Strict)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, "Dalsu", cfg.Output.Prefix)
	assert.Equal(t, "달수 뉴스룸", cfg.Briefing.Intro.Title)
	assert.NotEmpty(t, cfg.Briefing.Script.IntroLines)

	p, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, providers.NateProvider().SourceURL, p.SourceURL)
}

func TestLoadFileOverridesAndProviders(t *testing.T) {
	path := writeConfig(t, `
ranking:
  provider: Sitemap
  take: 4
http:
  timeout: 5s
  user_agent: TestAgent/1.0
providers:
  - id: sitemap
    type: google-news
    source_url: https://example.com/sitemap.xml
  - id: nate
    type: html-ranking
    source_url: https://mirror.example.com/rank?date={date}
    container_selector: div.ranknews
timing:
  item_seconds: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sitemap", cfg.Ranking.Provider)
	assert.Equal(t, 4, cfg.Ranking.Take)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 10, cfg.Timing.DefaultItemSeconds)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "https://mirror.example.com/rank?date={date}", cfg.Providers[0].SourceURL)

	p, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, providers.ProviderTypeGoogleNews, p.Type)
	assert.Equal(t, "TestAgent/1.0", p.UserAgent)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEWSREEL_RANKING_TAKE", "3")
	t.Setenv("NEWSREEL_OUTPUT_PREFIX", "Morning")
	t.Setenv("NEWSREEL_RANKING_PREVIOUS_DAY_FALLBACK", "false")

	cfg, err := Load(writeConfig(t, "ranking:\n  take: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Ranking.Take)
	assert.Equal(t, "Morning", cfg.Output.Prefix)
	assert.False(t, cfg.Ranking.PreviousDayFallback)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "ranking:\n  provider: missing\n"},
		{"zero take", "ranking:\n  take: 0\n"},
		{"bad timezone", "ranking:\n  timezone: Nowhere/Land\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad background", "slides:\n  background: blue\n"},
		{"zero fps", "video:\n  fps: 0\n"},
		{"negative timing", "timing:\n  intro_seconds: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestPublisherConfigsMergesFileAndInline(t *testing.T) {
	dir := t.TempDir()
	pubFile := filepath.Join(dir, "publishers.yaml")
	require.NoError(t, os.WriteFile(pubFile, []byte(`
publishers:
  - id: file-hook
    type: http
    http:
      url: https://hooks.example.com/file
  - id: off
    type: http
    enabled: false
    http:
      url: https://hooks.example.com/off
`), 0o644))

	cfg, err := Load(writeConfig(t, `
publishers:
  file: `+pubFile+`
  entries:
    - id: inline-hook
      type: http
      http:
        url: https://hooks.example.com/inline
`))
	require.NoError(t, err)

	pubs, err := cfg.PublisherConfigs()
	require.NoError(t, err)
	ids := make([]string, 0, len(pubs))
	for _, p := range pubs {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"inline-hook", "file-hook"}, ids)
}

func TestPublisherConfigsEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, "output:\n  dir: out\n"))
	require.NoError(t, err)
	pubs, err := cfg.PublisherConfigs()
	require.NoError(t, err)
	assert.Empty(t, pubs)
}

func TestLocation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "ranking:\n  timezone: UTC\n"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.Location())
}
