package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
)

var runDate = time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)

func TestExtractKeepsFirstSixOfEightAnchors(t *testing.T) {
	ids := []string{"a1", "a2", "a1", "a3", "a4", "a5", "a6", "a7"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var b strings.Builder
		b.WriteString(`<html><body><div class="ranknews">`)
		for i, id := range ids {
			fmt.Fprintf(&b, `<a href="/view/%s">Headline number %d for %s</a>`, id, i+1, id)
		}
		b.WriteString(`</div></body></html>`)
		_, _ = w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	provider := providers.Provider{
		ID:                "fixture",
		Type:              providers.ProviderTypeHTMLRanking,
		SourceURL:         srv.URL + "/rank?date={date}",
		BaseURL:           srv.URL,
		ContainerSelector: "div.ranknews",
		ArticlePattern:    regexp.QuoteMeta(srv.URL) + `/view/[0-9A-Za-z]+`,
	}
	client := httpclient.NewRestyClient(5 * time.Second)
	r := NewRanker(providers.DefaultFetcherRegistry(client), client, nil, provider, RankerOptions{Take: 6})

	items, err := r.Extract(context.Background(), runDate)

	require.NoError(t, err)
	require.Len(t, items, 6)
	wantIDs := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	seen := map[string]bool{}
	for i, it := range items {
		assert.Equal(t, i+1, it.Rank)
		assert.Equal(t, srv.URL+"/view/"+wantIDs[i], it.URL)
		assert.False(t, seen[it.URL], "duplicate url %s", it.URL)
		seen[it.URL] = true
	}
	assert.Equal(t, "Headline number 1 for a1", items[0].Title, "first-seen title wins")
	assert.Equal(t, "Headline number 4 for a3", items[2].Title)
}

func TestExtractBackfillsShortTitles(t *testing.T) {
	client := newFakeClient().
		page("https://n.test/view/og", 200, `<html><head><meta content="Full og title" property="og:title"><title>Ignored</title></head></html>`).
		page("https://n.test/view/plain", 200, `<html><head><title> Page title only </title></head></html>`).
		page("https://n.test/view/bare", 200, `<html><body>nothing</body></html>`).
		page("https://n.test/view/gone", 404, "not found")
	fetcher := &stubFetcher{byDate: map[string][]domain.Candidate{
		"20240517": {
			{Title: "속보", URL: "https://n.test/view/og"},
			{Title: "", URL: "https://n.test/view/plain"},
			{Title: "짧음", URL: "https://n.test/view/bare"},
			{Title: "", URL: "https://n.test/view/gone"},
			{Title: "Long enough title", URL: "https://n.test/view/long"},
		},
	}}
	r := NewRanker(providers.NewFetcherRegistry(fetcher), client, nil, stubProvider(), RankerOptions{Take: 6, TitleMinChars: 6})

	items, err := r.Extract(context.Background(), runDate)

	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Full og title", items[0].Title)
	assert.Equal(t, "Page title only", items[1].Title)
	assert.Equal(t, "짧음", items[2].Title, "short title kept when article has no metadata")
	assert.Equal(t, domain.OutcomeEmpty, items[2].Outcomes.Title.State)
	assert.Equal(t, "Long enough title", items[3].Title)
	assert.Equal(t, 4, items[3].Rank)
	assert.Equal(t, 0, client.callCount("https://n.test/view/long"), "long titles are not refetched")
	assert.Equal(t, 1, client.callCount("https://n.test/view/gone"))
}

func TestExtractStopsAtTakeWithoutFetchingRest(t *testing.T) {
	client := newFakeClient()
	fetcher := &stubFetcher{byDate: map[string][]domain.Candidate{
		"20240517": {
			{Title: "Headline one", URL: "https://n.test/1"},
			{Title: "Headline two", URL: "https://n.test/2"},
			{Title: "", URL: "https://n.test/3"},
		},
	}}
	r := NewRanker(providers.NewFetcherRegistry(fetcher), client, nil, stubProvider(), RankerOptions{Take: 2})

	items, err := r.Extract(context.Background(), runDate)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 0, client.callCount("https://n.test/3"))
}

func TestExtractFallsBackToPreviousDay(t *testing.T) {
	fetcher := &stubFetcher{
		byDate: map[string][]domain.Candidate{
			"20240516": {{Title: "Yesterday's headline", URL: "https://n.test/y"}},
		},
	}
	r := NewRanker(providers.NewFetcherRegistry(fetcher), newFakeClient(), nil, stubProvider(), RankerOptions{PreviousDayFallback: true})

	items, err := r.Extract(context.Background(), runDate)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://n.test/y", items[0].URL)
	assert.Equal(t, []string{"20240517", "20240516"}, fetcher.dates)
}

func TestExtractWithoutFallbackFailsOnEmptyDay(t *testing.T) {
	fetcher := &stubFetcher{
		byDate: map[string][]domain.Candidate{
			"20240516": {{Title: "Yesterday's headline", URL: "https://n.test/y"}},
		},
	}
	r := NewRanker(providers.NewFetcherRegistry(fetcher), newFakeClient(), nil, stubProvider(), RankerOptions{})

	_, err := r.Extract(context.Background(), runDate)

	require.ErrorIs(t, err, ErrNoItems)
	assert.Equal(t, []string{"20240517"}, fetcher.dates)
}

func TestExtractWrapsFetchErrors(t *testing.T) {
	boom := errors.New("ranking page status 503")
	fetcher := &stubFetcher{errs: map[string]error{"20240517": boom, "20240516": boom}}
	r := NewRanker(providers.NewFetcherRegistry(fetcher), newFakeClient(), nil, stubProvider(), RankerOptions{PreviousDayFallback: true})

	_, err := r.Extract(context.Background(), runDate)

	require.ErrorIs(t, err, ErrNoItems)
	require.ErrorIs(t, err, boom)
}

func TestExtractUnknownProviderType(t *testing.T) {
	r := NewRanker(providers.NewFetcherRegistry(), newFakeClient(), nil, stubProvider(), RankerOptions{})

	_, err := r.Extract(context.Background(), runDate)

	require.ErrorIs(t, err, ErrNoItems)
	assert.Contains(t, err.Error(), "no fetcher registered")
}
