package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
)

// rankingServer serves a ranking page rendered by page once the server URL is known.
func rankingServer(t *testing.T, page func(base string) string) (*httptest.Server, *string) {
	t.Helper()
	var requested string
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.String()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page(srv.URL)))
	}))
	t.Cleanup(srv.Close)
	return srv, &requested
}

func testProvider(base string) Provider {
	return Provider{
		ID:                "fixture",
		Type:              ProviderTypeHTMLRanking,
		SourceURL:         base + "/rank?date=" + DatePlaceholder,
		BaseURL:           base,
		ContainerSelector: "div.ranknews",
		ArticlePattern:    regexp.QuoteMeta(base) + `/view/[0-9A-Za-z]+`,
	}
}

func TestHTMLRankingFetchReturnsContainerAnchorsInOrder(t *testing.T) {
	srv, requested := rankingServer(t, func(base string) string {
		return `<html><body>
<a href="/view/outside">Outside the container</a>
<div class="ranknews">
  <a href="/view/20240102n001"><span>First</span> <em>headline</em></a>
  <a href="/about">Not an article</a>
  <a href="` + base + `/view/20240102n002?mid=n1006">Second headline here</a>
  <a href="/view/20240102n003#top">Third headline here</a>
</div></body></html>`
	})

	f := NewHTMLRankingFetcher(httpclient.NewRestyClient(5 * time.Second))
	date := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	got, err := f.Fetch(context.Background(), testProvider(srv.URL), Query{Date: date, Take: 3})

	require.NoError(t, err)
	assert.Equal(t, "/rank?date=20240102", *requested)
	assert.Equal(t, []domain.Candidate{
		{Title: "First headline", URL: srv.URL + "/view/20240102n001"},
		{Title: "Second headline here", URL: srv.URL + "/view/20240102n002"},
		{Title: "Third headline here", URL: srv.URL + "/view/20240102n003"},
	}, got)
}

func TestHTMLRankingFetchFallsBackToRawScan(t *testing.T) {
	srv, _ := rankingServer(t, func(base string) string {
		return fmt.Sprintf(`<html><body>
<div class="ranknews"><a href="/view/a1">Only anchor headline</a></div>
<script>var more = ["%[1]s/view/b2", "%[1]s/view/c3", "%[1]s/view/a1"];</script>
</body></html>`, base)
	})

	f := NewHTMLRankingFetcher(httpclient.NewRestyClient(5 * time.Second))
	got, err := f.Fetch(context.Background(), testProvider(srv.URL), Query{Date: time.Now(), Take: 3})

	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Only anchor headline", got[0].Title)
	assert.Equal(t, domain.Candidate{URL: srv.URL + "/view/b2"}, got[1])
	assert.Equal(t, domain.Candidate{URL: srv.URL + "/view/c3"}, got[2])
	assert.Equal(t, srv.URL+"/view/a1", got[3].URL)
}

func TestHTMLRankingFetchReportsHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewHTMLRankingFetcher(httpclient.NewRestyClient(5 * time.Second))
	_, err := f.Fetch(context.Background(), testProvider(srv.URL), Query{Date: time.Now(), Take: 6})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 410")
}

func TestHTMLRankingFetchRejectsBadPattern(t *testing.T) {
	cfg := testProvider("http://example.test")
	cfg.ArticlePattern = "("

	_, err := NewHTMLRankingFetcher(nil).Fetch(context.Background(), cfg, Query{Take: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "article_pattern")
}

func TestAbsURL(t *testing.T) {
	base := "https://news.nate.com"
	cases := []struct {
		in, want string
	}{
		{in: "", want: ""},
		{in: "//news.nate.com/view/1", want: "https://news.nate.com/view/1"},
		{in: "/view/2", want: "https://news.nate.com/view/2"},
		{in: "https://news.nate.com/view/3", want: "https://news.nate.com/view/3"},
		{in: "http://news.nate.com/view/4", want: "http://news.nate.com/view/4"},
		{in: "javascript:void(0)", want: ""},
		{in: "view/5", want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, absURL(tc.in, base), tc.in)
	}
}

func TestCanonicalURLRewritesSchemeAndDropsQuery(t *testing.T) {
	pattern := regexp.MustCompile(NateProvider().ArticlePattern)

	got, ok := canonicalURL("http://news.nate.com/view/20240102n123?mid=n1006", pattern, "https")
	require.True(t, ok)
	assert.Equal(t, "https://news.nate.com/view/20240102n123", got)

	_, ok = canonicalURL("https://news.nate.com/rank", pattern, "https")
	assert.False(t, ok)
}

func TestSelectionTextSkipsScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<p>  Hello <b>brave</b>
<script>var x = 1;</script>new   world </p>`))
	require.NoError(t, err)

	assert.Equal(t, "Hello brave new world", SelectionText(doc.Find("p")))
}

func TestSourceURLForAndHeaders(t *testing.T) {
	p := NateProvider()
	date := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "https://news.nate.com/rank/interest?sc=all&p=day&date=20250309", p.SourceURLFor(date))
	assert.Equal(t, "Mozilla/5.0 DalsuBot", Headers(p)["User-Agent"])

	p.Headers = map[string]string{"User-Agent": "custom", " ": "dropped", "Accept": "text/html"}
	h := Headers(p)
	assert.Equal(t, map[string]string{"User-Agent": "custom", "Accept": "text/html"}, h)
}

func TestRegistrySelectsFetcherByType(t *testing.T) {
	reg := DefaultFetcherRegistry(nil)

	f, err := reg.FetcherFor(NateProvider())
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeHTMLRanking, f.ID())

	f, err = reg.FetcherFor(Provider{ID: "gn", Type: "Google-News"})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeGoogleNews, f.ID())

	_, err = reg.FetcherFor(Provider{ID: "rss", Type: "rss"})
	require.Error(t, err)

	_, err = reg.FetcherFor(Provider{ID: "untyped"})
	require.Error(t, err)
}
