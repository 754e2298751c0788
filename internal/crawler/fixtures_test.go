package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Adda-Baaj/newsreel/internal/domain"
	"github.com/Adda-Baaj/newsreel/pkg/httpclient"
	"github.com/Adda-Baaj/newsreel/pkg/providers"
)

// fakeResponse is a canned HTTP response.
type fakeResponse struct {
	status int
	body   []byte
	delay  time.Duration
}

func (r fakeResponse) StatusCode() int { return r.status }
func (r fakeResponse) Body() []byte    { return r.body }

// fakeClient serves canned pages by URL; unknown URLs fail like a dead host.
type fakeClient struct {
	mu    sync.Mutex
	pages map[string]fakeResponse
	calls map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{pages: map[string]fakeResponse{}, calls: map[string]int{}}
}

func (c *fakeClient) page(url string, status int, body string) *fakeClient {
	c.pages[url] = fakeResponse{status: status, body: []byte(body)}
	return c
}

func (c *fakeClient) Get(ctx context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	c.mu.Lock()
	c.calls[url]++
	resp, ok := c.pages[url]
	c.mu.Unlock()

	if !ok {
		return nil, errors.New("dial tcp: connection refused")
	}
	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp, nil
}

func (c *fakeClient) Do(ctx context.Context, _, url string, headers map[string]string, _ []byte) (httpclient.Response, error) {
	return c.Get(ctx, url, headers)
}

func (c *fakeClient) callCount(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[url]
}

// stubFetcher returns fixed candidates per ranking date.
type stubFetcher struct {
	mu     sync.Mutex
	byDate map[string][]domain.Candidate
	errs   map[string]error
	dates  []string
}

const stubType = "stub"

func (s *stubFetcher) ID() string { return stubType }

func (s *stubFetcher) Fetch(_ context.Context, _ providers.Provider, q providers.Query) ([]domain.Candidate, error) {
	key := q.Date.Format("20060102")
	s.mu.Lock()
	s.dates = append(s.dates, key)
	s.mu.Unlock()
	return s.byDate[key], s.errs[key]
}

func stubProvider() providers.Provider {
	return providers.Provider{ID: "stub", Type: stubType}
}
