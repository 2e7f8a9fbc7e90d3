// Package scraper fetches public job listing pages politely and parses the
// job cards they contain.
//
// Politeness is enforced three ways: a cap on concurrent fetches shared by
// every call on a Scraper, a randomized delay before each fetch derived from a
// requests-per-minute budget, and a per-host token bucket with the same
// budget. When proxies are configured each fetch picks one at random.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"referralflow/pkg/metrics"
	"referralflow/pkg/serrors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultConcurrency       = 3
	DefaultRequestsPerMinute = 60
	DefaultMinDelay          = 500 * time.Millisecond
	DefaultTimeout           = 30 * time.Second
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxPageBytes = 5 << 20
)

var (
	// ErrScrape marks a listing page that could not be fetched.
	ErrScrape = serrors.NewKind("SCRAPE")
	// ErrClosed is returned by SearchJobs after Close.
	ErrClosed = errors.New("scraper is closed")
)

// StatusError is returned for non-2xx listing responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Is makes StatusError match ErrScrape.
func (e *StatusError) Is(target error) bool { return target == ErrScrape }

// Options configures a Scraper.
type Options struct {
	// Concurrency caps simultaneous page fetches.
	Concurrency int
	// RequestsPerMinute is the politeness budget. The delay before each fetch
	// is drawn from [MinDelay, max(MinDelay, 60s/RequestsPerMinute)].
	RequestsPerMinute int
	MinDelay          time.Duration
	// Proxies are proxy URLs; one is picked uniformly at random per fetch.
	Proxies   []string
	UserAgent string
	// Timeout bounds each fetch including reading the body.
	Timeout time.Duration
	// Transport replaces the default transport. Proxies are then applied by
	// the caller's transport through ProxyFromRequest.
	Transport http.RoundTripper
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if o.MinDelay <= 0 {
		o.MinDelay = DefaultMinDelay
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	return o
}

// Scraper fetches listing pages. One Scraper is created per pipeline run and
// closed when the run ends.
type Scraper struct {
	opts      Options
	proxies   []*url.URL
	client    *http.Client
	transport *http.Transport
	sem       *semaphore.Weighted
	hosts     *HostLimiter
	closed    atomic.Bool
}

// New validates opts and builds a Scraper.
func New(opts Options) (*Scraper, error) {
	opts = opts.withDefaults()

	proxies := make([]*url.URL, 0, len(opts.Proxies))
	for _, p := range opts.Proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, serrors.With(serrors.ErrBadRequest, "invalid proxy address %q", p)
		}
		proxies = append(proxies, u)
	}

	s := &Scraper{
		opts:    opts,
		proxies: proxies,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		hosts:   NewHostLimiter(float64(opts.RequestsPerMinute)/60, opts.Concurrency),
	}

	rt := opts.Transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = ProxyFromRequest
		t.MaxIdleConnsPerHost = opts.Concurrency
		s.transport = t
		rt = t
	}
	s.client = &http.Client{Transport: rt, Timeout: opts.Timeout}

	return s, nil
}

// Close releases idle connections. It is safe to call more than once.
func (s *Scraper) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.transport != nil {
		s.transport.CloseIdleConnections()
	} else {
		s.client.CloseIdleConnections()
	}

	return nil
}

type proxyKey struct{}

// ProxyFromRequest returns the proxy chosen for req, or nil for a direct
// connection. It has the signature of http.Transport.Proxy.
func ProxyFromRequest(req *http.Request) (*url.URL, error) {
	u, _ := req.Context().Value(proxyKey{}).(*url.URL)

	return u, nil
}

func (s *Scraper) pickProxy() *url.URL {
	if len(s.proxies) == 0 {
		return nil
	}

	return s.proxies[rand.IntN(len(s.proxies))] //nolint: gosec
}

// PolitenessDelay returns a random delay in [MinDelay, max(MinDelay, 60s/rpm)].
func (s *Scraper) PolitenessDelay() time.Duration {
	lo := s.opts.MinDelay
	hi := time.Minute / time.Duration(s.opts.RequestsPerMinute)
	if hi <= lo {
		return lo
	}

	return lo + rand.N(hi-lo+1) //nolint: gosec
}

type pageResult struct {
	url      string
	postings []domain.JobPosting
	err      error
}

// SearchJobs fetches every URL concurrently and returns up to maxResults
// postings. Pages contribute postings in the order they complete, and within
// a page in document order. Once maxResults postings are collected the
// remaining fetches are cancelled. A failing page is logged and contributes
// nothing; an error is returned only when ctx ends or the scraper is closed.
func (s *Scraper) SearchJobs(ctx context.Context, urls []string, maxResults int) ([]domain.JobPosting, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if maxResults <= 0 || len(urls) == 0 {
		return nil, nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan pageResult, len(urls))
	var g errgroup.Group
	for _, u := range urls {
		g.Go(func() error {
			postings, err := s.fetch(fetchCtx, u)
			results <- pageResult{url: u, postings: postings, err: err}

			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var out []domain.JobPosting
	for res := range results {
		if len(out) >= maxResults {
			continue
		}
		if res.err != nil {
			if fetchCtx.Err() == nil {
				logger.Warn(ctx, "listing page failed", zap.String("url", res.url), zap.Error(res.err))
			}

			continue
		}
		out = append(out, res.postings...)
		if len(out) >= maxResults {
			cancel()
		}
	}

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	if err := ctx.Err(); err != nil && len(out) < maxResults {
		return out, err
	}

	return out, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]domain.JobPosting, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	t := time.NewTimer(s.PolitenessDelay())
	select {
	case <-ctx.Done():
		t.Stop()

		return nil, ctx.Err()
	case <-t.C:
	}
	if err := s.hosts.WaitURL(ctx, pageURL); err != nil {
		return nil, err
	}

	postings, err := s.get(ctx, pageURL)
	switch {
	case err != nil && ctx.Err() != nil:
		metrics.FetchFinished(ctx, metrics.OutcomeSkipped, 0)
	case err != nil:
		metrics.FetchFinished(ctx, metrics.OutcomeFailure, 0)
	default:
		metrics.FetchFinished(ctx, metrics.OutcomeSuccess, len(postings))
	}

	return postings, err
}

func (s *Scraper) get(ctx context.Context, pageURL string) ([]domain.JobPosting, error) {
	proxy := s.pickProxy()
	reqCtx := ctx
	if proxy != nil {
		reqCtx = context.WithValue(ctx, proxyKey{}, proxy)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, serrors.Wrap(ErrScrape, err, "could not create request for %s", pageURL)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", pageURL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	postings, err := ParseListings(io.LimitReader(resp.Body, maxPageBytes), pageURL)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		logger.Warn(ctx, "no job cards matched, page structure may have changed", zap.String("url", pageURL))
	}

	return postings, nil
}
