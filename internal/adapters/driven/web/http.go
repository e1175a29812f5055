package web

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// maxBodyBytes caps the size of a fetched page.
const maxBodyBytes = 20 << 20

// HTTPConfig configures the HTTP fetcher.
type HTTPConfig struct {
	UserAgent          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	RequestsPerSecond  float64
	Burst              int
}

// HTTPFetcher retrieves pages with plain GET requests.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *RateLimiter
}

var _ driven.PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher from cfg, filling zero values from domain defaults.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = domain.DefaultWebTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // procurement sites often have broken chains
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		userAgent: cfg.UserAgent,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// Name returns "http".
func (f *HTTPFetcher) Name() string {
	return "http"
}

// Fetch GETs the page. Non-2xx responses return domain.ErrSourceUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrSourceUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		d := f.limiter.Backoff(resp.Header.Get("Retry-After"))
		logger.Warn("Rate limited by %s, backing off for %s", req.URL.Host, d)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: fetch %s: HTTP %d", domain.ErrSourceUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrSourceUnavailable, url, err)
	}

	logger.Debug("Fetched %d bytes from %s", len(body), url)
	return &driven.FetchedPage{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}
