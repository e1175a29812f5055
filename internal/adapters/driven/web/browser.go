package web

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// BrowserConfig configures headless Chrome.
type BrowserConfig struct {
	// ExecPath overrides Chrome discovery.
	ExecPath string
	// UserAgent is sent with every navigation.
	UserAgent string
	// WaitTimeout bounds the wait for the body element.
	WaitTimeout time.Duration
	// SettleDelay lets scripts finish rendering after the body is ready.
	SettleDelay time.Duration
}

// BrowserFetcher renders pages in headless Chrome.
// A new browser is started for every fetch.
type BrowserFetcher struct {
	cfg BrowserConfig
}

var _ driven.PageFetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher creates a browser fetcher, filling zero values from domain defaults.
func NewBrowserFetcher(cfg BrowserConfig) *BrowserFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = domain.DefaultBrowserWait
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = domain.DefaultBrowserSettle
	}
	return &BrowserFetcher{cfg: cfg}
}

// Name returns "browser".
func (f *BrowserFetcher) Name() string {
	return "browser"
}

func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(f.cfg.UserAgent),
	)
	if f.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.cfg.ExecPath))
	}
	return opts
}

// Fetch navigates to url, waits for the body and returns the rendered HTML.
// Failures to start Chrome return domain.ErrSourceUnavailable.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := f.cfg.WaitTimeout + f.cfg.SettleDelay + 30*time.Second
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		waitBody(f.cfg.WaitTimeout),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: browser fetch %s: %v", domain.ErrSourceUnavailable, url, err)
	}

	logger.Debug("Rendered %d bytes from %s", len(html), url)
	return &driven.FetchedPage{URL: url, StatusCode: 200, HTML: html}, nil
}

// waitBody waits up to d for the body element.
func waitBody(d time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return chromedp.WaitReady("body", chromedp.ByQuery).Do(waitCtx)
	}
}
