package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pfrederiksen/masters-pool/internal/logger"
)

const (
	PageLoadTimeout = 120 * time.Second
	// settleDelay gives client-side rendering a moment after the table appears.
	settleDelay = 2 * time.Second
)

// BrowserFetcher renders the leaderboard in headless Chrome before parsing it,
// for pages that build the standings table client-side.
type BrowserFetcher struct {
	url             string
	execPath        string
	userAgent       string
	pageLoadTimeout time.Duration
	settle          time.Duration
	roundDetail     bool
}

// BrowserOption configures a BrowserFetcher
type BrowserOption func(*BrowserFetcher)

// WithBrowserURL points the fetcher at a different leaderboard page
func WithBrowserURL(url string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.url = url
	}
}

// WithExecPath selects the Chrome binary; empty uses chromedp's lookup
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.execPath = path
	}
}

// WithBrowserUserAgent overrides the browser's User-Agent
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.userAgent = ua
	}
}

// WithPageLoadTimeout bounds navigation plus waiting for the table
func WithPageLoadTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) {
		b.pageLoadTimeout = d
	}
}

// WithBrowserRoundDetail also extracts the "today" and "thru" columns
func WithBrowserRoundDetail(enabled bool) BrowserOption {
	return func(b *BrowserFetcher) {
		b.roundDetail = enabled
	}
}

// NewBrowserFetcher creates a BrowserFetcher
func NewBrowserFetcher(opts ...BrowserOption) *BrowserFetcher {
	b := &BrowserFetcher{
		url:             DefaultURL,
		userAgent:       UserAgent,
		pageLoadTimeout: PageLoadTimeout,
		settle:          settleDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name identifies the fetcher in logs and metrics
func (b *BrowserFetcher) Name() string {
	return "browser"
}

// Fetch renders and parses the leaderboard
func (b *BrowserFetcher) Fetch(ctx context.Context) Result {
	html, err := b.render(ctx)
	if err == nil {
		var scores []PlayerScore
		scores, err = parseLeaderboard(strings.NewReader(html), b.roundDetail)
		if err == nil {
			return Result{Scores: scores}
		}
	}

	logger.Warn("Leaderboard fetch failed", logger.Fields{
		"fetcher": b.Name(),
		"url":     b.url,
		"error":   err.Error(),
	})
	return Result{Err: err}
}

// render starts a throwaway browser, waits for the standings table and
// returns the page HTML. chromedp removes its temporary profile on exit.
func (b *BrowserFetcher) render(ctx context.Context) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.pageLoadTimeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(b.url),
		chromedp.WaitReady(tableSelector, chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", b.url, err)
	}
	return html, nil
}
