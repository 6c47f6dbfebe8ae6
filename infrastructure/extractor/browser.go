package extractor

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// PageFetcher returns the HTML of a listing page
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// BrowserFetcher renders pages in headless Chrome for listing sites that
// build their markup client side. One browser process serves every fetch;
// each fetch gets its own tab.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

func NewBrowserFetcher(userAgent string, timeout time.Duration) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserFetcher{allocCtx: allocCtx, cancel: cancel, timeout: timeout}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()
	// the tab outlives neither the request nor the timeout
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", errors.Wrap(err, "render listing")
	}
	if len(html) > maxPageBytes {
		html = html[:maxPageBytes]
	}
	return html, nil
}

// Close shuts the browser down
func (b *BrowserFetcher) Close() { b.cancel() }
