package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeClient fetches pages through a headless browser. It is the
// fallback fetcher for when the plain HTTP client gets a page the
// locator finds no candidate blocks in (vlr.gg behind a JS challenge).
type ChromeClient struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromeClient creates a headless-browser fetch client.
func NewChromeClient() (*ChromeClient, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeClient{
		allocCtx: allocCtx,
		cancel:   cancel,
	}, nil
}

// Close releases the browser allocator.
func (c *ChromeClient) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Fetch navigates to url and returns the rendered HTML.
func (c *ChromeClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(c.allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancelTimeout()

	// Keep the outer ctx authoritative for cancellation.
	go func() {
		<-ctx.Done()
		cancelBrowser()
	}()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return nil, fmt.Errorf("empty HTML content returned")
	}

	log.Printf("[scrape-chrome] rendered %s (%d bytes)", url, len(htmlContent))
	return []byte(htmlContent), nil
}
