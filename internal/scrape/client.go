package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// BaseURL is the vlr.gg site root.
	BaseURL = "https://www.vlr.gg"

	// ResultsPath lists completed matches, SchedulePath upcoming ones.
	ResultsPath  = "/matches/results"
	SchedulePath = "/matches"

	// UserAgent for requests; vlr.gg serves a challenge page to obvious bots.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// FetchTimeout bounds a single document fetch. A fetch that exceeds
	// it is abandoned and surfaces as a fetch failure.
	FetchTimeout = 10 * time.Second
)

// Client fetches raw vlr.gg documents over plain HTTP.
type Client struct {
	http *http.Client
}

// NewClient creates a vlr.gg fetch client with the default timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: FetchTimeout},
	}
}

// Fetch retrieves the document at url. Non-2xx statuses are errors;
// callers treat any error from here as a fetch failure.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	log.Printf("[scrape-client] fetched %s (%d bytes)", url, len(body))
	return body, nil
}
