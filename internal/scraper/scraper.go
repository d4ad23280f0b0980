package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ScheduleURL = "https://def.camp/schedule/"
	UserAgent   = "defcamp-calendar/1.0"
	Timeout     = 1 * time.Second
)

// Options configures where and how the schedule page is fetched
type Options struct {
	URL     string
	Timeout time.Duration
}

// DefaultOptions returns the options for the public schedule page
func DefaultOptions() Options {
	return Options{
		URL:     ScheduleURL,
		Timeout: Timeout,
	}
}

// Fetcher retrieves the raw schedule page
type Fetcher struct {
	client *http.Client
	url    string
}

// New creates a new Fetcher. Zero fields in opts fall back to the defaults.
func New(opts Options) *Fetcher {
	if opts.URL == "" {
		opts.URL = ScheduleURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		url: opts.URL,
	}
}

// URL returns the page the fetcher reads from
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch issues a single GET for the schedule page and returns its body
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}
