// scraper/fetch.go
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves the body of a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError describes a failed document fetch.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("failed to fetch %s: received status code %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// HTTPFetcher is a Fetcher backed by a resty client. Anything other than
// 200 OK is an error. There are no retries.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with the given timeout and user agent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	slog.DebugContext(ctx, "Scraper: fetching", "url", url)

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Cause: err}
	}
	if res.StatusCode() != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.String(), nil
}
