package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves and parses an HTML document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages with a fixed per-request timeout.
type HTTPFetcher struct {
	http *resty.Client
}

// NewHTTPFetcher creates a fetcher. A non-positive timeout defaults to 30s.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().SetTimeout(timeout)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	return &HTTPFetcher{http: c}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.http.R().SetContext(ctx).SetHeader("Accept", "text/html").Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get %s: %s", url, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
