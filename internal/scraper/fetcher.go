package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoContent is returned when a page responds but carries no body worth
// analyzing.
var ErrNoContent = errors.New("no content returned")

const (
	fetchTimeout = 30 * time.Second
	maxBodyBytes = 5 * 1024 * 1024
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

type PageFetcher struct {
	client *resty.Client
}

func NewPageFetcher() *PageFetcher {
	client := resty.New().
		SetTimeout(fetchTimeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)
	return &PageFetcher{client: client}
}

// Fetch downloads the rendered HTML for a URL. Non-200 responses and empty
// bodies are fetch-stage failures.
func (f *PageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", url, ErrNoContent)
	}
	return body, nil
}
