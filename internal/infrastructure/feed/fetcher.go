package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"FeedDigest/internal/ports"
)

// Fetcher retrieves feed bodies with conditional-request headers so
// unchanged feeds cost a 304 instead of a full download.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 25s timeout default.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch issues a conditional GET for the feed. A 304 comes back as
// NotModified without a body; any 2xx returns the body plus whatever
// validators the server sent (absent headers come back empty, clearing
// the cached ones). Other statuses are per-feed failures.
func (f *Fetcher) Fetch(ctx context.Context, feedURL, etag, lastModified string) (ports.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return ports.FetchResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return ports.FetchResult{}, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return ports.FetchResult{NotModified: true}, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.FetchResult{}, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.FetchResult{}, fmt.Errorf("read body: %w", err)
	}

	return ports.FetchResult{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
