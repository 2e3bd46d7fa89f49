package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

var (
	// ErrNoSources means a user has no candidate URLs configured.
	ErrNoSources = errors.New("no feed sources configured")
	// ErrAllSourcesFailed means every candidate URL failed.
	ErrAllSourcesFailed = errors.New("all feed sources failed")
)

// Fetcher acquires a feed from an ordered list of candidate URLs.
type Fetcher struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{},
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// FetchFirst tries the candidates in order and returns the first feed that
// fetches and parses successfully, together with the URL it came from.
// Candidates after the first success are never attempted. Each attempt is
// independent: a failure carries no state into the next candidate.
func (f *Fetcher) FetchFirst(ctx context.Context, candidates []string) (*gofeed.Feed, string, error) {
	if len(candidates) == 0 {
		return nil, "", ErrNoSources
	}

	for i, url := range candidates {
		feed, err := f.fetch(ctx, url)
		if err != nil {
			slog.Warn("Feed source failed", "attempt", fmt.Sprintf("%d/%d", i+1, len(candidates)), "url", url, "error", err)
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			continue
		}

		slog.Debug("Feed source succeeded", "url", url, "entries", len(feed.Items))
		return feed, url, nil
	}

	return nil, "", ErrAllSourcesFailed
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	// Many feed endpoints misreport transport status while still serving
	// valid entries, so a non-200 response only fails when the feed came
	// back empty.
	if resp.StatusCode != http.StatusOK && len(feed.Items) == 0 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return feed, nil
}
