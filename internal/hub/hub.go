// Package hub talks to the leaderboard data service: published benchmark
// sizes, the current leaderboard records, and submission pushes.
package hub

//go:generate go tool mockgen -source=hub.go -destination=mock_http_test.go -package=hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/open-telco/telbench/internal/models"
)

// DefaultBaseURL is the production data service.
const DefaultBaseURL = "https://hub.open-telco.org"

// DefaultSplit is the dataset split benchmark sizes are published for.
const DefaultSplit = "test"

// countFetchAttempts bounds the expected-count retry loop. Sleeps between
// attempts grow as 2^attempt seconds.
const countFetchAttempts = 3

// ErrUnauthorized is returned when the hub rejects the configured token.
var ErrUnauthorized = errors.New("hub token rejected")

// httpDoer is just an interface over [*http.Client].
type httpDoer interface {
	// Do maps to [http.Client.Do]
	Do(req *http.Request) (*http.Response, error)
}

// ClientOptions adjusts a [Client] beyond its defaults.
type ClientOptions struct {
	// Token authenticates requests that need it (pushes, whoami). Reads
	// work without one.
	Token string

	// HTTPClient replaces the default 30 second timeout client.
	HTTPClient *http.Client

	// Split overrides [DefaultSplit].
	Split string
}

// Client is a leaderboard data service client. Successful expected-count
// lookups are memoized per instance, so one validation pass fetches each
// benchmark's size at most once.
type Client struct {
	baseURL string
	token   string
	split   string
	httpc   httpDoer
	sleep   func(ctx context.Context, d time.Duration) error

	mu     sync.RWMutex
	counts map[models.Benchmark]int
}

func NewClient(baseURL string, options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}
	c := &Client{
		baseURL: baseURL,
		token:   options.Token,
		split:   options.Split,
		sleep:   sleepCtx,
		counts:  map[models.Benchmark]int{},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.split == "" {
		c.split = DefaultSplit
	}
	if options.HTTPClient != nil {
		c.httpc = options.HTTPClient
	} else {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// ExpectedCount returns the published sample count for b, fetching with
// retry on the first call and serving the memoized value afterwards.
// Failures are not cached: the next call retries from scratch.
func (c *Client) ExpectedCount(ctx context.Context, b models.Benchmark) (int, error) {
	c.mu.RLock()
	n, ok := c.counts[b]
	c.mu.RUnlock()
	if ok {
		return n, nil
	}

	n, err := c.fetchCountWithRetry(ctx, b)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.counts[b] = n
	c.mu.Unlock()
	return n, nil
}

func (c *Client) fetchCountWithRetry(ctx context.Context, b models.Benchmark) (int, error) {
	var lastErr error
	for attempt := 0; attempt < countFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, time.Duration(1<<(attempt-1))*time.Second); err != nil {
				return 0, err
			}
		}

		n, err := c.fetchCount(ctx, b)
		if err == nil {
			return n, nil
		}
		lastErr = err
		slog.Debug("expected count fetch failed",
			"benchmark", b, "attempt", attempt+1, "error", err)
	}
	return 0, fmt.Errorf("fetching %s size after %d attempts: %w", b.HubConfig(), countFetchAttempts, lastErr)
}

func (c *Client) fetchCount(ctx context.Context, b models.Benchmark) (int, error) {
	u := fmt.Sprintf("%s/api/v1/benchmarks/%s/size?split=%s",
		c.baseURL, url.PathEscape(b.HubConfig()), url.QueryEscape(c.split))

	var body struct {
		Config  string `json:"config"`
		Split   string `json:"split"`
		NumRows int    `json:"numRows"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, err
	}
	if body.NumRows <= 0 {
		return 0, fmt.Errorf("hub reports no %s split for %s", c.split, b.HubConfig())
	}
	return body.NumRows, nil
}

// Leaderboard fetches the current leaderboard records.
func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PushRecords replaces the hub's leaderboard records with entries. Merging
// is the caller's job; the hub applies last writer wins per push.
func (c *Client) PushRecords(ctx context.Context, entries []models.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/v1/leaderboard", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("pushing records: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("push rejected: %s", readHTTPError(resp))
	}
	return nil
}

// WhoAmI verifies the configured token and returns the account it belongs
// to. A 401 maps to [ErrUnauthorized] so callers can distinguish a bad
// token from an unreachable hub.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/whoami", &body); err != nil {
		return "", err
	}
	if body.Name == "" {
		return "", errors.New("hub returned no account name")
	}
	return body.Name, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: %s", req.URL.Path, readHTTPError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// readHTTPError folds a failure response into one error line: the status,
// plus the first bit of the body when the hub sent one.
func readHTTPError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(data) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(data))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
