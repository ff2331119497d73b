package googlebooks

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/bookscape/internal/cache"
	"github.com/lepinkainen/bookscape/internal/errors"
)

var (
	// ErrEmptyQuery is returned when Search is called without a query.
	ErrEmptyQuery = stdErrors.New("search query is empty")
	// ErrInvalidMaxResults is returned when Search is asked for fewer than one result.
	ErrInvalidMaxResults = stdErrors.New("max results must be positive")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("google books: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("google books: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Search returns up to maxResults raw catalog items for query, in the API's
// relevance order. The request is split into windows of PageSize items, one
// HTTP request per window, and the windows are concatenated in request order.
// Any failing window aborts the whole search.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxResults, maxResults)
	}

	items := make([]json.RawMessage, 0, maxResults)
	for start := 0; start < maxResults; start += c.pageSize {
		count := min(c.pageSize, maxResults-start)

		window, err := c.fetchWindow(ctx, query, start, count)
		if err != nil {
			return nil, fmt.Errorf("search %q at startIndex %d: %w", query, start, err)
		}
		items = append(items, window...)
	}

	// The API sometimes returns more than it was asked for
	if len(items) > maxResults {
		items = items[:maxResults]
	}

	slog.Debug("Google Books search complete", "query", query, "requested", maxResults, "received", len(items))
	return items, nil
}

func (c *Client) fetchWindow(ctx context.Context, query string, start, count int) ([]json.RawMessage, error) {
	key := fmt.Sprintf("%s|%d|%d", query, start, count)
	items, fromCache, err := cache.GetOrFetch(c.cache, cache.GoogleBooksSearchTable, key, c.cacheTTL, func() ([]json.RawMessage, error) {
		return c.requestWindow(ctx, query, start, count)
	})
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Search window served from cache", "query", query, "start_index", start)
	}
	return items, nil
}

func (c *Client) requestWindow(ctx context.Context, query string, start, count int) ([]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", strconv.Itoa(start))
	params.Set("maxResults", strconv.Itoa(count))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	slog.Debug("Fetching Google Books window", "query", query, "start_index", start, "max_results", count)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.NewRateLimitErrorWithRetry("google books quota exceeded", parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response: %w", err)
	}

	return page.Items, nil
}

// parseRetryAfter understands the delta-seconds form of Retry-After.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
