// Package googlebooks provides a paginated search client for the Google Books
// volumes API.
package googlebooks

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/bookscape/internal/cache"
	"github.com/lepinkainen/bookscape/internal/ratelimit"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	// MaxPageSize is the largest maxResults the volumes endpoint accepts.
	MaxPageSize          = 40
	defaultRatePerSecond = 2
	defaultTimeout       = 10 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Google Books API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	limiter    *ratelimit.Limiter
	pageSize   int
	cache      *cache.CacheDB
	cacheTTL   time.Duration
}

// NewClient creates a new Google Books client. An empty apiKey sends
// anonymous requests, which Google throttles much harder.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    ratelimit.New("googlebooks", defaultRatePerSecond),
		pageSize:   MaxPageSize,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithPageSize sets the window size used to partition a search.
// Values outside (0, MaxPageSize] are ignored.
func WithPageSize(size int) Option {
	return func(client *Client) {
		if size > 0 && size <= MaxPageSize {
			client.pageSize = size
		}
	}
}

// WithRateLimit paces requests to requestsPerSecond. Zero or less disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(client *Client) {
		client.limiter = ratelimit.New("googlebooks", requestsPerSecond)
	}
}

// WithPageCache serves search windows from c when they are younger than ttl.
func WithPageCache(c *cache.CacheDB, ttl time.Duration) Option {
	return func(client *Client) {
		client.cache = c
		client.cacheTTL = ttl
	}
}

// PageSize returns the window size used to partition searches.
func (c *Client) PageSize() int {
	return c.pageSize
}
