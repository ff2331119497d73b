package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lepinkainen/bookscape/internal/cache"
	"github.com/lepinkainen/bookscape/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Query      string
	StartIndex int
	MaxResults int
	Key        string
}

// volumesServer answers every window with generated items whose ids encode
// their absolute position. overDeliver makes each window return a full page
// regardless of maxResults.
type volumesServer struct {
	mu          sync.Mutex
	requests    []recordedRequest
	overDeliver bool
	handler     func(w http.ResponseWriter, r *http.Request) bool
}

func (s *volumesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("startIndex"))
	count, _ := strconv.Atoi(q.Get("maxResults"))

	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{
		Query:      q.Get("q"),
		StartIndex: start,
		MaxResults: count,
		Key:        q.Get("key"),
	})
	s.mu.Unlock()

	if s.handler != nil && s.handler(w, r) {
		return
	}

	if s.overDeliver {
		count = MaxPageSize
	}
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"id":"vol-%d","volumeInfo":{"title":"Book %d"}}`, start+i, start+i))
	}
	_, _ = fmt.Fprintf(w, `{"kind":"books#volumes","totalItems":1000,"items":[%s]}`, strings.Join(items, ","))
}

func (s *volumesServer) recorded() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func newTestClient(t *testing.T, srv http.Handler, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	base := []Option{WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(0)}
	return NewClient("test-key", append(base, opts...)...)
}

func itemIDs(t *testing.T, items []json.RawMessage) []string {
	t.Helper()

	ids := make([]string, 0, len(items))
	for _, raw := range items {
		var v Volume
		require.NoError(t, json.Unmarshal(raw, &v))
		ids = append(ids, v.ID)
	}
	return ids
}

func TestSearchPartitionsIntoWindows(t *testing.T) {
	srv := &volumesServer{}
	client := newTestClient(t, srv)

	items, err := client.Search(context.Background(), "Machine Learning", 90)
	require.NoError(t, err)
	require.Len(t, items, 90)

	reqs := srv.recorded()
	require.Len(t, reqs, 3)
	assert.Equal(t, []int{0, 40, 80}, []int{reqs[0].StartIndex, reqs[1].StartIndex, reqs[2].StartIndex})
	assert.Equal(t, []int{40, 40, 10}, []int{reqs[0].MaxResults, reqs[1].MaxResults, reqs[2].MaxResults})
	for _, r := range reqs {
		assert.Equal(t, "Machine Learning", r.Query)
		assert.Equal(t, "test-key", r.Key)
	}

	ids := itemIDs(t, items)
	assert.Equal(t, "vol-0", ids[0])
	assert.Equal(t, "vol-40", ids[40])
	assert.Equal(t, "vol-89", ids[89])
}

func TestSearchCapsOverDeliveredFinalWindow(t *testing.T) {
	srv := &volumesServer{overDeliver: true}
	client := newTestClient(t, srv)

	items, err := client.Search(context.Background(), "Economics", 90)
	require.NoError(t, err)
	assert.Len(t, items, 90)
	assert.Len(t, srv.recorded(), 3)
}

func TestSearchPhysicsScenario(t *testing.T) {
	srv := &volumesServer{}
	client := newTestClient(t, srv)

	items, err := client.Search(context.Background(), "Physics", 45)
	require.NoError(t, err)
	assert.Len(t, items, 45)

	reqs := srv.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, 40, reqs[0].MaxResults)
	assert.Equal(t, 5, reqs[1].MaxResults)
	assert.Equal(t, 40, reqs[1].StartIndex)
}

func TestSearchCustomPageSize(t *testing.T) {
	srv := &volumesServer{}
	client := newTestClient(t, srv, WithPageSize(10))
	assert.Equal(t, 10, client.PageSize())

	items, err := client.Search(context.Background(), "Cooking Books", 25)
	require.NoError(t, err)
	assert.Len(t, items, 25)
	assert.Len(t, srv.recorded(), 3)
}

func TestSearchWindowWithoutItemsContributesNothing(t *testing.T) {
	srv := &volumesServer{}
	srv.handler = func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Query().Get("startIndex") == "40" {
			_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":40}`))
			return true
		}
		return false
	}
	client := newTestClient(t, srv)

	items, err := client.Search(context.Background(), "Business", 80)
	require.NoError(t, err)
	assert.Len(t, items, 40)
	assert.Len(t, srv.recorded(), 2)
}

func TestSearchOmitsEmptyAPIKey(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(0))
	_, err := client.Search(context.Background(), "Data Science", 5)
	require.NoError(t, err)
	assert.NotContains(t, rawQuery, "key=")
	assert.Contains(t, rawQuery, "q=Data+Science")
}

func TestSearchStatusErrorAbortsQuery(t *testing.T) {
	srv := &volumesServer{}
	srv.handler = func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Query().Get("startIndex") == "40" {
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
			return true
		}
		return false
	}
	client := newTestClient(t, srv)

	items, err := client.Search(context.Background(), "Physics", 120)
	require.Error(t, err)
	assert.Nil(t, items)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "startIndex 40")
	assert.Len(t, srv.recorded(), 2, "no window after the failing one is requested")
}

func TestSearchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(0))
	_, err := client.Search(context.Background(), "Physics", 10)
	require.Error(t, err)
	assert.True(t, errors.IsRateLimitError(err))
	assert.Contains(t, err.Error(), "retry after 30s")
}

func TestSearchMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(0))
	_, err := client.Search(context.Background(), "Physics", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestSearchValidatesInput(t *testing.T) {
	srv := &volumesServer{}
	client := newTestClient(t, srv)

	_, err := client.Search(context.Background(), "  ", 10)
	require.ErrorIs(t, err, ErrEmptyQuery)

	_, err = client.Search(context.Background(), "Physics", 0)
	require.ErrorIs(t, err, ErrInvalidMaxResults)

	assert.Empty(t, srv.recorded())
}

func TestSearchServesRepeatedWindowsFromCache(t *testing.T) {
	pageCache, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pageCache.Close() })

	srv := &volumesServer{}
	client := newTestClient(t, srv, WithPageCache(pageCache, time.Hour))

	first, err := client.Search(context.Background(), "Human Psychology", 50)
	require.NoError(t, err)
	require.Len(t, srv.recorded(), 2)

	second, err := client.Search(context.Background(), "Human Psychology", 50)
	require.NoError(t, err)
	assert.Len(t, srv.recorded(), 2, "second search should not reach the API")
	assert.Equal(t, itemIDs(t, first), itemIDs(t, second))
}

func TestSearchHonoursContextCancellation(t *testing.T) {
	srv := &volumesServer{}
	client := newTestClient(t, srv, WithRateLimit(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "Physics", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 120*time.Second, parseRetryAfter("120"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
