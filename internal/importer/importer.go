// Package importer drives an ingest run: fetch each search term, normalize
// every item and hand it to storage, isolating failures per item.
package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lepinkainen/bookscape/internal/errors"
	"github.com/lepinkainen/bookscape/internal/metrics"
	"github.com/lepinkainen/bookscape/internal/normalize"
)

// DefaultMaxResults is the per-term item cap when none is configured.
const DefaultMaxResults = 500

// Fetcher returns up to maxResults raw catalog items for a search term.
type Fetcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]json.RawMessage, error)
}

// Writer persists one normalized item.
type Writer interface {
	WriteBook(ctx context.Context, rec *normalize.Record) error
}

// Importer runs the sequential fetch, normalize and write sweep.
type Importer struct {
	fetcher    Fetcher
	writer     Writer
	maxResults int
	metrics    *metrics.Ingest
	now        func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithMaxResults caps the number of items fetched per term.
func WithMaxResults(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxResults = n
		}
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Ingest) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

// New creates an Importer reading from fetcher and writing to writer.
func New(fetcher Fetcher, writer Writer, opts ...Option) *Importer {
	i := &Importer{
		fetcher:    fetcher,
		writer:     writer,
		maxResults: DefaultMaxResults,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run processes terms in order and returns what happened to each. Errors never
// escape: a failed fetch is recorded on its term and a failed item is counted
// and logged. Cancelling ctx stops the sweep before the next item.
func (i *Importer) Run(ctx context.Context, terms []string) Report {
	report := Report{StartedAt: i.now()}

	for _, term := range terms {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		tr := i.runTerm(ctx, term)
		report.Terms = append(report.Terms, tr)
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
	}

	report.FinishedAt = i.now()
	return report
}

func (i *Importer) runTerm(ctx context.Context, term string) TermReport {
	tr := TermReport{Term: term}

	slog.Info("Processing search key", "term", term, "max_results", i.maxResults)

	items, err := i.fetcher.Search(ctx, term, i.maxResults)
	if err != nil {
		if errors.IsRateLimitError(err) {
			slog.Warn("Fetch rate limited, skipping term", "term", term, "error", err)
		} else {
			slog.Error("Fetch failed, skipping term", "term", term, "error", err)
		}
		i.metrics.FetchFailed()
		tr.Error = err.Error()
		return tr
	}
	i.metrics.FetchSucceeded(len(items))
	tr.Fetched = len(items)

	for idx, raw := range items {
		if ctx.Err() != nil {
			slog.Warn("Run cancelled", "term", term, "processed", idx, "fetched", len(items))
			break
		}

		if err := i.processItem(ctx, raw, term); err != nil {
			tr.Failed++
			if errors.IsDuplicateBookError(err) {
				tr.Duplicates++
			}
			i.metrics.ItemFailed()
			slog.Warn("Error processing book", "term", term, "book_id", itemID(raw), "error", err)
			continue
		}
		tr.Written++
		i.metrics.ItemWritten()
	}

	slog.Info("Completed search key", "term", term, "written", tr.Written, "failed", tr.Failed)
	return tr
}

func (i *Importer) processItem(ctx context.Context, raw json.RawMessage, term string) error {
	rec, err := normalize.Normalize(raw, term)
	if err != nil {
		return err
	}
	return i.writer.WriteBook(ctx, rec)
}

// itemID best-effort extracts the id of an item for log lines.
func itemID(raw json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
		return "unknown"
	}
	return head.ID
}
