package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lepinkainen/bookscape/internal/cache"
	"github.com/lepinkainen/bookscape/internal/config"
	"github.com/lepinkainen/bookscape/internal/datastore"
	"github.com/lepinkainen/bookscape/internal/googlebooks"
	"github.com/lepinkainen/bookscape/internal/importer"
	"github.com/lepinkainen/bookscape/internal/metrics"
	"github.com/spf13/viper"
)

var runIngest = ingest

// IngestCmd represents the ingest command
type IngestCmd struct {
	Terms       []string `name:"term" short:"t" sep:"none" help:"Search term to ingest, repeatable (defaults to googlebooks.terms)"`
	MaxResults  int      `help:"Maximum number of books fetched per term"`
	APIKey      string   `name:"api-key" help:"Google Books API key (or GOOGLE_BOOKS_API_KEY)"`
	PageSize    int      `help:"Books requested per API call, at most 40"`
	Reset       bool     `help:"Drop and recreate the book tables before ingesting"`
	ReportFile  string   `help:"Write the run report as YAML to this file"`
	MetricsFile string   `help:"Write Prometheus metrics in textfile format to this file"`
}

func (i *IngestCmd) Run() error {
	i.applyOverrides()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runIngest(ctx, cfg, i.Reset)
}

func (i *IngestCmd) applyOverrides() {
	if len(i.Terms) > 0 {
		viper.Set("googlebooks.terms", i.Terms)
	}
	if i.MaxResults != 0 {
		viper.Set("googlebooks.maxresults", i.MaxResults)
	}
	if i.APIKey != "" {
		viper.Set("googlebooks.apikey", i.APIKey)
	}
	if i.PageSize != 0 {
		viper.Set("googlebooks.pagesize", i.PageSize)
	}
	if i.ReportFile != "" {
		viper.Set("output.report", i.ReportFile)
	}
	if i.MetricsFile != "" {
		viper.Set("output.metrics", i.MetricsFile)
	}
}

func ingest(ctx context.Context, cfg *config.Config, reset bool) error {
	store, err := datastore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx, reset); err != nil {
		return err
	}

	opts := []googlebooks.Option{
		googlebooks.WithPageSize(cfg.GoogleBooks.PageSize),
		googlebooks.WithRateLimit(cfg.GoogleBooks.RateLimit),
	}
	if cfg.GoogleBooks.BaseURL != "" {
		opts = append(opts, googlebooks.WithBaseURL(cfg.GoogleBooks.BaseURL))
	}
	if cfg.Cache.Enabled {
		pageCache, err := cache.Open(cfg.Cache.DBFile)
		if err != nil {
			slog.Warn("Page cache unavailable, continuing without it", "path", cfg.Cache.DBFile, "error", err)
		} else {
			defer func() { _ = pageCache.Close() }()
			opts = append(opts, googlebooks.WithPageCache(pageCache, cfg.Cache.TTL))
		}
	}
	if cfg.GoogleBooks.APIKey == "" {
		slog.Warn("No Google Books API key configured, sending anonymous requests", "env", config.APIKeyEnv)
	}

	client := googlebooks.NewClient(cfg.GoogleBooks.APIKey, opts...)
	ingestMetrics := metrics.NewIngest()

	slog.Info("Starting ingest",
		"terms", len(cfg.GoogleBooks.Terms),
		"max_results", cfg.GoogleBooks.MaxResults,
		"driver", store.Driver())

	report := importer.New(client, store,
		importer.WithMaxResults(cfg.GoogleBooks.MaxResults),
		importer.WithMetrics(ingestMetrics),
	).Run(ctx, cfg.GoogleBooks.Terms)

	_, _ = fmt.Fprintln(stdout, report.Render())

	if path := cfg.Output.ReportFile; path != "" {
		if err := report.WriteYAML(path); err != nil {
			slog.Error("Failed to write run report", "path", path, "error", err)
		} else {
			slog.Info("Run report written", "path", path)
		}
	}
	if path := cfg.Output.MetricsFile; path != "" {
		if err := ingestMetrics.WriteTextfile(path); err != nil {
			slog.Error("Failed to write metrics", "path", path, "error", err)
		} else {
			slog.Info("Metrics written", "path", path)
		}
	}

	if report.Cancelled {
		return fmt.Errorf("ingest interrupted: %w", context.Cause(ctx))
	}
	if n := len(report.Terms); n > 0 && report.FailedFetches() == n {
		return fmt.Errorf("all %d search terms failed to fetch", n)
	}
	return nil
}
