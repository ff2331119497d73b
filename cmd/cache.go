package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookscape/internal/cache"
	"github.com/lepinkainen/bookscape/internal/config"
)

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate CacheInvalidateCmd `cmd:"" help:"Remove every cached search page"`
	Prune      CachePruneCmd      `cmd:"" help:"Remove cached search pages older than the cache TTL"`
}

// CacheInvalidateCmd represents the cache invalidate command
type CacheInvalidateCmd struct{}

// CachePruneCmd represents the cache prune command
type CachePruneCmd struct{}

func (c *CacheInvalidateCmd) Run() error {
	return withPageCache("Cache invalidated", func(pageCache *cache.CacheDB, _ *config.Config) (int64, error) {
		return pageCache.InvalidateSource(cache.GoogleBooksSearchTable)
	})
}

func (c *CachePruneCmd) Run() error {
	return withPageCache("Expired cache entries removed", func(pageCache *cache.CacheDB, cfg *config.Config) (int64, error) {
		return pageCache.ClearExpired(cache.GoogleBooksSearchTable, cfg.Cache.TTL)
	})
}

func withPageCache(message string, op func(*cache.CacheDB, *config.Config) (int64, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pageCache, err := cache.Open(cfg.Cache.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = pageCache.Close() }()

	removed, err := op(pageCache, cfg)
	if err != nil {
		return err
	}

	slog.Info(message, "table", cache.GoogleBooksSearchTable, "removed", removed, "path", cfg.Cache.DBFile)
	_, _ = fmt.Fprintf(stdout, "%s: %d entries removed\n", message, removed)
	return nil
}
