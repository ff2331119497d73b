package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookscape/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the bookscape application
type CLI struct {
	// Database flags
	DBDriver string `name:"db-driver" help:"Storage driver (sqlite or postgres)"`
	DBDSN    string `name:"db-dsn" help:"SQLite file path or Postgres connection string"`

	// Cache flags
	CacheDBFile string `name:"cache-db-file" help:"Path to cache SQLite database file"`
	CacheTTL    string `name:"cache-ttl" help:"Cache time-to-live duration (e.g., 720h for 30 days)"`
	NoCache     bool   `name:"no-cache" help:"Always call the API, never read or write the page cache"`

	Verbose bool `short:"v" help:"Enable debug logging"`

	Ingest IngestCmd `cmd:"" help:"Fetch books for the search terms and store them"`
	Query  QueryCmd  `cmd:"" help:"Run analytics queries over the stored books"`
	Cache  CacheCmd  `cmd:"" help:"Manage the search page cache"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(false)
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookscape"),
		kong.Description("Ingest Google Books search results into a relational book catalogue."),
		kong.UsageOnError(),
	)

	if cli.Verbose {
		initLogging(true)
	}

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if err := config.BindEnv(viper.GetViper()); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}
}

// updateGlobalConfig copies explicitly given global flags over the config.
func updateGlobalConfig(cli *CLI) {
	if cli.DBDriver != "" {
		viper.Set("database.driver", cli.DBDriver)
	}
	if cli.DBDSN != "" {
		viper.Set("database.dsn", cli.DBDSN)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		viper.Set("cache.enabled", false)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
