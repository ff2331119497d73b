// Package datastore persists normalized books into the relational schema
// shared with the analytics layer. SQLite (modernc) and Postgres (pgx) are
// supported.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"
)

// Store is the storage handle owned by a single ingest run.
type Store struct {
	db      *sql.DB
	dialect dialect
	builder sq.StatementBuilderType
}

// Open connects to the database identified by driver and dsn. For SQLite the
// dsn is a file path; missing parent directories are created.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty %s dsn", d.name)
	}

	openDSN := dsn
	if d.name == DriverSQLite {
		if dir := filepath.Dir(dsn); !strings.HasPrefix(dsn, "file:") && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		openDSN = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.sqlDriver, openDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}
	if d.name == DriverSQLite {
		// One writer, and a single connection keeps pragmas and transactions on the same handle
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}

	slog.Debug("Database opened", "driver", d.name)

	return &Store{
		db:      db,
		dialect: d,
		builder: sq.StatementBuilder.PlaceholderFormat(d.placeholder),
	}, nil
}

// EnsureSchema creates the book tables and indexes if they do not exist.
// With reset the existing tables are dropped first, discarding all data.
func (s *Store) EnsureSchema(ctx context.Context, reset bool) error {
	if reset {
		for _, table := range bookTables {
			if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		slog.Info("Dropped existing book tables")
	}

	for _, stmt := range schemaStatements(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DB returns the underlying handle for read-only consumers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Placeholder returns the bind-parameter format of the store's dialect.
func (s *Store) Placeholder() sq.PlaceholderFormat {
	return s.dialect.placeholder
}

// Driver returns the name of the storage driver in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
