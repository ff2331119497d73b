// Package catalog answers the analytics layer's questions over the book
// schema with named, read-only queries. User input is always bound as a
// statement parameter.
package catalog

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	sq "github.com/Masterminds/squirrel"
)

var (
	// ErrUnknownQuery is returned by Run for names not in the catalogue.
	ErrUnknownQuery = stdErrors.New("unknown query")
	// ErrMissingKeyword is returned when a keyword search has no keyword.
	ErrMissingKeyword = stdErrors.New("keyword is required")
)

// Table is a query result with every value rendered as text. NULL becomes
// an empty string.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Repository runs catalogue queries against a database handle.
type Repository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	byName  map[string]Query
}

// NewRepository creates a repository over db. placeholder must match the
// driver behind db (sq.Question for SQLite, sq.Dollar for Postgres).
func NewRepository(db *sql.DB, placeholder sq.PlaceholderFormat) *Repository {
	byName := make(map[string]Query, len(queries))
	for _, q := range queries {
		byName[q.Name] = q
	}
	return &Repository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		byName:  byName,
	}
}

// Catalogue lists the available queries sorted by name.
func Catalogue() []Query {
	list := slices.Clone(queries)
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// SQL renders the statement and arguments for name without running it.
func (r *Repository) SQL(name string, p Params) (string, []any, error) {
	q, ok := r.byName[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	builder, err := q.build(r.builder, p)
	if err != nil {
		return "", nil, fmt.Errorf("query %s: %w", name, err)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build query %s: %w", name, err)
	}
	return query, args, nil
}

// Run executes the named query.
func (r *Repository) Run(ctx context.Context, name string, p Params) (*Table, error) {
	query, args, err := r.SQL(name, p)
	if err != nil {
		return nil, err
	}

	slog.Debug("Running catalog query", "name", name, "sql", query, "args", args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s columns: %w", name, err)
	}

	table := &Table{Columns: columns}
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("query %s scan: %w", name, err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s rows: %w", name, err)
	}

	return table, nil
}
