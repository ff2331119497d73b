package datastore

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrEmptyName is returned when resolving a blank entity name.
var ErrEmptyName = stdErrors.New("entity name is empty")

// EntityKind selects one of the name-keyed lookup tables.
type EntityKind int

const (
	Publisher EntityKind = iota
	Author
	Category
)

type entityTable struct {
	table   string
	idCol   string
	nameCol string
}

var entityTables = map[EntityKind]entityTable{
	Publisher: {table: "publishers", idCol: "publisher_id", nameCol: "publisher_name"},
	Author:    {table: "authors", idCol: "author_id", nameCol: "author_name"},
	Category:  {table: "categories", idCol: "category_id", nameCol: "category_name"},
}

func (k EntityKind) String() string {
	switch k {
	case Publisher:
		return "publisher"
	case Author:
		return "author"
	case Category:
		return "category"
	default:
		return fmt.Sprintf("EntityKind(%d)", int(k))
	}
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Resolve returns the id bound to name, creating the row on first sight.
// The lookup and the insert are a single statement, so concurrent resolvers
// of the same name always agree on the id.
func (s *Store) Resolve(ctx context.Context, kind EntityKind, name string) (int64, error) {
	return s.resolve(ctx, s.db, kind, name)
}

func (s *Store) resolve(ctx context.Context, q rowQuerier, kind EntityKind, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	t, ok := entityTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %s", kind)
	}

	query, args, err := s.builder.
		Insert(t.table).
		Columns(t.nameCol).
		Values(name).
		Suffix(fmt.Sprintf("ON CONFLICT (%[1]s) DO UPDATE SET %[1]s = excluded.%[1]s RETURNING %[2]s", t.nameCol, t.idCol)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s upsert: %w", kind, err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve %s %q: %w", kind, name, err)
	}
	return id, nil
}

// resolveInTx resolves name inside the item transaction. A failure rolls back
// only the resolution and is reported as unresolved (ok == false).
func (s *Store) resolveInTx(ctx context.Context, tx *sql.Tx, kind EntityKind, name, bookID string) (int64, bool) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT resolve_entity"); err != nil {
		slog.Warn("Entity unresolved", "kind", kind.String(), "name", name, "book_id", bookID, "error", err)
		return 0, false
	}

	id, err := s.resolve(ctx, tx, kind, name)
	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT resolve_entity"); rbErr != nil {
			slog.Debug("Rollback to savepoint failed", "error", rbErr)
		}
		slog.Warn("Entity unresolved", "kind", kind.String(), "name", name, "book_id", bookID, "error", err)
		return 0, false
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT resolve_entity"); err != nil {
		slog.Debug("Release savepoint failed", "error", err)
	}
	return id, true
}
