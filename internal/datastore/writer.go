package datastore

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lepinkainen/bookscape/internal/errors"
	"github.com/lepinkainen/bookscape/internal/normalize"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// WriteBook stores rec together with its publisher reference, author and
// category links and industry identifiers. The item is written in a single
// transaction: either every row lands or none does.
//
// A book id that already exists yields a *errors.DuplicateBookError; existing
// rows are never updated. Names that cannot be resolved are logged and their
// dependent row is skipped without failing the item.
func (s *Store) WriteBook(ctx context.Context, rec *normalize.Record) error {
	if rec == nil || rec.ID == "" {
		return normalize.ErrMissingID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after commit is a no-op
		_ = tx.Rollback()
	}()

	attrs := maps.Clone(rec.Attrs)
	attrs[normalize.ColBookID] = rec.ID
	if rec.Publisher != "" {
		if id, ok := s.resolveInTx(ctx, tx, Publisher, rec.Publisher, rec.ID); ok {
			attrs[normalize.ColPublisherID] = id
		}
	}

	query, args, err := s.builder.Insert("books").SetMap(attrs).ToSql()
	if err != nil {
		return fmt.Errorf("build book insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errors.NewDuplicateBookError(rec.ID, err)
		}
		return fmt.Errorf("failed to insert book %s: %w", rec.ID, err)
	}

	if err := s.linkEntities(ctx, tx, rec.ID, Author, "book_authors", "author_id", rec.Authors); err != nil {
		return err
	}
	if err := s.linkEntities(ctx, tx, rec.ID, Category, "book_categories", "category_id", rec.Categories); err != nil {
		return err
	}

	for _, ident := range rec.Identifiers {
		query, args, err := s.builder.
			Insert("industry_identifiers").
			Columns("book_id", "identifier_type", "identifier_value").
			Values(rec.ID, nullable(ident.Type), nullable(ident.Value)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build identifier insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert identifier for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit book %s: %w", rec.ID, err)
	}

	slog.Debug("Book written",
		"book_id", rec.ID,
		"authors", len(rec.Authors),
		"categories", len(rec.Categories),
		"identifiers", len(rec.Identifiers))
	return nil
}

// linkEntities resolves names and links each resolved id to the book.
// Re-linking an existing pair is a no-op.
func (s *Store) linkEntities(ctx context.Context, tx *sql.Tx, bookID string, kind EntityKind, linkTable, idCol string, names []string) error {
	for _, name := range names {
		id, ok := s.resolveInTx(ctx, tx, kind, name, bookID)
		if !ok {
			continue
		}

		query, args, err := s.builder.
			Insert(linkTable).
			Columns("book_id", idCol).
			Values(bookID, id).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build %s link: %w", kind, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to link %s %q to %s: %w", kind, name, bookID, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a primary key or unique
// constraint failure on either supported engine.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if stdErrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
