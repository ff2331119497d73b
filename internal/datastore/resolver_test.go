package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Resolve(ctx, Publisher, "Packt Publishing")
	require.NoError(t, err)
	second, err := store.Resolve(ctx, Publisher, "Packt Publishing")
	require.NoError(t, err)
	third, err := store.Resolve(ctx, Publisher, "  Packt Publishing ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, countRows(t, store, "SELECT COUNT(*) FROM publishers WHERE publisher_name = ?", "Packt Publishing"))
}

func TestResolveDistinctNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Resolve(ctx, Author, "Donald Knuth")
	require.NoError(t, err)
	b, err := store.Resolve(ctx, Author, "Edsger Dijkstra")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, countRows(t, store, "SELECT COUNT(*) FROM authors"))
}

func TestResolveKindsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, kind := range []EntityKind{Publisher, Author, Category} {
		t.Run(kind.String(), func(t *testing.T) {
			id, err := store.Resolve(ctx, kind, "Science")
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)
		})
	}

	assert.Equal(t, 1, countRows(t, store, "SELECT COUNT(*) FROM publishers"))
	assert.Equal(t, 1, countRows(t, store, "SELECT COUNT(*) FROM authors"))
	assert.Equal(t, 1, countRows(t, store, "SELECT COUNT(*) FROM categories"))
}

func TestResolveRejectsEmptyName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Resolve(context.Background(), Category, "   ")
	require.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, 0, countRows(t, store, "SELECT COUNT(*) FROM categories"))
}

func TestResolveUnknownKind(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Resolve(context.Background(), EntityKind(42), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EntityKind(42)")
}
