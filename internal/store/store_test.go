package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wings-inventory/internal/store"
)

func backends(t *testing.T) map[string]store.Backend {
	bolt, err := store.OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]store.Backend{
		"memory": store.NewMemoryBackend(),
		"bolt":   bolt,
	}
}

func TestCollectionContract(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			products := backend.Collection("products")

			t.Run("create then list includes the document with a fresh id", func(t *testing.T) {
				rec, err := products.Create(ctx, store.Document{"name": "Tea", "price": "10"})
				require.NoError(t, err)
				assert.NotEmpty(t, rec.ID)

				list, err := products.List(ctx)
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, rec.ID, list[0].ID)
				assert.Equal(t, "Tea", list[0].Fields["name"])
				assert.Equal(t, "10", list[0].Fields["price"])
			})

			t.Run("update changes only the named fields", func(t *testing.T) {
				rec, err := products.Create(ctx, store.Document{"name": "Cake", "category": "Bakery"})
				require.NoError(t, err)

				require.NoError(t, products.Update(ctx, rec.ID, store.Document{"name": "Cheesecake"}))

				got, err := products.Get(ctx, rec.ID)
				require.NoError(t, err)
				assert.Equal(t, "Cheesecake", got.Fields["name"])
				assert.Equal(t, "Bakery", got.Fields["category"])
			})

			t.Run("update of a missing id reports not found", func(t *testing.T) {
				err := products.Update(ctx, "missing", store.Document{"name": "x"})
				assert.ErrorIs(t, err, store.ErrNotFound)
			})

			t.Run("delete removes the document and reports a second delete", func(t *testing.T) {
				rec, err := products.Create(ctx, store.Document{"name": "Cola"})
				require.NoError(t, err)

				require.NoError(t, products.Delete(ctx, rec.ID))
				assert.ErrorIs(t, products.Delete(ctx, rec.ID), store.ErrNotFound)

				list, err := products.List(ctx)
				require.NoError(t, err)
				for _, r := range list {
					assert.NotEqual(t, rec.ID, r.ID)
				}
			})

			t.Run("set writes under the given id", func(t *testing.T) {
				profiles := backend.Collection("profiles")
				require.NoError(t, profiles.Set(ctx, "uid-1", store.Document{"email": "a@b.com"}))
				require.NoError(t, profiles.Set(ctx, "uid-1", store.Document{"email": "c@d.com"}))

				got, err := profiles.Get(ctx, "uid-1")
				require.NoError(t, err)
				assert.Equal(t, "c@d.com", got.Fields["email"])
			})

			t.Run("collections are isolated", func(t *testing.T) {
				list, err := backend.Collection("empty").List(ctx)
				require.NoError(t, err)
				assert.Empty(t, list)

				_, err = backend.Collection("empty").Get(ctx, "nope")
				assert.ErrorIs(t, err, store.ErrNotFound)
			})
		})
	}
}

func TestMemoryBackendReturnsCopies(t *testing.T) {
	ctx := context.Background()
	coll := store.NewMemoryBackend().Collection("products")

	rec, err := coll.Create(ctx, store.Document{"name": "Tea"})
	require.NoError(t, err)
	rec.Fields["name"] = "changed"

	got, err := coll.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Fields["name"])
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.NewMemoryBackend().Collection("products").List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
