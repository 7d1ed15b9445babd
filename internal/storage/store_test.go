package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every backend has to share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, CartKey, `[{"id":"1","quantity":2}]`))

		value, err := store.Get(ctx, CartKey)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1","quantity":2}]`, value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ShippingKey, `{"country":"India"}`))
		require.NoError(t, store.Set(ctx, ShippingKey, `{"country":"USA"}`))

		value, err := store.Get(ctx, ShippingKey)
		require.NoError(t, err)
		assert.Equal(t, `{"country":"USA"}`, value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "temp", "x"))
		require.NoError(t, store.Delete(ctx, "temp"))

		_, err := store.Get(ctx, "temp")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-set"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	store, err := OpenSQL(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
}

func TestSQLStore_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	store, err := OpenSQL(ctx, DialectSQLite, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, CartKey, "[]"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQL(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
