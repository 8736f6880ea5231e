package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	return NewKVStore(openTestDB(t))
}

func TestKVStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	err := store.Set(ctx, "test-key", payload{Name: "hello", Value: 42})
	require.NoError(t, err)

	var got payload
	err = store.Get(ctx, "test-key", &got)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Name)
	assert.Equal(t, 42, got.Value)
}

func TestKVStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	var v string
	err := store.Get(ctx, "nonexistent", &v)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestKVStore_SetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "key", "first"))
	require.NoError(t, store.Set(ctx, "key", "second"))

	var got string
	require.NoError(t, store.Get(ctx, "key", &got))
	assert.Equal(t, "second", got)
}

func TestKVStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "key", "value"))
	require.NoError(t, store.Delete(ctx, "key"))

	has, err := store.Has(ctx, "key")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestKVStore_Has(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	has, err := store.Has(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Set(ctx, "exists", true))
	has, err = store.Has(ctx, "exists")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestKVStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	// Set with 1ms TTL
	require.NoError(t, store.SetTTL(ctx, "ephemeral", "gone", time.Millisecond))

	// Wait for it to expire
	time.Sleep(5 * time.Millisecond)

	// Get should return not found (lazy expiry)
	var v string
	err := store.Get(ctx, "ephemeral", &v)
	require.ErrorIs(t, err, sql.ErrNoRows)

	// Has should return false
	has, err := store.Has(ctx, "ephemeral")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestKVStore_TTLNotExpired(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.SetTTL(ctx, "alive", "here", time.Hour))

	var got string
	require.NoError(t, store.Get(ctx, "alive", &got))
	assert.Equal(t, "here", got)
}

func TestKVStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	store := NewKVStore(database)

	// One permanent entry and one that expires immediately.
	require.NoError(t, store.Set(ctx, "permanent", "stays"))
	require.NoError(t, store.SetTTL(ctx, "expired", "goes", time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, store.SweepExpired(ctx))

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store").Scan(&count))
	assert.Equal(t, 1, count)
}
