package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/kv"
	"github.com/hay-kot/taskdeck/internal/data/db"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

func newTestKV(t *testing.T) kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestNamespace_PutAndLookup(t *testing.T) {
	ctx := context.Background()
	ns := kv.In[string](newTestKV(t), "greetings")

	_, ok, err := ns.Lookup(ctx, "en")
	require.NoError(t, err)
	assert.False(t, ok, "missing keys are not errors")

	require.NoError(t, ns.Put(ctx, "en", "hello", 0))

	got, ok, err := ns.Lookup(ctx, "en")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestNamespace_KeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)

	sessions := kv.In[int](store, "sessions")
	logins := kv.In[int](store, "logins")

	require.NoError(t, sessions.Put(ctx, "demo", 1, 0))
	require.NoError(t, logins.Put(ctx, "demo", 7, 0))

	s, _, err := sessions.Lookup(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 1, s)

	l, _, err := logins.Lookup(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 7, l)

	has, err := store.Has(ctx, "logins:demo")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestNamespace_RemoveAndContains(t *testing.T) {
	ctx := context.Background()
	revoked := kv.In[bool](newTestKV(t), "revoked")

	has, err := revoked.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, revoked.Put(ctx, "jti-1", true, time.Hour))
	has, err = revoked.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, revoked.Remove(ctx, "jti-1"))
	has, err = revoked.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestNamespace_Expiry(t *testing.T) {
	ctx := context.Background()
	ns := kv.In[string](newTestKV(t), "ttl")

	require.NoError(t, ns.Put(ctx, "token", "short lived", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := ns.Lookup(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}
