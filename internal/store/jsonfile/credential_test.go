package jsonfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/auth"
)

func TestCredentialStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential.json")
	store := NewCredentialStore(path)

	_, err := store.Load()
	require.ErrorIs(t, err, auth.ErrNoCredential)

	cred := auth.Credential{
		Token:    "abc.def.ghi",
		Identity: auth.Identity{ID: "1", Username: "alice", Role: auth.RoleAdmin},
		SavedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(cred))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cred.Token, got.Token)
	assert.Equal(t, cred.Identity, got.Identity)
	assert.True(t, cred.SavedAt.Equal(got.SavedAt))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestCredentialStore_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "credential.json")
	store := NewCredentialStore(path)
	require.NoError(t, store.Save(auth.Credential{Token: "t"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentialStore_Clear(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "credential.json"))

	require.NoError(t, store.Clear(), "clearing an empty store is fine")

	require.NoError(t, store.Save(auth.Credential{Token: "t"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, auth.ErrNoCredential)
}

func TestCredentialStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewCredentialStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrNoCredential)
}
