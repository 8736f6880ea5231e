package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

func createAccount(t *testing.T, s *UserStore, username string, role auth.Role) Account {
	t.Helper()
	acct, err := s.Create(context.Background(), NewAccount{
		Username:     username,
		Name:         username + " name",
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return acct
}

func TestUserStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore(openTestDB(t))

	acct := createAccount(t, s, "alice", "")
	assert.Positive(t, acct.ID)
	assert.Equal(t, auth.RoleUser, acct.Role, "role defaults to USER")

	got, err := s.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	byID, err := s.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_CreateConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore(openTestDB(t))
	createAccount(t, s, "alice", auth.RoleUser)

	_, err := s.Create(ctx, NewAccount{Username: "Alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.Create(ctx, NewAccount{Username: "bob", Email: "ALICE@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	exists, err := s.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UsernameExists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserStore_ListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	s := NewUserStore(database)
	tasks := NewTaskStore(database)

	alice := createAccount(t, s, "alice", auth.RoleUser)
	bob := createAccount(t, s, "bob", auth.RoleAdmin)

	d := validDraft("Finished work")
	d.Status = "DONE"
	_, err := tasks.Create(ctx, alice.ID, d)
	require.NoError(t, err)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, 1, users[0].TasksCompleted)
	assert.Equal(t, auth.RoleAdmin, users[1].Role)

	updated, err := s.Update(ctx, alice.ID, user.Update{Name: "Alice A.", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.Equal(t, auth.RoleUser, updated.Role, "empty role keeps the current one")

	_, err = s.Update(ctx, alice.ID, user.Update{Name: "Alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Update(ctx, 999, user.Update{Name: "Nobody", Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, bob.ID))
	assert.ErrorIs(t, s.Delete(ctx, bob.ID), ErrNotFound)

	require.NoError(t, s.Delete(ctx, alice.ID))
	all, err := tasks.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "tasks are deleted with their owner")
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrNotFound, bad)
	}
}
