package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	acct := createAccount(t, NewUserStore(database), "alice", auth.RoleUser)
	s := NewSettingsStore(database)

	got, err := s.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, user.DefaultSettings(), got, "missing row yields defaults")

	got, err = s.SetEmailNotifications(ctx, acct.ID, false)
	require.NoError(t, err)
	assert.False(t, got.EmailNotifications)

	got, err = s.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, got.EmailNotifications)
	assert.Equal(t, "light", got.Theme)

	got, err = s.SetEmailNotifications(ctx, acct.ID, true)
	require.NoError(t, err)
	assert.True(t, got.EmailNotifications)
}
