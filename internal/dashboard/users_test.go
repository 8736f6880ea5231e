package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

func newTestUserAdmin(t *testing.T, users ...user.User) (*UserAdmin, *fakeBackend, *testbus.Bus) {
	t.Helper()
	fb := &fakeBackend{
		listUsers: func() ([]user.User, error) { return users, nil },
	}
	tb := testbus.New(t)
	a := NewUserAdmin(fb, tb.EventBus, zerolog.Nop())
	require.NoError(t, a.Refresh(context.Background()))
	return a, fb, tb
}

func sampleUsers(n int) []user.User {
	out := make([]user.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, user.User{
			ID:       jsonx.ID(fmt.Sprint(i)),
			Username: fmt.Sprintf("user%d", i),
			Name:     fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Role:     auth.RoleUser,
		})
	}
	return out
}

func TestUserAdmin_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid form makes no request", func(t *testing.T) {
		a, fb, _ := newTestUserAdmin(t)
		_, err := a.Add(ctx, user.NewUser{Name: "", Email: "nope", Password: "123"})
		require.Error(t, err)
		assert.Zero(t, fb.count("CreateUser"))
	})

	t.Run("appends the created user", func(t *testing.T) {
		a, fb, tb := newTestUserAdmin(t, sampleUsers(2)...)
		fb.createUser = func(n user.NewUser) (user.User, error) {
			return user.User{ID: "3", Username: n.Name, Name: n.Name, Email: n.Email, Role: auth.RoleUser}, nil
		}

		created, err := a.Add(ctx, user.NewUser{Name: "carol", Email: "carol@example.com", Password: "secret1"})
		require.NoError(t, err)

		users := a.Users()
		require.Len(t, users, 3)
		assert.Equal(t, created, users[2])

		payloads := testbus.Payloads[eventbus.UserCreatedPayload](tb, eventbus.EventUserCreated)
		require.Len(t, payloads, 1)
		assert.Equal(t, "carol", payloads[0].User.Name)
	})

	t.Run("backend failure leaves the list", func(t *testing.T) {
		a, fb, _ := newTestUserAdmin(t, sampleUsers(2)...)
		fb.createUser = func(user.NewUser) (user.User, error) {
			return user.User{}, &api.Error{Status: 400, Message: "Email already in use"}
		}

		_, err := a.Add(ctx, user.NewUser{Name: "carol", Email: "user1@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, "Email already in use", api.Message(err))
		assert.Len(t, a.Users(), 2)
	})
}

func TestUserAdmin_Edit(t *testing.T) {
	ctx := context.Background()
	a, fb, tb := newTestUserAdmin(t, sampleUsers(3)...)

	fb.updateUser = func(id jsonx.ID, u user.Update) (user.User, error) {
		return user.User{ID: id, Username: "user2", Name: u.Name, Email: u.Email, Role: u.Role}, nil
	}

	upd := user.UpdateOf(a.Users()[1])
	upd.Name = "Renamed"
	upd.Role = auth.RoleAdmin

	_, err := a.Edit(ctx, "2", upd)
	require.NoError(t, err)

	got, ok := a.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, auth.RoleAdmin, got.Role)
	assert.Len(t, a.Users(), 3)
	tb.AssertPublished(t, eventbus.EventUserUpdated)
}

func TestUserAdmin_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("declined makes no request", func(t *testing.T) {
		a, fb, tb := newTestUserAdmin(t, sampleUsers(2)...)

		var prompt string
		deleted, err := a.Delete(ctx, "1", ConfirmFunc(func(_ context.Context, p string) (bool, error) {
			prompt = p
			return false, nil
		}))
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Contains(t, prompt, "User 1")
		assert.Zero(t, fb.count("DeleteUser"))
		assert.Len(t, a.Users(), 2)
		assert.Empty(t, testbus.Payloads[eventbus.UserDeletedPayload](tb, eventbus.EventUserDeleted))
	})

	t.Run("confirmed removes", func(t *testing.T) {
		a, fb, tb := newTestUserAdmin(t, sampleUsers(2)...)

		deleted, err := a.Delete(ctx, "1", AlwaysConfirm)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 1, fb.count("DeleteUser"))

		_, ok := a.Find("1")
		assert.False(t, ok)
		tb.AssertPublished(t, eventbus.EventUserDeleted)
	})

	t.Run("confirmation error aborts", func(t *testing.T) {
		a, fb, _ := newTestUserAdmin(t, sampleUsers(1)...)
		_, err := a.Delete(ctx, "1", ConfirmFunc(func(context.Context, string) (bool, error) {
			return false, errors.New("user aborted")
		}))
		require.Error(t, err)
		assert.Zero(t, fb.count("DeleteUser"))
	})

	t.Run("nil confirmer is refused", func(t *testing.T) {
		a, fb, _ := newTestUserAdmin(t, sampleUsers(1)...)
		_, err := a.Delete(ctx, "1", nil)
		require.Error(t, err)
		assert.Zero(t, fb.count("DeleteUser"))
	})
}

func TestUserAdmin_SearchAndPage(t *testing.T) {
	a, _, _ := newTestUserAdmin(t, sampleUsers(20)...)

	page, total := a.Page("", 0)
	assert.Len(t, page, user.PageSize)
	assert.Equal(t, 3, total)

	page, total = a.Page("", 9)
	assert.Len(t, page, 4, "page index is clamped to the last page")
	assert.Equal(t, 3, total)

	found := a.Search("USER1")
	assert.Len(t, found, 11, "user1 and user10 to user19")
}

func TestUserAdmin_RefreshFailureKeepsList(t *testing.T) {
	a, fb, _ := newTestUserAdmin(t, sampleUsers(2)...)
	fb.listUsers = func() ([]user.User, error) { return nil, &api.Error{Status: 403, Message: "Forbidden"} }

	err := a.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrForbidden)
	assert.Len(t, a.Users(), 2)
	assert.NotEmpty(t, a.Err())
}

func TestUserAdmin_Report(t *testing.T) {
	a, _, _ := newTestUserAdmin(t)

	var buf bytes.Buffer
	n, err := a.DownloadReport(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "ID,Title,Status,Priority,AssignedTo\n", buf.String())

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{}
	tb := testbus.New(t)
	s := NewSettings(fb, tb.EventBus, zerolog.Nop())

	assert.Equal(t, user.DefaultSettings(), s.Current())
	assert.False(t, s.Loaded())

	fb.settings = func() (user.Settings, error) {
		st := user.DefaultSettings()
		st.EmailNotifications = false
		return st, nil
	}
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.EmailNotifications)
	assert.True(t, s.Loaded())

	fb.setEmailNotify = func(enabled bool) (user.Settings, error) {
		st := user.DefaultSettings()
		st.EmailNotifications = enabled
		return st, nil
	}
	got, err = s.SetEmailNotifications(ctx, true)
	require.NoError(t, err)
	assert.True(t, got.EmailNotifications)
	assert.True(t, s.Current().EmailNotifications)
	tb.AssertPublished(t, eventbus.EventSettingsChanged)

	fb.setEmailNotify = func(bool) (user.Settings, error) { return user.Settings{}, errors.New("boom") }
	_, err = s.SetEmailNotifications(ctx, false)
	require.Error(t, err)
	assert.True(t, s.Current().EmailNotifications, "failure keeps the last saved value")
}
