// Package dashboard holds the client side state machines of the task
// dashboard: the session store, the route guard, the task query coordinator
// and the administrator's user management. Views and commands drive these
// objects; none of them know about the terminal.
package dashboard

import (
	"context"
	"errors"
	"io"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// ErrStale is returned by a fetch whose response arrived after a newer fetch
// was dispatched. Its result was discarded.
var ErrStale = errors.New("stale response discarded")

// AuthAPI is the part of the backend the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds auth.Credentials) (api.AuthResult, error)
	Register(ctx context.Context, u auth.NewUser) (api.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (auth.Identity, error)
	UsernameAvailable(ctx context.Context, username string) (bool, string, error)
	SetTokenSource(fn func() string)
	OnUnauthorized(fn func(error))
}

// TaskAPI is the part of the backend the task query coordinator talks to.
type TaskAPI interface {
	ListTasks(ctx context.Context, f task.Filter) (api.TaskPage, error)
	GetTask(ctx context.Context, id jsonx.ID) (task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	UpdateTask(ctx context.Context, id jsonx.ID, d task.Draft) (task.Task, error)
	DeleteTask(ctx context.Context, id jsonx.ID) error
}

// UserAPI is the administrator part of the backend.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	CreateUser(ctx context.Context, n user.NewUser) (user.User, error)
	UpdateUser(ctx context.Context, id jsonx.ID, u user.Update) (user.User, error)
	DeleteUser(ctx context.Context, id jsonx.ID) error
	AdminStats(ctx context.Context) (user.AdminStats, error)
	DownloadReport(ctx context.Context, w io.Writer) (int64, error)
}

// SettingsAPI reads and changes the current user's settings.
type SettingsAPI interface {
	Settings(ctx context.Context) (user.Settings, error)
	SetEmailNotifications(ctx context.Context, enabled bool) (user.Settings, error)
}

// Backend is everything the dashboard needs. *api.Client implements it.
type Backend interface {
	AuthAPI
	TaskAPI
	UserAPI
	SettingsAPI
}

var _ Backend = (*api.Client)(nil)
