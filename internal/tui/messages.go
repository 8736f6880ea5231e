package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

// requestTimeout bounds each backend call started from the TUI on top of
// the HTTP client's own timeout.
const requestTimeout = 30 * time.Second

type (
	sessionReadyMsg   struct{ err error }
	loginResultMsg    struct{ res dashboard.Result }
	registerResultMsg struct{ res dashboard.Result }
	loggedOutMsg      struct{}

	sessionExpiredMsg struct{ reason string }

	tasksLoadedMsg  struct{ err error }
	taskLoadedMsg   struct {
		task task.Task
		err  error
	}
	taskSavedMsg struct {
		task    task.Task
		created bool
		err     error
	}
	taskDeletedMsg struct {
		id  jsonx.ID
		err error
	}

	usersLoadedMsg struct{ err error }
	userDeletedMsg struct {
		id      jsonx.ID
		deleted bool
		err     error
	}
	statsLoadedMsg struct {
		stats user.AdminStats
		err   error
	}
	settingsLoadedMsg struct {
		settings user.Settings
		err      error
	}
)

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func initSessionCmd(app *dashboard.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return sessionReadyMsg{err: app.Session.Init(ctx)}
	}
}

func loginCmd(app *dashboard.App, creds auth.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return loginResultMsg{res: app.Session.Login(ctx, creds)}
	}
}

func registerCmd(app *dashboard.App, u auth.NewUser) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return registerResultMsg{res: app.Session.Register(ctx, u)}
	}
}

func logoutCmd(app *dashboard.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		app.Session.Logout(ctx)
		return loggedOutMsg{}
	}
}

// tasksCmd runs one coordinator operation. Superseded fetches are reported
// as nil messages and dropped by the runtime.
func tasksCmd(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		err := op(ctx)
		if errors.Is(err, dashboard.ErrStale) {
			return nil
		}
		return tasksLoadedMsg{err: err}
	}
}

func getTaskCmd(app *dashboard.App, id jsonx.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		t, err := app.Tasks.GetTask(ctx, id)
		return taskLoadedMsg{task: t, err: err}
	}
}

func saveTaskCmd(app *dashboard.App, id jsonx.ID, d task.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if id == "" {
			t, err := app.Tasks.CreateTask(ctx, d)
			return taskSavedMsg{task: t, created: true, err: err}
		}
		t, err := app.Tasks.UpdateTask(ctx, id, d)
		return taskSavedMsg{task: t, err: err}
	}
}

func deleteTaskCmd(app *dashboard.App, id jsonx.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return taskDeletedMsg{id: id, err: app.Tasks.DeleteTask(ctx, id)}
	}
}

func loadUsersCmd(app *dashboard.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return usersLoadedMsg{err: app.Users.Refresh(ctx)}
	}
}

// deleteUserCmd runs after the modal was accepted, so the coordinator's
// confirmation always approves.
func deleteUserCmd(app *dashboard.App, id jsonx.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		ok, err := app.Users.Delete(ctx, id, dashboard.AlwaysConfirm)
		return userDeletedMsg{id: id, deleted: ok, err: err}
	}
}

func loadStatsCmd(app *dashboard.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		s, err := app.Users.Stats(ctx)
		return statsLoadedMsg{stats: s, err: err}
	}
}

func loadSettingsCmd(app *dashboard.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		s, err := app.Settings.Get(ctx)
		return settingsLoadedMsg{settings: s, err: err}
	}
}

func toggleEmailCmd(app *dashboard.App, enabled bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		s, err := app.Settings.SetEmailNotifications(ctx, enabled)
		return settingsLoadedMsg{settings: s, err: err}
	}
}
