package dashboard

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// App bundles the dashboard components for the commands and the TUI.
type App struct {
	Session  *SessionStore
	Guard    *Guard
	Tasks    *TaskQuery
	Users    *UserAdmin
	Settings *Settings
	Bus      *eventbus.EventBus
}

// NewApp wires every component to backend and creds.
func NewApp(backend Backend, creds auth.CredentialStore, bus *eventbus.EventBus, log zerolog.Logger, filter task.Filter) *App {
	session := NewSessionStore(backend, creds, bus, log)
	return &App{
		Session:  session,
		Guard:    NewGuard(session),
		Tasks:    NewTaskQuery(backend, bus, log, filter),
		Users:    NewUserAdmin(backend, bus, log),
		Settings: NewSettings(backend, bus, log),
		Bus:      bus,
	}
}
