package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/data/db"
	"github.com/hay-kot/taskdeck/internal/devserver"
	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
	"github.com/hay-kot/taskdeck/pkg/tuitest"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

// newTestApp returns a dashboard talking to a seeded dev server.
func newTestApp(t *testing.T) *dashboard.App {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	srv, err := devserver.New(database, devserver.Config{
		Secret:     "tui-test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, srv.Seed(context.Background(), true))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.New(api.Config{BaseURL: ts.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)

	creds := jsonfile.NewCredentialStore(filepath.Join(t.TempDir(), "credential.json"))
	return dashboard.NewApp(client, creds, testbus.New(t).EventBus, zerolog.Nop(), task.DefaultFilter())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// press sends msgs in order and returns the command of the last one.
func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = update(t, m, msg)
	}
	return m, cmd
}

// run executes a request command and feeds its message back.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func view(m Model) string {
	return tuitest.StripANSI(m.View())
}

// started returns a model whose session has settled.
func started(t *testing.T, app *dashboard.App) Model {
	t.Helper()
	m := New(app, Opts{Now: func() time.Time { return testNow }})
	m, _ = update(t, m, tuitest.WindowSize(120, 40))
	m, _ = update(t, m, initSessionCmd(app)())
	return m
}

// signIn completes the login form and loads the task list.
func signIn(t *testing.T, m Model, username, password string) Model {
	t.Helper()
	require.Equal(t, dashboard.RouteLogin, m.route)

	m, _ = press(t, m, tuitest.Type(username)...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type(password)...)
	m, cmd := update(t, m, tuitest.KeyEnter())

	m, cmd = run(t, m, cmd)
	if cmd != nil {
		m, _ = run(t, m, cmd)
	}
	return m
}

func TestModel_RedirectsToLoginWithoutSession(t *testing.T) {
	app := newTestApp(t)

	m := New(app, Opts{})
	assert.Contains(t, view(m), "restoring session", "nothing protected renders before the session settles")
	assert.NotContains(t, view(m), "Write release notes")

	m, _ = update(t, m, initSessionCmd(app)())
	assert.Equal(t, dashboard.RouteLogin, m.route)
	assert.Equal(t, dashboard.RouteTasks, m.returnTo)
	assert.Contains(t, view(m), "Sign in")
}

func TestModel_LoginShowsTasks(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	assert.Equal(t, dashboard.RouteTasks, m.route)
	assert.True(t, app.Session.IsAuthenticated())

	out := view(m)
	assert.Contains(t, out, "Write release notes")
	assert.Contains(t, out, "Renew certificates")
	assert.Contains(t, out, "demo")
	assert.NotContains(t, out, "3 Users", "admin tabs are hidden from users")
}

func TestModel_LoginFailureKeepsForm(t *testing.T) {
	app := newTestApp(t)
	m := started(t, app)

	m, _ = press(t, m, tuitest.Type("demo")...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type("wrong-password")...)
	m, cmd := update(t, m, tuitest.KeyEnter())
	m, _ = run(t, m, cmd)

	assert.Equal(t, dashboard.RouteLogin, m.route)
	require.NotNil(t, m.login.err)
	assert.NotEmpty(t, m.login.err.Message)
	assert.Empty(t, m.login.value(fieldPassword), "password is cleared after a failure")
	assert.Equal(t, "demo", m.login.value(fieldUsername))
}

func TestModel_RegisterToggle(t *testing.T) {
	app := newTestApp(t)
	m := started(t, app)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, dashboard.RouteRegister, m.route)
	assert.Contains(t, view(m), "Create an account")

	m, _ = press(t, m, tuitest.Type("newbie")...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type("newbie@example.com")...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type("secret1")...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type("secret1")...)
	m, cmd := update(t, m, tuitest.KeyEnter())
	m, _ = run(t, m, cmd)

	assert.Equal(t, dashboard.RouteLogin, m.route, "registration returns to sign in")
	assert.Equal(t, "newbie", m.login.value(fieldUsername))
	assert.False(t, app.Session.IsAuthenticated())
}

func TestModel_NonAdminIsDenied(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	m, cmd := update(t, m, tuitest.KeyPress('3'))
	assert.Nil(t, cmd, "a denied route loads nothing")
	assert.Equal(t, dashboard.RouteAdminUsers, m.route)
	assert.Contains(t, view(m), dashboard.DeniedAdminRoute)

	m, cmd = update(t, m, tuitest.KeyPress('d'))
	assert.Nil(t, cmd)
	assert.False(t, m.modal.Visible(), "keys never reach a denied screen")

	m, cmd = update(t, m, tuitest.KeyPress('1'))
	require.NotNil(t, cmd)
	assert.Equal(t, dashboard.RouteTasks, m.route)
}

func TestModel_AdminUsersAndStats(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), devserver.AdminUsername, devserver.AdminPassword)
	assert.Contains(t, view(m), "3 Users")

	m, cmd := update(t, m, tuitest.KeyPress('3'))
	m, _ = run(t, m, cmd)
	assert.Equal(t, dashboard.RouteAdminUsers, m.route)
	out := view(m)
	assert.Contains(t, out, "demo@taskdeck.local")
	assert.Contains(t, out, "Page 1 of 1")

	m, cmd = update(t, m, tuitest.KeyPress('4'))
	m, _ = run(t, m, cmd)
	require.True(t, m.stats.ready)
	assert.Equal(t, 2, m.stats.stats.TotalUsers)
	assert.Contains(t, view(m), "System overview")
}

func TestModel_AdminDeletesUserAfterConfirm(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), devserver.AdminUsername, devserver.AdminPassword)

	m, cmd := update(t, m, tuitest.KeyPress('3'))
	m, _ = run(t, m, cmd)

	m, _ = press(t, m, tuitest.KeyPress('/'))
	m, _ = press(t, m, tuitest.Type("demo")...)
	m, _ = update(t, m, tuitest.KeyEnter())

	rows, _ := m.visibleUsers()
	require.Len(t, rows, 1)

	m, cmd = update(t, m, tuitest.KeyPress('d'))
	assert.Nil(t, cmd)
	require.True(t, m.modal.Visible())

	m, cmd = update(t, m, tuitest.KeyPress('y'))
	m, _ = run(t, m, cmd)

	_, found := app.Users.Find(rows[0].ID)
	assert.False(t, found)
	assert.Contains(t, view(m), "No users found")
}

func TestModel_SessionExpiredReturnsToLogin(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	m, _ = update(t, m, tuitest.KeyPress('2'))
	require.Equal(t, dashboard.RouteSettings, m.route)

	app.Session.Logout(context.Background())
	m, _ = update(t, m, sessionExpiredMsg{reason: "Session expired"})

	assert.Equal(t, dashboard.RouteLogin, m.route)
	assert.Equal(t, dashboard.RouteSettings, m.returnTo)
	assert.NotContains(t, view(m), "Email notifications")
}

func TestModel_StatusFilterCycles(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	m, cmd := update(t, m, tuitest.KeyPress('f'))
	m, _ = run(t, m, cmd)

	assert.Equal(t, task.StatusTodo, app.Tasks.Filter().Status)
	for _, tk := range app.Tasks.Tasks() {
		assert.Equal(t, task.StatusTodo, tk.Status)
	}
	assert.Contains(t, view(m), "status: To Do")
}

func TestModel_DeleteTaskNeedsConfirmation(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")
	before := len(app.Tasks.Tasks())

	m, _ = update(t, m, tuitest.KeyPress('d'))
	require.True(t, m.modal.Visible())
	m, cmd := update(t, m, tuitest.KeyEsc())
	assert.Nil(t, cmd)
	assert.Len(t, app.Tasks.Tasks(), before)

	m, _ = update(t, m, tuitest.KeyPress('d'))
	m, cmd = update(t, m, tuitest.KeyPress('y'))
	_, _ = run(t, m, cmd)
	assert.Len(t, app.Tasks.Tasks(), before-1)
}

func TestModel_TaskFormValidatesBeforeSaving(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	m, _ = update(t, m, tuitest.KeyPress('n'))
	require.True(t, m.form.open)
	assert.True(t, m.typing(), "global keys are off while the form is open")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd, "invalid form makes no request")
	assert.Contains(t, m.form.errs, "title")
	assert.Contains(t, m.form.errs, "description")

	m, _ = press(t, m, tuitest.Type("Plan the offsite")...)
	m, _ = update(t, m, tuitest.Key(tea.KeyTab))
	m, _ = press(t, m, tuitest.Type("Book rooms and travel")...)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = run(t, m, cmd)

	assert.False(t, m.form.open)
	tasks := app.Tasks.Tasks()
	require.NotEmpty(t, tasks)
	assert.Equal(t, "Plan the offsite", tasks[0].Title, "created tasks are prepended")
}

func TestModel_OpenDetail(t *testing.T) {
	app := newTestApp(t)
	m := signIn(t, started(t, app), "demo", "demo123")

	selected, ok := m.selectedTask()
	require.True(t, ok)

	m, cmd := update(t, m, tuitest.KeyEnter())
	assert.Equal(t, dashboard.RouteTaskDetail, m.route)
	m, _ = run(t, m, cmd)

	require.True(t, m.detail.loaded)
	assert.Contains(t, view(m), selected.Title)

	m, _ = update(t, m, tuitest.KeyEsc())
	assert.Equal(t, dashboard.RouteTasks, m.route)
}

func TestCycle(t *testing.T) {
	assert.Equal(t, task.StatusTodo, cycle(task.Statuses, ""))
	assert.Equal(t, task.StatusInProgress, cycle(task.Statuses, task.StatusTodo))
	assert.Equal(t, task.Status(""), cycle(task.Statuses, task.StatusDone))
	assert.Equal(t, task.PriorityLow, step(task.Priorities, task.PriorityMedium, -1))
	assert.Equal(t, task.PriorityLow, step(task.Priorities, task.PriorityHigh, 1))
}
