package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// fakeBackend implements Backend with overridable functions and records
// every call by name.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	tokenSource    func() string
	onUnauthorized func(error)

	login          func(auth.Credentials) (api.AuthResult, error)
	register       func(auth.NewUser) (api.AuthResult, error)
	logout         func(string) error
	me             func(context.Context) (auth.Identity, error)
	available      func(string) (bool, string, error)
	listTasks      func(context.Context, task.Filter) (api.TaskPage, error)
	createTask     func(task.Draft) (task.Task, error)
	updateTask     func(jsonx.ID, task.Draft) (task.Task, error)
	deleteTask     func(jsonx.ID) error
	listUsers      func() ([]user.User, error)
	createUser     func(user.NewUser) (user.User, error)
	updateUser     func(jsonx.ID, user.Update) (user.User, error)
	deleteUser     func(jsonx.ID) error
	settings       func() (user.Settings, error)
	setEmailNotify func(bool) (user.Settings, error)
}

var errNotStubbed = errors.New("not stubbed")

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) SetTokenSource(fn func() string) { f.tokenSource = fn }
func (f *fakeBackend) OnUnauthorized(fn func(error))  { f.onUnauthorized = fn }

// expire simulates an authenticated request answered with 401.
func (f *fakeBackend) expire() {
	f.onUnauthorized(&api.Error{Status: 401, Message: "Session expired"})
}

func (f *fakeBackend) UsernameAvailable(_ context.Context, username string) (bool, string, error) {
	f.record("UsernameAvailable")
	if f.available == nil {
		return true, "Username is available", nil
	}
	return f.available(username)
}

func (f *fakeBackend) Login(_ context.Context, c auth.Credentials) (api.AuthResult, error) {
	f.record("Login")
	if f.login == nil {
		return api.AuthResult{}, errNotStubbed
	}
	return f.login(c)
}

func (f *fakeBackend) Register(_ context.Context, u auth.NewUser) (api.AuthResult, error) {
	f.record("Register")
	if f.register == nil {
		return api.AuthResult{}, errNotStubbed
	}
	return f.register(u)
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.record("Logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(token)
}

func (f *fakeBackend) Me(ctx context.Context) (auth.Identity, error) {
	f.record("Me")
	if f.me == nil {
		return auth.Identity{}, errNotStubbed
	}
	return f.me(ctx)
}

func (f *fakeBackend) ListTasks(ctx context.Context, filter task.Filter) (api.TaskPage, error) {
	f.record("ListTasks")
	if f.listTasks == nil {
		return api.TaskPage{}, errNotStubbed
	}
	return f.listTasks(ctx, filter)
}

func (f *fakeBackend) GetTask(_ context.Context, id jsonx.ID) (task.Task, error) {
	f.record("GetTask")
	return task.Task{ID: id, Title: "Fetched"}, nil
}

func (f *fakeBackend) CreateTask(_ context.Context, d task.Draft) (task.Task, error) {
	f.record("CreateTask")
	if f.createTask == nil {
		return task.Task{}, errNotStubbed
	}
	return f.createTask(d)
}

func (f *fakeBackend) UpdateTask(_ context.Context, id jsonx.ID, d task.Draft) (task.Task, error) {
	f.record("UpdateTask")
	if f.updateTask == nil {
		return task.Task{}, errNotStubbed
	}
	return f.updateTask(id, d)
}

func (f *fakeBackend) DeleteTask(_ context.Context, id jsonx.ID) error {
	f.record("DeleteTask")
	if f.deleteTask == nil {
		return nil
	}
	return f.deleteTask(id)
}

func (f *fakeBackend) ListUsers(context.Context) ([]user.User, error) {
	f.record("ListUsers")
	if f.listUsers == nil {
		return nil, errNotStubbed
	}
	return f.listUsers()
}

func (f *fakeBackend) CreateUser(_ context.Context, n user.NewUser) (user.User, error) {
	f.record("CreateUser")
	if f.createUser == nil {
		return user.User{}, errNotStubbed
	}
	return f.createUser(n)
}

func (f *fakeBackend) UpdateUser(_ context.Context, id jsonx.ID, u user.Update) (user.User, error) {
	f.record("UpdateUser")
	if f.updateUser == nil {
		return user.User{}, errNotStubbed
	}
	return f.updateUser(id, u)
}

func (f *fakeBackend) DeleteUser(_ context.Context, id jsonx.ID) error {
	f.record("DeleteUser")
	if f.deleteUser == nil {
		return nil
	}
	return f.deleteUser(id)
}

func (f *fakeBackend) AdminStats(context.Context) (user.AdminStats, error) {
	f.record("AdminStats")
	return user.AdminStats{TotalUsers: 2, TotalTasks: 5}, nil
}

func (f *fakeBackend) DownloadReport(_ context.Context, w io.Writer) (int64, error) {
	f.record("DownloadReport")
	n, err := io.Copy(w, strings.NewReader("ID,Title,Status,Priority,AssignedTo\n"))
	return n, err
}

func (f *fakeBackend) Settings(context.Context) (user.Settings, error) {
	f.record("Settings")
	if f.settings == nil {
		return user.Settings{}, errNotStubbed
	}
	return f.settings()
}

func (f *fakeBackend) SetEmailNotifications(_ context.Context, enabled bool) (user.Settings, error) {
	f.record("SetEmailNotifications")
	if f.setEmailNotify == nil {
		return user.Settings{}, errNotStubbed
	}
	return f.setEmailNotify(enabled)
}

// memCreds is an in-memory auth.CredentialStore.
type memCreds struct {
	mu    sync.Mutex
	cred  *auth.Credential
	saves int
}

func (m *memCreds) Load() (auth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return auth.Credential{}, auth.ErrNoCredential
	}
	return *m.cred, nil
}

func (m *memCreds) Save(c auth.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &c
	m.saves++
	return nil
}

func (m *memCreds) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

func (m *memCreds) stored() (auth.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return auth.Credential{}, false
	}
	return *m.cred, true
}

// signToken returns an HS256 token for username expiring at exp.
func signToken(t *testing.T, username string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

var (
	alice = auth.Identity{ID: "1", Username: "alice", Email: "alice@example.com", Role: auth.RoleUser}
	root  = auth.Identity{ID: "2", Username: "admin", Email: "admin@example.com", Role: auth.RoleAdmin}
)

// due is a fixed due date used in task fixtures.
var due = jsonx.At(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
