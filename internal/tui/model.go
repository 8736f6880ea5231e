// Package tui is the terminal dashboard. Every screen is a route checked by
// the dashboard's route guard on each render, so protected content is never
// drawn before the session is confirmed.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

// Opts configures the dashboard model.
type Opts struct {
	// Route is shown after the session settles. Defaults to the task list.
	Route dashboard.Route
	// Now overrides the clock used for due dates and statistics.
	Now func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	app    *dashboard.App
	bridge *busBridge
	now    func() time.Time

	// route is the screen on display. returnTo is where a successful login
	// continues to.
	route    dashboard.Route
	returnTo dashboard.Route

	width  int
	height int

	spinner   spinner.Model
	help      help.Model
	toasts    *ToastController
	toastView *ToastView
	modal     Modal

	login    loginView
	tasks    tasksView
	form     taskForm
	detail   detailView
	users    usersView
	stats    statsView
	settings settingsView
}

// New creates the dashboard for app. The session is restored in Init.
func New(app *dashboard.App, opts Opts) Model {
	if opts.Route == "" {
		opts.Route = dashboard.RouteTasks
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.TitleStyle

	toasts := NewToastController()

	return Model{
		app:       app,
		bridge:    newBusBridge(app.Bus),
		now:       opts.Now,
		route:     opts.Route,
		returnTo:  opts.Route,
		width:     80,
		height:    24,
		spinner:   sp,
		help:      help.New(),
		toasts:    toasts,
		toastView: NewToastView(toasts),
		login:     newLoginView(),
		tasks:     newTasksView(),
		detail:    newDetailView(80, 20),
		users:     newUsersView(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(initSessionCmd(m.app), m.spinner.Tick, m.bridge.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.detail.resize(msg.Width, m.bodyHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case eventbus.NotificationPublishedPayload:
		return m, tea.Batch(m.notify(msg), m.bridge.wait())

	case sessionExpiredMsg:
		if m.route != dashboard.RouteLogin && m.route != dashboard.RouteRegister {
			m.returnTo = m.route
		}
		m.modal = Modal{}
		m.form = taskForm{}
		return m, tea.Batch(m.navigate(m.returnTo), m.bridge.wait())

	case sessionReadyMsg:
		var cmds []tea.Cmd
		if msg.err != nil {
			cmds = append(cmds, m.notify(eventbus.NotificationPublishedPayload{
				Level:   eventbus.LevelError,
				Message: "could not reach the server, please sign in again",
			}))
		}
		cmds = append(cmds, m.navigate(m.returnTo))
		return m, tea.Batch(cmds...)

	case loginResultMsg, registerResultMsg, loggedOutMsg:
		return m.updateLogin(msg)

	case tasksLoadedMsg, taskSavedMsg, taskDeletedMsg:
		return m.updateTasks(msg)

	case taskLoadedMsg:
		return m.updateDetail(msg)

	case usersLoadedMsg, userDeletedMsg:
		return m.updateUsers(msg)

	case statsLoadedMsg:
		m.stats.loaded(msg)
		return m, nil

	case settingsLoadedMsg:
		m.settings.loaded(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// navigate asks the guard about route and moves there. A signed out user
// lands on the login screen and returns to route after signing in.
func (m *Model) navigate(route dashboard.Route) tea.Cmd {
	decision := m.app.Guard.Decide(route)

	switch decision.Kind {
	case dashboard.DecisionLoading:
		m.route = route
		return nil
	case dashboard.DecisionRedirectLogin:
		if !route.IsPublic() {
			m.returnTo = route
		}
		m.route = dashboard.RouteLogin
		return m.login.reset(false)
	case dashboard.DecisionDeny:
		m.route = route
		return nil
	}

	m.route = route
	return m.enter(route)
}

// enter starts the load a route needs when it is shown.
func (m *Model) enter(route dashboard.Route) tea.Cmd {
	switch route {
	case dashboard.RouteLogin:
		return m.login.reset(false)
	case dashboard.RouteRegister:
		return m.login.reset(true)
	case dashboard.RouteTasks:
		m.tasks.loading = true
		return tasksCmd(m.app.Tasks.Fetch)
	case dashboard.RouteTaskDetail:
		m.detail.loading = true
		return getTaskCmd(m.app, m.detail.id)
	case dashboard.RouteAdminUsers:
		m.users.loading = true
		return loadUsersCmd(m.app)
	case dashboard.RouteAdminStats:
		m.stats.loading = true
		return loadStatsCmd(m.app)
	case dashboard.RouteSettings:
		m.settings.loading = true
		return loadSettingsCmd(m.app)
	}
	return nil
}

func (m *Model) notify(n eventbus.NotificationPublishedPayload) tea.Cmd {
	m.toasts.Push(n)
	if m.toasts.Ticking() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

func (m *Model) errorToast(err error) tea.Cmd {
	return m.notify(eventbus.NotificationPublishedPayload{Level: eventbus.LevelError, Message: api.Message(err)})
}

// typing reports whether a text input owns the keyboard.
func (m Model) typing() bool {
	switch m.route {
	case dashboard.RouteLogin, dashboard.RouteRegister:
		return true
	case dashboard.RouteTasks, dashboard.RouteTaskDetail:
		return m.form.open || m.tasks.searching
	case dashboard.RouteAdminUsers:
		return m.users.searching
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal.Visible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tasks):
			return m, m.navigate(dashboard.RouteTasks)
		case key.Matches(msg, keys.Settings):
			return m, m.navigate(dashboard.RouteSettings)
		case key.Matches(msg, keys.Users):
			return m, m.navigate(dashboard.RouteAdminUsers)
		case key.Matches(msg, keys.Stats):
			return m, m.navigate(dashboard.RouteAdminStats)
		case key.Matches(msg, keys.Logout):
			return m, logoutCmd(m.app)
		}
	}

	// Keys only reach a screen the guard lets through.
	if m.app.Guard.Decide(m.route).Kind != dashboard.DecisionRender {
		return m, nil
	}

	switch m.route {
	case dashboard.RouteLogin, dashboard.RouteRegister:
		return m.loginKey(msg)
	case dashboard.RouteTasks:
		return m.tasksKey(msg)
	case dashboard.RouteTaskDetail:
		return m.detailKey(msg)
	case dashboard.RouteAdminUsers:
		return m.usersKey(msg)
	case dashboard.RouteAdminStats:
		if key.Matches(msg, keys.Refresh) {
			return m, m.enter(dashboard.RouteAdminStats)
		}
	case dashboard.RouteSettings:
		return m.settingsKey(msg)
	}
	return m, nil
}

func (m Model) bodyHeight() int {
	// header, blank line, help line
	return max(m.height-4, 3)
}
