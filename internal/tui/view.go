package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

type tab struct {
	route dashboard.Route
	label string
	admin bool
}

var tabs = []tab{
	{dashboard.RouteTasks, "1 Tasks", false},
	{dashboard.RouteSettings, "2 Settings", false},
	{dashboard.RouteAdminUsers, "3 Users", true},
	{dashboard.RouteAdminStats, "4 Stats", true},
}

// View draws the frame for the current route. The guard runs again on
// every frame.
func (m Model) View() string {
	decision := m.app.Guard.Decide(m.route)

	var body string
	var keyMap help.KeyMap = bindings{keys.Quit}

	switch decision.Kind {
	case dashboard.DecisionLoading:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" restoring session...")
	case dashboard.DecisionRedirectLogin:
		body = m.loginView()
	case dashboard.DecisionDeny:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render(decision.Message)+"\n\n"+styles.MutedStyle.Render("press 1 to return to your tasks"))
		keyMap = bindings{keys.Tasks, keys.Quit}
	default:
		body, keyMap = m.routeView()
	}

	header := m.header()
	footer := ""
	if !m.typing() {
		footer = m.help.View(keyMap)
	}

	frame := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	frame = padLines(frame, m.height-1) + "\n" + footer

	frame = m.toastView.Overlay(frame, m.width, m.height)
	return m.modal.Overlay(frame, m.width, m.height)
}

func (m Model) routeView() (string, help.KeyMap) {
	switch m.route {
	case dashboard.RouteLogin, dashboard.RouteRegister:
		return m.loginView(), bindings{keys.Quit}
	case dashboard.RouteTasks:
		return m.tasksView(), withGlobal(tasksHelp)
	case dashboard.RouteTaskDetail:
		return m.detailView(), withGlobal(detailHelp)
	case dashboard.RouteAdminUsers:
		return m.usersView(), withGlobal(usersHelp)
	case dashboard.RouteAdminStats:
		return m.statsView(), withGlobal(bindings{keys.Refresh})
	case dashboard.RouteSettings:
		return m.settingsView(), withGlobal(settingsHelp)
	}
	return "", bindings{keys.Quit}
}

func withGlobal(b bindings) bindings {
	out := append(bindings{}, b...)
	return append(out, keys.Logout, keys.Quit)
}

func (m Model) header() string {
	title := styles.TitleStyle.Render("taskdeck")
	if !m.app.Session.IsAuthenticated() {
		return title
	}

	id := m.app.Session.Identity()
	parts := []string{title}
	for _, t := range tabs {
		if t.admin && id.Role != auth.RoleAdmin {
			continue
		}
		style := styles.ViewNormalStyle
		if t.route == m.route || (t.route == dashboard.RouteTasks && m.route == dashboard.RouteTaskDetail) {
			style = styles.ViewSelectedStyle
		}
		parts = append(parts, style.Render(t.label))
	}

	left := strings.Join(parts, " ")
	right := id.Username + " " + styles.RoleBadge(id.Role)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// padLines pads or cuts s to exactly n lines.
func padLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
