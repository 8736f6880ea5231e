package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

type usersView struct {
	page      int
	cursor    int
	loading   bool
	searching bool
	search    textinput.Model
}

func newUsersView() usersView {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "name, username or email"
	in.CharLimit = 100
	in.Width = 40
	return usersView{search: in}
}

func (v usersView) query() string {
	return strings.TrimSpace(v.search.Value())
}

// visibleUsers returns the rows on the current page and the page count, with
// page and cursor clamped into range.
func (m *Model) visibleUsers() ([]user.User, int) {
	rows, total := m.app.Users.Page(m.users.query(), m.users.page)
	m.users.page = min(m.users.page, max(total-1, 0))
	m.users.cursor = min(m.users.cursor, max(len(rows)-1, 0))
	return rows, total
}

func (m Model) usersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.users

	if v.searching {
		switch msg.String() {
		case "enter", "esc":
			v.searching = false
			v.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		// Searching is client side and always restarts at the first page.
		v.page, v.cursor = 0, 0
		return m, cmd
	}

	rows, total := m.visibleUsers()

	switch {
	case key.Matches(msg, keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		v.cursor = min(v.cursor+1, max(len(rows)-1, 0))
	case key.Matches(msg, keys.NextPage):
		if v.page < total-1 {
			v.page++
			v.cursor = 0
		}
	case key.Matches(msg, keys.PrevPage):
		if v.page > 0 {
			v.page--
			v.cursor = 0
		}
	case key.Matches(msg, keys.Search):
		v.searching = true
		return m, v.search.Focus()
	case key.Matches(msg, keys.Back):
		v.search.Reset()
		v.page, v.cursor = 0, 0
	case key.Matches(msg, keys.Refresh):
		v.loading = true
		return m, loadUsersCmd(m.app)
	case key.Matches(msg, keys.Delete):
		if v.cursor < len(rows) {
			u := rows[v.cursor]
			prompt := fmt.Sprintf("Delete %s (%s)? Their tasks are removed too.", u.DisplayName(), u.Username)
			m.modal = NewModal("Delete user", prompt, deleteUserCmd(m.app, u.ID))
		}
	}
	return m, nil
}

func (m Model) updateUsers(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.users.loading = false
		m.visibleUsers()
		return m, nil
	case userDeletedMsg:
		if msg.err != nil {
			return m, m.errorToast(msg.err)
		}
		m.visibleUsers()
		return m, nil
	}
	return m, nil
}

func (m Model) usersView() string {
	rows, total := m.visibleUsers()

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Users"))
	b.WriteString("\n\n")

	if m.users.searching || m.users.query() != "" {
		b.WriteString(m.users.search.View())
		b.WriteString("\n")
	}

	if msg := m.app.Users.Err(); msg != "" {
		b.WriteString(styles.ErrorStyle.Render(msg))
		b.WriteString("\n")
	}

	switch {
	case len(rows) == 0 && m.users.loading:
		b.WriteString(m.spinner.View() + " loading users...")
	case len(rows) == 0:
		b.WriteString(styles.MutedStyle.Render("No users found."))
	default:
		b.WriteString(userTable(rows, m.users.cursor))
	}
	b.WriteString("\n")

	if total > 0 {
		matched := len(m.app.Users.Search(m.users.query()))
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("Page %d of %d • %d users", m.users.page+1, total, matched)))
	}
	return b.String()
}

func userTable(users []user.User, cursor int) string {
	header := fmt.Sprintf("  %-16s %-22s %-28s %-6s %s", "USERNAME", "NAME", "EMAIL", "ROLE", "DONE")
	lines := []string{styles.TableHeaderStyle.Render(header)}

	for i, u := range users {
		line := fmt.Sprintf("%-16s %-22s %-28s %s %d",
			truncate(u.Username, 16),
			truncate(u.DisplayName(), 22),
			truncate(u.Email, 28),
			styles.RoleBadge(u.Role),
			u.TasksCompleted,
		)
		if i == cursor {
			lines = append(lines, styles.RowSelectedStyle.Render(styles.IconSelected+" "+line))
		} else {
			lines = append(lines, styles.RowStyle.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

var usersHelp = bindings{keys.Up, keys.Down, keys.Search, keys.Back, keys.PrevPage, keys.NextPage, keys.Delete, keys.Refresh}
