package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

// Login form fields. The register form shows all of them, the login form
// only the username and password.
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

var fieldNames = [fieldCount]string{"username", "email", "password", "confirmPassword"}

type loginView struct {
	register bool
	inputs   []textinput.Model
	focus    int
	busy     bool
	err      *dashboard.ResultError
}

func newLoginView() loginView {
	labels := [fieldCount]string{"Username", "Email", "Password", "Confirm password"}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = labels[i]
		in.CharLimit = 128
		in.Width = 32
		if i == fieldPassword || i == fieldConfirm {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}

	return loginView{inputs: inputs}
}

func (v *loginView) fields() []int {
	if v.register {
		return []int{fieldUsername, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

// reset switches between the login and register forms and focuses the
// first field. The username survives the switch.
func (v *loginView) reset(register bool) tea.Cmd {
	username := v.inputs[fieldUsername].Value()
	for i := range v.inputs {
		v.inputs[i].Reset()
		v.inputs[i].Blur()
	}
	v.inputs[fieldUsername].SetValue(username)
	v.register = register
	v.focus = 0
	v.busy = false
	v.err = nil
	return v.inputs[fieldUsername].Focus()
}

func (v *loginView) move(delta int) tea.Cmd {
	fields := v.fields()
	v.inputs[fields[v.focus]].Blur()
	v.focus = (v.focus + delta + len(fields)) % len(fields)
	return v.inputs[fields[v.focus]].Focus()
}

func (v *loginView) value(field int) string {
	return v.inputs[field].Value()
}

func (v *loginView) credentials() auth.Credentials {
	return auth.Credentials{
		Username: strings.TrimSpace(v.value(fieldUsername)),
		Password: v.value(fieldPassword),
	}
}

func (v *loginView) newUser() auth.NewUser {
	return auth.NewUser{
		Username:        strings.TrimSpace(v.value(fieldUsername)),
		Email:           strings.TrimSpace(v.value(fieldEmail)),
		Password:        v.value(fieldPassword),
		ConfirmPassword: v.value(fieldConfirm),
	}
}

func (m Model) loginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.login
	if v.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		return m, v.move(1)
	case "shift+tab", "up":
		return m, v.move(-1)
	case "ctrl+r":
		if v.register {
			m.route = dashboard.RouteLogin
		} else {
			m.route = dashboard.RouteRegister
		}
		return m, v.reset(!v.register)
	case "esc":
		return m, tea.Quit
	case "enter":
		if v.focus < len(v.fields())-1 {
			return m, v.move(1)
		}
		v.busy = true
		v.err = nil
		if v.register {
			return m, registerCmd(m.app, v.newUser())
		}
		return m, loginCmd(m.app, v.credentials())
	}

	field := v.fields()[v.focus]
	var cmd tea.Cmd
	v.inputs[field], cmd = v.inputs[field].Update(msg)
	return m, cmd
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.login.busy = false
		if !msg.res.Success {
			m.login.err = msg.res.Error
			m.login.inputs[fieldPassword].Reset()
			return m, nil
		}
		next := m.returnTo
		m.returnTo = dashboard.RouteTasks
		return m, m.navigate(next)

	case registerResultMsg:
		m.login.busy = false
		if !msg.res.Success {
			m.login.err = msg.res.Error
			return m, nil
		}
		m.route = dashboard.RouteLogin
		cmd := m.login.reset(false)
		return m, tea.Batch(cmd, m.notify(eventbus.NotificationPublishedPayload{
			Level:   eventbus.LevelSuccess,
			Message: "Account created, please sign in",
		}))

	case loggedOutMsg:
		m.returnTo = dashboard.RouteTasks
		m.route = dashboard.RouteLogin
		return m, m.login.reset(false)
	}
	return m, nil
}

func (m Model) loginView() string {
	v := m.login

	title := "Sign in"
	switchHint := "ctrl+r create an account"
	if v.register {
		title = "Create an account"
		switchHint = "ctrl+r back to sign in"
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	if v.err != nil && v.err.Message != "" {
		b.WriteString(styles.ErrorStyle.Render(v.err.Message))
		b.WriteString("\n\n")
	}

	for i, field := range v.fields() {
		style := styles.FormFieldStyle
		if i == v.focus {
			style = styles.FormFieldFocusedStyle
		}
		b.WriteString(style.Render(v.inputs[field].Placeholder + ": " + v.inputs[field].View()))
		b.WriteString("\n")
		if v.err != nil {
			if msg, ok := v.err.Fields[fieldNames[field]]; ok {
				b.WriteString(styles.FormErrorStyle.Render(msg))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if v.busy {
		b.WriteString(m.spinner.View() + " working...")
	} else {
		b.WriteString(styles.FormHelpStyle.Render("tab next field • enter submit • " + switchHint + " • esc quit"))
	}

	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, b.String())
}
