package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

var toggleKey = key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle email"))

type settingsView struct {
	loading  bool
	saving   bool
	ready    bool
	settings user.Settings
	err      string
}

func (v *settingsView) loaded(msg settingsLoadedMsg) {
	v.loading = false
	v.saving = false
	if msg.err != nil {
		v.err = api.Message(msg.err)
		return
	}
	v.err = ""
	v.settings = msg.settings
	v.ready = true
}

func (m Model) settingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.settings
	switch {
	case key.Matches(msg, toggleKey):
		if !v.ready || v.saving {
			return m, nil
		}
		v.saving = true
		return m, toggleEmailCmd(m.app, !v.settings.EmailNotifications)
	case key.Matches(msg, keys.Refresh):
		return m, m.enter(m.route)
	}
	return m, nil
}

func (m Model) settingsView() string {
	v := m.settings

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != "" {
		b.WriteString(styles.ErrorStyle.Render(v.err))
		b.WriteString("\n\n")
	}
	if !v.ready {
		if v.loading {
			b.WriteString(m.spinner.View() + " loading settings...")
		}
		return b.String()
	}

	s := v.settings
	email := checkbox(s.EmailNotifications) + " Email notifications"
	if v.saving {
		email += " " + m.spinner.View()
	}
	b.WriteString(styles.FormFieldFocusedStyle.Render(email))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Task reminders", onOff(s.TaskReminders)},
		{"Weekly reports", onOff(s.WeeklyReports)},
		{"Theme", s.Theme},
		{"Language", s.Language},
		{"Time zone", s.TimeZone},
		{"Items per page", fmt.Sprint(s.ItemsPerPage)},
	}
	for _, r := range rows {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%-16s %s", r[0], r[1])))
		b.WriteString("\n")
	}
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return styles.SuccessStyle.Render("[x]")
	}
	return "[ ]"
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

var settingsHelp = bindings{toggleKey, keys.Refresh}
