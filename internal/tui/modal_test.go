package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/pkg/tuitest"
)

type confirmedMsg struct{}

func confirmCmd() tea.Msg { return confirmedMsg{} }

func keyMsg(t *testing.T, msg tea.Msg) tea.KeyMsg {
	t.Helper()
	k, ok := msg.(tea.KeyMsg)
	require.True(t, ok)
	return k
}

func TestModal_DefaultsToCancel(t *testing.T) {
	m := NewModal("Delete task", "Are you sure?", confirmCmd)
	assert.True(t, m.Visible())
	assert.False(t, m.ConfirmSelected())

	m, cmd := m.Update(keyMsg(t, tuitest.KeyEnter()))
	assert.False(t, m.Visible())
	assert.Nil(t, cmd, "enter on cancel does nothing")
}

func TestModal_ConfirmWithArrowsAndEnter(t *testing.T) {
	m := NewModal("Delete task", "Are you sure?", confirmCmd)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.True(t, m.ConfirmSelected())

	m, cmd := m.Update(keyMsg(t, tuitest.KeyEnter()))
	assert.False(t, m.Visible())
	require.NotNil(t, cmd)
	assert.Equal(t, confirmedMsg{}, cmd())
}

func TestModal_Shortcuts(t *testing.T) {
	m := NewModal("", "", confirmCmd)
	_, cmd := m.Update(keyMsg(t, tuitest.KeyPress('y')))
	require.NotNil(t, cmd)

	m = NewModal("", "", confirmCmd)
	m, cmd = m.Update(keyMsg(t, tuitest.KeyEsc()))
	assert.Nil(t, cmd)
	assert.False(t, m.Visible())
}

func TestModal_Overlay(t *testing.T) {
	bg := "background content"
	assert.Equal(t, bg, Modal{}.Overlay(bg, 80, 24))

	out := tuitest.StripANSI(NewModal("Delete user", "Remove bob?", nil).Overlay(bg, 80, 24))
	assert.Contains(t, out, "Delete user")
	assert.Contains(t, out, "Remove bob?")
	assert.NotContains(t, out, bg)
}
