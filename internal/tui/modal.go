package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/styles"
)

// Modal is a confirmation dialog. onConfirm runs when the operator accepts.
type Modal struct {
	title           string
	message         string
	visible         bool
	confirmSelected bool
	onConfirm       tea.Cmd
}

// NewModal creates a visible modal with Cancel preselected, so that a stray
// enter never deletes anything.
func NewModal(title, message string, onConfirm tea.Cmd) Modal {
	return Modal{
		title:     title,
		message:   message,
		visible:   true,
		onConfirm: onConfirm,
	}
}

func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

func (m Modal) Visible() bool {
	return m.visible
}

// Update handles keys while the modal is open. It returns the command to
// run, which is onConfirm only when the operator accepted.
func (m Modal) Update(msg tea.KeyMsg) (Modal, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		m.ToggleSelection()
	case "y":
		m.visible = false
		return m, m.onConfirm
	case "n", "esc", "q":
		m.visible = false
	case "enter":
		m.visible = false
		if m.confirmSelected {
			return m, m.onConfirm
		}
	}
	return m, nil
}

// Overlay renders the modal centered in place of background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	confirmBtn := styles.ModalButtonStyle.Render("Delete")
	cancelBtn := styles.ModalButtonSelectedStyle.Render("Cancel")
	if m.confirmSelected {
		confirmBtn = styles.ModalButtonSelectedStyle.Render("Delete")
		cancelBtn = styles.ModalButtonStyle.Render("Cancel")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  y/n  esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(content))
}
