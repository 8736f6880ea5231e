// Package styles provides shared lipgloss styles for the CLI and the
// terminal dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Text.
	TitleStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	ErrorStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style

	// Tables.
	TableHeaderStyle lipgloss.Style
	RowStyle         lipgloss.Style
	RowSelectedStyle lipgloss.Style

	// Navigation tabs.
	ViewSelectedStyle lipgloss.Style
	ViewNormalStyle   lipgloss.Style

	// Modals and forms.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
	FormHelpStyle         lipgloss.Style

	// Stat cards on the task and admin dashboards.
	CardStyle      lipgloss.Style
	CardValueStyle lipgloss.Style
	CardLabelStyle lipgloss.Style

	AdminBadgeStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	TableHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Bold(true)
	RowStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	RowSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Background(ColorSurface).
		Bold(true)

	ViewSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	ViewNormalStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorMuted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)
	FormErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)
	FormHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 2)
	CardValueStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	CardLabelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	AdminBadgeStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorWarning).
		Padding(0, 1)
}

// StatusStyle colours a task status.
func StatusStyle(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusDone:
		return SuccessStyle
	case task.StatusInProgress:
		return lipgloss.NewStyle().Foreground(ColorSecondary)
	default:
		return WarningStyle
	}
}

// PriorityStyle colours a task priority.
func PriorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityHigh:
		return ErrorStyle.Bold(true)
	case task.PriorityLow:
		return MutedStyle
	default:
		return lipgloss.NewStyle().Foreground(ColorForeground)
	}
}

// RoleBadge renders a role label, highlighting administrators.
func RoleBadge(r auth.Role) string {
	if r == auth.RoleAdmin {
		return AdminBadgeStyle.Render(string(r))
	}
	return MutedStyle.Render(string(r))
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
