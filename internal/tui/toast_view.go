package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast stack.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// Lines returns one rendered line per toast, oldest first.
func (v *ToastView) Lines() []string {
	toasts := v.controller.Toasts()
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		lines = append(lines, renderToast(t))
	}
	return lines
}

func renderToast(t toast) string {
	icon, color := "•", styles.ColorPrimary
	switch t.notification.Level {
	case eventbus.LevelSuccess:
		icon, color = "✔", styles.ColorSuccess
	case eventbus.LevelWarning:
		icon, color = "!", styles.ColorWarning
	case eventbus.LevelError:
		icon, color = "✘", styles.ColorError
	}

	msg := t.notification.Message
	if t.repeats > 0 {
		msg = fmt.Sprintf("%s (x%d)", msg, t.repeats+1)
	}

	return lipgloss.NewStyle().
		Foreground(color).
		Background(styles.ColorSurface).
		Padding(0, 1).
		MaxWidth(toastWidth).
		Render(icon + " " + msg)
}

// Overlay writes the toasts right aligned over the last lines of background.
func (v *ToastView) Overlay(background string, width, height int) string {
	toasts := v.Lines()
	if len(toasts) == 0 {
		return background
	}

	lines := strings.Split(background, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}

	start := max(len(lines)-len(toasts), 0)
	for i, t := range toasts {
		if start+i >= len(lines) {
			break
		}
		lines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, t)
	}
	return strings.Join(lines, "\n")
}
