// Package tuitest provides testing utilities for TUI components.
package tuitest

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes and trailing whitespace so rendered
// views can be compared as plain text.
func StripANSI(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	var result []string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " ")
		result = append(result, trimmed)
	}
	return strings.TrimRight(strings.Join(result, "\n"), "\n")
}

// KeyPress creates a key press message for a single rune.
func KeyPress(key rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}}
}

// Type returns one key press message per rune of s.
func Type(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, KeyPress(r))
	}
	return msgs
}

// Key creates a message for a special key such as tea.KeyEnter.
func Key(t tea.KeyType) tea.Msg {
	return tea.KeyMsg{Type: t}
}

// KeyDown creates a down arrow key press message.
func KeyDown() tea.Msg { return Key(tea.KeyDown) }

// KeyUp creates an up arrow key press message.
func KeyUp() tea.Msg { return Key(tea.KeyUp) }

// KeyEnter creates an enter key press message.
func KeyEnter() tea.Msg { return Key(tea.KeyEnter) }

// KeyEsc creates an escape key press message.
func KeyEsc() tea.Msg { return Key(tea.KeyEsc) }

// WindowSize creates a window size message.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
