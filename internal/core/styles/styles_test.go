package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

func TestUseTheme(t *testing.T) {
	t.Cleanup(func() { UseTheme(DefaultTheme) })

	assert.True(t, UseTheme("gruvbox"))
	assert.Equal(t, themes["gruvbox"].Primary, ColorPrimary)

	assert.False(t, UseTheme("neon"), "unknown themes fall back to the default")
	assert.Equal(t, themes[DefaultTheme], CurrentPalette)
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"catppuccin", "gruvbox", "light", "tokyo-night"}, ThemeNames())
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	t.Cleanup(func() { UseTheme(DefaultTheme) })
	UseTheme("catppuccin")

	cfg := GlamourStyle()
	if assert.NotNil(t, cfg.Link.Color) {
		assert.Equal(t, string(ColorSecondary), *cfg.Link.Color)
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, IconDone, StatusIcon(task.StatusDone))
	assert.Equal(t, IconInProgress, StatusIcon(task.StatusInProgress))
	assert.Equal(t, IconTodo, StatusIcon(task.StatusTodo))
}
