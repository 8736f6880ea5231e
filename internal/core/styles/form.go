package styles

import "github.com/charmbracelet/huh"

// FormTheme returns a huh theme using the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(ColorBackground).Background(ColorPrimary)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorForeground).Background(ColorSurface)

	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	t.Blurred.Description = t.Blurred.Description.Foreground(ColorMuted)

	return t
}
