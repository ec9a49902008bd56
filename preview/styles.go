package preview

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
	colorWarn   = lipgloss.Color("#eab308") // yellow-500
	colorError  = lipgloss.Color("#ef4444") // red-500
	colorMath   = lipgloss.Color("#06b6d4") // cyan-500
	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorMuted  = lipgloss.Color("#9ca3af") // gray-400
)

// Styles holds all lipgloss styles for the terminal preview.
type Styles struct {
	// Chrome
	Title  lipgloss.Style
	Path   lipgloss.Style
	Dim    lipgloss.Style
	Muted  lipgloss.Style
	Warn   lipgloss.Style
	Banner lipgloss.Style

	// Content
	Math      lipgloss.Style
	MathError lipgloss.Style
	Border    lipgloss.Style
	Caption   lipgloss.Style
	Label     lipgloss.Style
	Opaque    lipgloss.Style
}

// DefaultStyles returns the default preview styles.
func DefaultStyles() *Styles {
	return &Styles{
		Title:  lipgloss.NewStyle().Bold(true),
		Path:   lipgloss.NewStyle().Foreground(colorAccent),
		Dim:    lipgloss.NewStyle().Foreground(colorDim),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Warn:   lipgloss.NewStyle().Foreground(colorWarn),
		Banner: lipgloss.NewStyle().Foreground(colorWarn).Bold(true),

		Math:      lipgloss.NewStyle().Foreground(colorMath),
		MathError: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(colorDim),
		Caption:   lipgloss.NewStyle().Italic(true),
		Label:     lipgloss.NewStyle().Foreground(colorMuted),
		Opaque:    lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// PlainStyles returns styles without any coloring, for terminals where
// ANSI sequences are unwelcome.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Title:  plain,
		Path:   plain,
		Dim:    plain,
		Muted:  plain,
		Warn:   plain,
		Banner: plain,

		Math:      plain,
		MathError: plain,
		Border:    plain,
		Caption:   plain,
		Label:     plain,
		Opaque:    plain,
	}
}

// StylesFor maps a configured theme name to a style set. "plain" disables
// coloring; any other value gets the default theme.
func StylesFor(theme string) *Styles {
	if theme == "plain" {
		return PlainStyles()
	}

	return DefaultStyles()
}
