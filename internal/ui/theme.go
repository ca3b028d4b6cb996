package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the adaptive color palette used by the dashboard and all
// panels.
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

// DefaultTheme is the standard dashboard palette.
var DefaultTheme = Theme{
	Name:      "default",
	Primary:   lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},
	Secondary: lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
	Accent:    lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"},
	Success:   lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"},
	Warning:   lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"},
	Error:     lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"},
	Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
	Muted:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"},
	Selected:  lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#312E81"},
}

// MonoTheme renders everything in the terminal's default foreground.
// Used when NO_COLOR is set.
var MonoTheme = Theme{
	Name: "mono",
}

// CurrentTheme picks the theme for this terminal session.
func CurrentTheme() Theme {
	if os.Getenv("NO_COLOR") != "" {
		return MonoTheme
	}
	return DefaultTheme
}
