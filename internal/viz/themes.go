package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pvsim/internal/thermo"
)

// Theme defines the color scheme for the plot. Curves is indexed by
// thermo.Process.
type Theme struct {
	Name   string
	Curves [4]lipgloss.Color
	State  lipgloss.Color
	Hover  lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Error  lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name: "classic",
		Curves: [4]lipgloss.Color{
			thermo.Isothermal: "#ff6b6b",
			thermo.Adiabatic:  "#4dabf7",
			thermo.Isobaric:   "#69db7c",
			thermo.Isochoric:  "#ffd43b",
		},
		State:  "#ffffff",
		Hover:  "#ff00ff",
		Text:   "#e0e0e0",
		Muted:  "#666688",
		Accent: "#00ffff",
		Error:  "#ff4444",
	}

	ThemeRetroGreen = Theme{
		Name: "retro",
		Curves: [4]lipgloss.Color{
			thermo.Isothermal: "#00ff00",
			thermo.Adiabatic:  "#88ff88",
			thermo.Isobaric:   "#00cc00",
			thermo.Isochoric:  "#ccffcc",
		},
		State:  "#ffffff",
		Hover:  "#ffff00",
		Text:   "#00ff00",
		Muted:  "#005500",
		Accent: "#88ff88",
		Error:  "#ff0000",
	}

	ThemeOcean = Theme{
		Name: "ocean",
		Curves: [4]lipgloss.Color{
			thermo.Isothermal: "#ffd700",
			thermo.Adiabatic:  "#00a8cc",
			thermo.Isobaric:   "#0077be",
			thermo.Isochoric:  "#00ff88",
		},
		State:  "#e0f0ff",
		Hover:  "#ff4444",
		Text:   "#e0f0ff",
		Muted:  "#4488aa",
		Accent: "#ffd700",
		Error:  "#ff4444",
	}

	ThemeSunset = Theme{
		Name: "sunset",
		Curves: [4]lipgloss.Color{
			thermo.Isothermal: "#ff6b6b",
			thermo.Adiabatic:  "#feca57",
			thermo.Isobaric:   "#ff9ff3",
			thermo.Isochoric:  "#5fd068",
		},
		State:  "#fff5f5",
		Hover:  "#ffc048",
		Text:   "#fff5f5",
		Muted:  "#8b6b8c",
		Accent: "#ff9ff3",
		Error:  "#ff4757",
	}

	Themes = []Theme{
		ThemeClassic,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the classic theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// inks returns one style per canvas ink: the four curves, then the state
// marker, then the hover marker.
func (t Theme) inks() []lipgloss.Style {
	styles := make([]lipgloss.Style, 0, len(t.Curves)+2)
	for _, c := range t.Curves {
		styles = append(styles, lipgloss.NewStyle().Foreground(c))
	}
	return append(styles,
		lipgloss.NewStyle().Foreground(t.State).Bold(true),
		lipgloss.NewStyle().Foreground(t.Hover).Bold(true),
	)
}
