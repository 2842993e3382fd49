package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the live view
type Theme struct {
	Name   string
	Header lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Graph  lipgloss.Color
	Gauge  lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:   "ocean",
		Header: lipgloss.Color("#00a8cc"),
		Label:  lipgloss.Color("#4488aa"),
		Value:  lipgloss.Color("#e0f0ff"),
		Graph:  lipgloss.Color("#0077be"),
		Gauge:  lipgloss.Color("#00ffff"),
		Muted:  lipgloss.Color("#335566"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Header: lipgloss.Color("#00ff00"),
		Label:  lipgloss.Color("#00cc00"),
		Value:  lipgloss.Color("#88ff88"),
		Graph:  lipgloss.Color("#00ff00"),
		Gauge:  lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Header: lipgloss.Color("#ffffff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#ffffff"),
		Graph:  lipgloss.Color("#cccccc"),
		Gauge:  lipgloss.Color("#0088ff"),
		Muted:  lipgloss.Color("#444444"),
	}

	Themes = []Theme{ThemeOcean, ThemeRetroGreen, ThemeMinimal}
)

// GetTheme returns a theme by name, ocean when unknown
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func nextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeOcean
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	gauge  lipgloss.Style
	help   lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Value),
		graph:  lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		gauge:  lipgloss.NewStyle().Foreground(t.Gauge),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}
