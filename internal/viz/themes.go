package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mazeplay/internal/snapshot"
)

// Theme defines the colour scheme of the TUI and of images exported from it.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color

	Free    lipgloss.Color
	Wall    lipgloss.Color
	Start   lipgloss.Color
	Goal    lipgloss.Color
	Visited lipgloss.Color
	Path    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Error:   lipgloss.Color("#ff0000"),
		Free:    lipgloss.Color("#1a1a2e"),
		Wall:    lipgloss.Color("#4a4e69"),
		Start:   lipgloss.Color("#00ff00"),
		Goal:    lipgloss.Color("#ff0055"),
		Visited: lipgloss.Color("#00b4d8"),
		Path:    lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Error:   lipgloss.Color("#ff0000"),
		Free:    lipgloss.Color("#001100"),
		Wall:    lipgloss.Color("#00aa00"),
		Start:   lipgloss.Color("#ffffff"),
		Goal:    lipgloss.Color("#ff0000"),
		Visited: lipgloss.Color("#005500"),
		Path:    lipgloss.Color("#ccff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Error:   lipgloss.Color("#ff0000"),
		Free:    lipgloss.Color("#000000"),
		Wall:    lipgloss.Color("#bbbbbb"),
		Start:   lipgloss.Color("#00ff00"),
		Goal:    lipgloss.Color("#ff0000"),
		Visited: lipgloss.Color("#334455"),
		Path:    lipgloss.Color("#0088ff"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Error:   lipgloss.Color("#ff4444"),
		Free:    lipgloss.Color("#001a33"),
		Wall:    lipgloss.Color("#4488aa"),
		Start:   lipgloss.Color("#00ff88"),
		Goal:    lipgloss.Color("#ff4444"),
		Visited: lipgloss.Color("#00a8cc"),
		Path:    lipgloss.Color("#ffd700"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Error:   lipgloss.Color("#ff4757"),
		Free:    lipgloss.Color("#2d1b2e"),
		Wall:    lipgloss.Color("#8b6b8c"),
		Start:   lipgloss.Color("#5fd068"),
		Goal:    lipgloss.Color("#ff4757"),
		Visited: lipgloss.Color("#ff9ff3"),
		Path:    lipgloss.Color("#feca57"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Palette converts the theme for image export.
func (t Theme) Palette() snapshot.Palette {
	return snapshot.Palette{
		Background: rgba(t.Free),
		Free:       rgba(t.Free),
		Wall:       rgba(t.Wall),
		Start:      rgba(t.Start),
		Goal:       rgba(t.Goal),
		Visited:    rgba(t.Visited),
		Path:       rgba(t.Path),
		Text:       rgba(t.Text),
	}
}

func rgba(c lipgloss.Color) color.RGBA {
	r, g, b := parseHex(string(c))
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}
