package viz

import "github.com/charmbracelet/lipgloss"

// Ink indices understood by every theme. Body i is drawn with InkBody+i.
const (
	InkFrame = iota
	InkSpring
	InkTrail
	InkBody
)

type Theme struct {
	Name   string
	Frame  lipgloss.Color
	Spring lipgloss.Color
	Trail  lipgloss.Color
	Bodies []lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Frame:  lipgloss.Color("#444466"),
		Spring: lipgloss.Color("#ffff00"),
		Trail:  lipgloss.Color("#553355"),
		Bodies: []lipgloss.Color{"#ff00ff", "#00ffff", "#00ff00", "#ff8800", "#ffffff"},
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666666"),
		Accent: lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Frame:  lipgloss.Color("#005500"),
		Spring: lipgloss.Color("#88ff88"),
		Trail:  lipgloss.Color("#003300"),
		Bodies: []lipgloss.Color{"#00ff00", "#00cc00", "#88ff88"},
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Accent: lipgloss.Color("#88ff88"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Frame:  lipgloss.Color("#4488aa"),
		Spring: lipgloss.Color("#ffd700"),
		Trail:  lipgloss.Color("#224466"),
		Bodies: []lipgloss.Color{"#00a8cc", "#e0f0ff", "#00ff88", "#0077be"},
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Accent: lipgloss.Color("#ffd700"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Frame:  lipgloss.Color("#8b6b8c"),
		Spring: lipgloss.Color("#feca57"),
		Trail:  lipgloss.Color("#5a3b5c"),
		Bodies: []lipgloss.Color{"#ff6b6b", "#ff9ff3", "#5fd068", "#ffc048"},
		Text:   lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Accent: lipgloss.Color("#ff9ff3"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// InkColor maps a canvas ink to a color.
func (t Theme) InkColor(ink int) lipgloss.Color {
	switch {
	case ink == InkFrame:
		return t.Frame
	case ink == InkSpring:
		return t.Spring
	case ink == InkTrail:
		return t.Trail
	default:
		return t.BodyColor(ink - InkBody)
	}
}

// BodyColor cycles through the body palette.
func (t Theme) BodyColor(i int) lipgloss.Color {
	if len(t.Bodies) == 0 {
		return t.Text
	}
	if i < 0 {
		i = -i
	}
	return t.Bodies[i%len(t.Bodies)]
}

// GetTheme returns a theme by name, falling back to the first theme.
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

// NextTheme returns the theme after name in Themes, wrapping around.
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
