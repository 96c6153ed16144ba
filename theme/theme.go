// Package theme provides color theming for the browser shell.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"minibrowse/state"
)

// Theme is the palette for the shell chrome: bars, sheets, tiles and
// feedback. Page text is drawn with terminal attributes, not colors.
type Theme struct {
	Name string
	Dark bool

	Background    lipgloss.Color // unused when TransparentBg is set
	TransparentBg bool           // keep the terminal's own background
	Foreground    lipgloss.Color
	Dim           lipgloss.Color

	Accent    lipgloss.Color // focused input, loading spinner, switches that are on
	Selection lipgloss.Color
	Surface   lipgloss.Color // sheet background

	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color
	Info    lipgloss.Color
}

var (
	DefaultDark = &Theme{
		Name:          "default-dark",
		Dark:          true,
		TransparentBg: true,
		Foreground:    "#dadada",
		Dim:           "#7a7a7a",
		Accent:        "#00afaf",
		Selection:     "#303030",
		Surface:       "#1c1c1c",
		Error:         "#ff5f5f",
		Warning:       "#ffaf00",
		Success:       "#87d75f",
		Info:          "#5fafff",
	}

	DefaultLight = &Theme{
		Name:       "default-light",
		Background: "#ffffff",
		Foreground: "#202124",
		Dim:        "#80868b",
		Accent:     "#1a73e8",
		Selection:  "#e8f0fe",
		Surface:    "#f1f3f4",
		Error:      "#d93025",
		Warning:    "#e37400",
		Success:    "#188038",
		Info:       "#1967d2",
	}

	GruvboxDark = &Theme{
		Name:       "gruvbox-dark",
		Dark:       true,
		Background: "#282828",
		Foreground: "#ebdbb2",
		Dim:        "#928374",
		Accent:     "#fabd2f",
		Selection:  "#3c3836",
		Surface:    "#32302f",
		Error:      "#fb4934",
		Warning:    "#fe8019",
		Success:    "#b8bb26",
		Info:       "#83a598",
	}

	GruvboxLight = &Theme{
		Name:       "gruvbox-light",
		Background: "#fbf1c7",
		Foreground: "#3c3836",
		Dim:        "#7c6f64",
		Accent:     "#b57614",
		Selection:  "#ebdbb2",
		Surface:    "#f2e5bc",
		Error:      "#9d0006",
		Warning:    "#af3a03",
		Success:    "#79740e",
		Info:       "#076678",
	}

	NordDark = &Theme{
		Name:       "nord-dark",
		Dark:       true,
		Background: "#2e3440",
		Foreground: "#e5e9f0",
		Dim:        "#616e88",
		Accent:     "#88c0d0",
		Selection:  "#434c5e",
		Surface:    "#3b4252",
		Error:      "#bf616a",
		Warning:    "#d08770",
		Success:    "#a3be8c",
		Info:       "#81a1c1",
	}

	NordLight = &Theme{
		Name:       "nord-light",
		Background: "#eceff4",
		Foreground: "#2e3440",
		Dim:        "#4c566a",
		Accent:     "#5e81ac",
		Selection:  "#d8dee9",
		Surface:    "#e5e9f0",
		Error:      "#bf616a",
		Warning:    "#d08770",
		Success:    "#a3be8c",
		Info:       "#5e81ac",
	}
)

// Family pairs the day and night variants of a theme.
type Family struct {
	Light *Theme
	Dark  *Theme
}

// Families lists the built-in theme families by name.
var Families = map[string]Family{
	"default": {Light: DefaultLight, Dark: DefaultDark},
	"gruvbox": {Light: GruvboxLight, Dark: GruvboxDark},
	"nord":    {Light: NordLight, Dark: NordDark},
}

// Names returns the family names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Families))
	for n := range Families {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the theme for a day/night setting. DarkSystem follows the
// terminal background. Unknown family names use "default".
func Resolve(family string, mode state.DarkMode, terminalDark bool) *Theme {
	f, ok := Families[family]
	if !ok {
		f = Families["default"]
	}
	switch mode {
	case state.DarkLight:
		return f.Light
	case state.DarkDark:
		return f.Dark
	default:
		if terminalDark {
			return f.Dark
		}
		return f.Light
	}
}
