package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the shell draws with.
type Styles struct {
	Base     lipgloss.Style
	Title    lipgloss.Style
	Dim      lipgloss.Style
	Accent   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Bar      lipgloss.Style // address/search bar
	BarFocus lipgloss.Style
	Tile     lipgloss.Style
	TileOn   lipgloss.Style // selected tile
	TileOff  lipgloss.Style // disabled tile
	Badge    lipgloss.Style // delete badge on quick links
	Sheet    lipgloss.Style
	Dialog   lipgloss.Style
	Link     lipgloss.Style
	Heading  lipgloss.Style
	Status   lipgloss.Style
}

// Styles builds the style set for t.
func (t *Theme) Styles() Styles {
	base := lipgloss.NewStyle().Foreground(t.Foreground)
	if !t.TransparentBg {
		base = base.Background(t.Background)
	}

	tile := lipgloss.NewStyle().
		Width(16).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Dim).
		Foreground(t.Foreground)

	return Styles{
		Base:     base,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Foreground),
		Dim:      lipgloss.NewStyle().Foreground(t.Dim),
		Accent:   lipgloss.NewStyle().Foreground(t.Accent),
		Error:    lipgloss.NewStyle().Foreground(t.Error),
		Success:  lipgloss.NewStyle().Foreground(t.Success),
		Warning:  lipgloss.NewStyle().Foreground(t.Warning),
		Bar:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Dim).Padding(0, 1),
		BarFocus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1),
		Tile:     tile,
		TileOn:   tile.BorderForeground(t.Accent).Background(t.Selection),
		TileOff:  tile.Foreground(t.Dim),
		Badge:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Sheet:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true, false, false, false).BorderForeground(t.Accent).Background(t.Surface).Padding(0, 1),
		Dialog:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(t.Accent).Padding(1, 2),
		Link:     lipgloss.NewStyle().Foreground(t.Info).Underline(true),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Status:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}
