package theme

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"minibrowse/state"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestPaletteColors(t *testing.T) {
	for _, name := range Names() {
		f := Families[name]
		for _, th := range []*Theme{f.Light, f.Dark} {
			for _, c := range []lipgloss.Color{th.Foreground, th.Dim, th.Accent, th.Selection, th.Surface, th.Error, th.Warning, th.Success, th.Info} {
				if !hexColor.MatchString(string(c)) {
					t.Errorf("%s: bad color %q", th.Name, c)
				}
			}
			if !th.TransparentBg && !hexColor.MatchString(string(th.Background)) {
				t.Errorf("%s: bad background %q", th.Name, th.Background)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		family       string
		mode         state.DarkMode
		terminalDark bool
		want         *Theme
	}{
		{"default", state.DarkLight, true, DefaultLight},
		{"default", state.DarkDark, false, DefaultDark},
		{"default", state.DarkSystem, true, DefaultDark},
		{"default", state.DarkSystem, false, DefaultLight},
		{"gruvbox", state.DarkDark, false, GruvboxDark},
		{"nord", state.DarkLight, true, NordLight},
		{"no-such-theme", state.DarkDark, false, DefaultDark},
	}
	for _, tt := range tests {
		if got := Resolve(tt.family, tt.mode, tt.terminalDark); got != tt.want {
			t.Errorf("Resolve(%q, %v, %v) = %s, want %s", tt.family, tt.mode, tt.terminalDark, got.Name, tt.want.Name)
		}
	}
}

func TestFamiliesArePaired(t *testing.T) {
	for _, name := range Names() {
		f := Families[name]
		if f.Light.Dark || !f.Dark.Dark {
			t.Errorf("family %q has mismatched variants", name)
		}
	}
}

func TestStylesBuild(t *testing.T) {
	for _, name := range Names() {
		f := Families[name]
		for _, th := range []*Theme{f.Light, f.Dark} {
			s := th.Styles()
			if s.Title.Render("x") == "" {
				t.Errorf("%s: empty render", th.Name)
			}
		}
	}
}
