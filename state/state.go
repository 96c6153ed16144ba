// Package state holds the browser's UI flags: what is shown, which modes
// are on, and the tool-sheet action grid derived from them.
package state

import (
	"minibrowse/config"
	"minibrowse/omnibox"
)

// Mode selects the main surface.
type Mode int

const (
	ModeHome Mode = iota
	ModeWeb
)

// DarkMode is the day/night tri-state, cycled in this order.
type DarkMode int

const (
	DarkSystem DarkMode = iota
	DarkLight
	DarkDark
)

func (d DarkMode) String() string {
	switch d {
	case DarkLight:
		return "Day"
	case DarkDark:
		return "Night"
	default:
		return "Follow system"
	}
}

// AccessMode selects the user agent.
type AccessMode int

const (
	AccessMobile AccessMode = iota
	AccessDesktop
)

// ImageMode controls image loading, cycled in this order.
type ImageMode int

const (
	ImagesShow ImageMode = iota
	ImagesSaver
	ImagesNone
)

func (m ImageMode) String() string {
	switch m {
	case ImagesSaver:
		return "Data saver"
	case ImagesNone:
		return "No images"
	default:
		return "Images"
	}
}

// Sheet is the panel shown inside the tool sheet.
type Sheet int

const (
	SheetQuickSet Sheet = iota
	SheetHistory
	SheetBookmarks
	SheetResources
)

// BackAction is what a back press should do.
type BackAction int

const (
	BackGoBack BackAction = iota // widget has history
	BackToHome                   // leave the page for the home surface
	BackExit                     // nothing left; quit
)

// Browser is the view-model. Fields are mutated directly by UI callbacks.
type Browser struct {
	URL        string
	Mode       Mode
	DarkMode   DarkMode
	AccessMode AccessMode
	BarVisible bool
	ImageMode  ImageMode
	Sheet      Sheet
	Fullscreen bool
	Incognito  bool

	searchEngine     string
	mobileUserAgent  string
	desktopUserAgent string
}

// New returns the initial state using cfg for the search engine and the
// user agent strings.
func New(cfg *config.Config) *Browser {
	b := &Browser{
		BarVisible:       true,
		searchEngine:     config.DefaultSearchEngine,
		mobileUserAgent:  config.MobileUserAgent,
		desktopUserAgent: config.DesktopUserAgent,
	}
	if cfg != nil {
		if cfg.Search.Engine != "" {
			b.searchEngine = cfg.Search.Engine
		}
		if cfg.Fetcher.MobileUserAgent != "" {
			b.mobileUserAgent = cfg.Fetcher.MobileUserAgent
		}
		if cfg.Fetcher.DesktopUserAgent != "" {
			b.desktopUserAgent = cfg.Fetcher.DesktopUserAgent
		}
	}
	return b
}

// SearchEngine returns the search URL template.
func (b *Browser) SearchEngine() string {
	return b.searchEngine
}

// Open shows url on the web surface.
func (b *Browser) Open(url string) {
	b.URL = url
	b.Mode = ModeWeb
}

// SearchWithEngine opens the default engine's results for query.
func (b *Browser) SearchWithEngine(query string) {
	b.Open(omnibox.SearchURL(b.searchEngine, query))
}

// UserAgent returns the user agent for the current access mode.
func (b *Browser) UserAgent() string {
	if b.AccessMode == AccessDesktop {
		return b.desktopUserAgent
	}
	return b.mobileUserAgent
}

// ToggleAccessMode flips mobile/desktop and returns the new user agent.
func (b *Browser) ToggleAccessMode() string {
	if b.AccessMode == AccessMobile {
		b.AccessMode = AccessDesktop
	} else {
		b.AccessMode = AccessMobile
	}
	return b.UserAgent()
}

// CycleDarkMode advances system → day → night → system.
func (b *Browser) CycleDarkMode() DarkMode {
	b.DarkMode = (b.DarkMode + 1) % 3
	return b.DarkMode
}

// CycleImageMode advances show → saver → none → show.
func (b *Browser) CycleImageMode() ImageMode {
	b.ImageMode = (b.ImageMode + 1) % 3
	return b.ImageMode
}

// ToggleFullscreen flips fullscreen; the bars hide while it is on.
func (b *Browser) ToggleFullscreen() {
	b.Fullscreen = !b.Fullscreen
	b.BarVisible = !b.Fullscreen
}

// ToggleBar shows or hides the bars without changing fullscreen.
func (b *Browser) ToggleBar() {
	b.BarVisible = !b.BarVisible
}

// GoHome leaves the web surface.
func (b *Browser) GoHome() {
	b.Mode = ModeHome
}

// Back decides what a back press does and applies the home transition.
func (b *Browser) Back(canGoBack bool) BackAction {
	switch {
	case canGoBack && b.Mode == ModeWeb:
		return BackGoBack
	case b.Mode == ModeWeb:
		b.Mode = ModeHome
		return BackToHome
	default:
		return BackExit
	}
}

// ShowSheet switches the tool sheet panel.
func (b *Browser) ShowSheet(s Sheet) {
	b.Sheet = s
}

// CloseSheet returns the tool sheet to the action grid.
func (b *Browser) CloseSheet() {
	b.Sheet = SheetQuickSet
}
