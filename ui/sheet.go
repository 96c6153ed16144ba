package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"minibrowse/library"
	"minibrowse/platform"
	"minibrowse/state"
)

// sheetColumns is the width of the action grid.
const sheetColumns = 5

// entry is a row in a sheet list.
type entry struct {
	Title string
	URL   string
}

func (m Model) openSheet() Model {
	m.sheetOpen = true
	m.sheetSel = 0
	m.browser.CloseSheet()
	m.address.Blur()
	m.search.Blur()
	m.layout()
	return m
}

func (m Model) closeSheet() Model {
	m.sheetOpen = false
	m.browser.CloseSheet()
	m.layout()
	return m
}

// showPanel switches the sheet to a list panel and loads its entries.
func (m Model) showPanel(s state.Sheet) Model {
	m.browser.ShowSheet(s)
	m.sheetSel = 0
	m.entries = nil

	switch s {
	case state.SheetHistory:
		items, err := m.lib.History()
		if err != nil {
			m.setError("Reading history: %v", err)
		}
		// Newest first.
		for i := len(items) - 1; i >= 0; i-- {
			m.entries = append(m.entries, entry{Title: items[i].Title, URL: items[i].URL})
		}
	case state.SheetBookmarks:
		items, err := m.lib.Bookmarks()
		if err != nil {
			m.setError("Reading bookmarks: %v", err)
		}
		for _, b := range items {
			m.entries = append(m.entries, entry{Title: b.Title, URL: b.URL})
		}
	case state.SheetResources:
		if m.browser.Mode == state.ModeWeb && m.page != nil && m.page.Doc != nil {
			for _, src := range m.page.Doc.Images {
				m.entries = append(m.entries, entry{Title: src, URL: src})
			}
		}
	}
	return m
}

func (m Model) updateSheet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Tools) {
		return m.closeSheet(), nil
	}
	if m.browser.Sheet == state.SheetQuickSet {
		return m.updateActions(msg)
	}
	return m.updatePanel(msg)
}

// updateActions moves through and triggers the action grid.
func (m Model) updateActions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.browser.QuickSet()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.closeSheet(), nil
	case key.Matches(msg, m.keys.Left):
		m.sheetSel = clamp(m.sheetSel-1, 0, len(items)-1)
	case key.Matches(msg, m.keys.Right):
		m.sheetSel = clamp(m.sheetSel+1, 0, len(items)-1)
	case key.Matches(msg, m.keys.Up):
		if m.sheetSel-sheetColumns >= 0 {
			m.sheetSel -= sheetColumns
		}
	case key.Matches(msg, m.keys.Down):
		m.sheetSel = clamp(m.sheetSel+sheetColumns, 0, len(items)-1)
	case key.Matches(msg, m.keys.Select):
		item := items[m.sheetSel]
		if !item.Actionable() {
			return m, nil
		}
		return m.runAction(item.ID)
	}
	return m, nil
}

// updatePanel handles the history, bookmark and resource lists.
func (m Model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := 1
	if m.browser.Sheet != state.SheetResources {
		cols = m.columns
	}
	last := len(m.entries) - 1

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.browser.CloseSheet()
		m.sheetSel = 0
	case key.Matches(msg, m.keys.Left):
		m.sheetSel = clamp(m.sheetSel-1, 0, last)
	case key.Matches(msg, m.keys.Right):
		m.sheetSel = clamp(m.sheetSel+1, 0, last)
	case key.Matches(msg, m.keys.Up):
		if m.sheetSel-cols >= 0 {
			m.sheetSel -= cols
		}
	case key.Matches(msg, m.keys.Down):
		m.sheetSel = clamp(m.sheetSel+cols, 0, last)
	case key.Matches(msg, m.keys.Layout):
		if m.columns == 2 {
			m.columns = 1
		} else {
			m.columns = 2
		}
	case key.Matches(msg, m.keys.Clear):
		return m.clearPanel(), nil
	case key.Matches(msg, m.keys.Select):
		if m.sheetSel > last {
			return m, nil
		}
		target := m.entries[m.sheetSel].URL
		m = m.closeSheet()
		return m.navigate(target)
	}
	return m, nil
}

func (m Model) clearPanel() Model {
	var err error
	switch m.browser.Sheet {
	case state.SheetHistory:
		err = m.lib.ClearHistory()
	case state.SheetBookmarks:
		err = m.lib.ClearBookmarks()
	default:
		return m
	}
	if err != nil {
		m.setError("Clearing: %v", err)
		return m
	}
	m.entries = nil
	m.sheetSel = 0
	return m
}

// runAction performs a tool-sheet action.
func (m Model) runAction(id int) (tea.Model, tea.Cmd) {
	switch id {
	case state.ActionDownloads:
		if err := m.platform.OpenDownloads(m.downloads.Dir()); err != nil {
			m.log.Info("opening downloads", zap.Error(err))
			if errors.Is(err, platform.ErrNoOpener) {
				m.setError("No download manager found")
			} else {
				m.setError("Opening downloads: %v", err)
			}
		}
		return m, nil

	case state.ActionShare:
		if err := m.platform.Share(m.browser.URL); err != nil {
			m.setError("Share failed: %v", err)
		} else {
			m.setStatus("Link copied")
		}
		return m.closeSheet(), nil

	case state.ActionDesktop:
		ua := m.browser.ToggleAccessMode()
		m.engine.SetUserAgent(ua)
		if m.downloads != nil {
			m.downloads.SetUserAgent(ua)
		}
		return m.reload()

	case state.ActionHistory:
		return m.showPanel(state.SheetHistory), nil

	case state.ActionDarkMode:
		d := m.browser.CycleDarkMode()
		if err := m.lib.SetDarkMode(int(d)); err != nil {
			m.setError("Saving dark mode: %v", err)
		}
		m.applyTheme()
		m.renderPage()
		return m, nil

	case state.ActionShortcut:
		m.dialog = newLinkDialog(dialogShortcut, "Add to desktop", "Website", m.browser.URL)
		return m, m.dialog.focusCmd()

	case state.ActionAddBookmark:
		return m.addBookmark(), nil

	case state.ActionFullscreen:
		m.browser.ToggleFullscreen()
		m.layout()
		return m, nil

	case state.ActionBookmarks:
		return m.showPanel(state.SheetBookmarks), nil

	case state.ActionImageMode:
		mode := m.browser.CycleImageMode()
		if err := m.lib.SetImageMode(int(mode)); err != nil {
			m.setError("Saving image mode: %v", err)
		}
		m.engine.SetImageMode(mode)
		return m.reload()

	case state.ActionResources:
		return m.showPanel(state.SheetResources), nil
	}
	return m, nil
}

// addBookmark saves the page on screen.
func (m Model) addBookmark() Model {
	if m.browser.Mode != state.ModeWeb {
		return m
	}
	b := library.Bookmark{
		ID:    m.now().UnixMilli(),
		URL:   m.browser.URL,
		Title: "unknown",
	}
	if b.URL == "" {
		b.URL = "unknown"
	}
	if m.page != nil && m.page.Title != "" {
		b.Title = m.page.Title
	}
	if err := m.lib.AddBookmark(b); err != nil {
		m.setError("Saving bookmark: %v", err)
		return m
	}
	m.setStatus("Bookmark added")
	return m
}
