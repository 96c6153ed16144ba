package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"minibrowse/library"
	"minibrowse/omnibox"
)

// homeColumns is the width of the quick link grid.
const homeColumns = 5

// refreshHome reloads the quick links and their visibility switch.
func (m *Model) refreshHome() {
	if m.lib == nil {
		return
	}
	links, err := m.lib.QuickLinks()
	if err != nil {
		m.log.Warn("reading quick links", zap.Error(err))
		m.setError("Reading quick links: %v", err)
	}
	m.quickLinks = links

	enabled, err := m.lib.QuickLinksEnabled()
	if err != nil {
		m.log.Warn("reading quick link switch", zap.Error(err))
		enabled = true
	}
	m.quickLinksEnabled = enabled

	// The tile after the last link is "Add".
	m.linkSel = clamp(m.linkSel, 0, len(m.quickLinks))
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FocusSearch):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.HideLinks):
		return m.toggleQuickLinks(), nil
	case key.Matches(msg, m.keys.AddLink):
		m.dialog = newLinkDialog(dialogAddLink, "Add quick link", "Website", "")
		return m, m.dialog.focusCmd()
	}

	if !m.quickLinksEnabled {
		return m, nil
	}

	tiles := len(m.quickLinks) + 1
	switch {
	case key.Matches(msg, m.keys.EditLinks):
		m.editLinks = !m.editLinks
	case key.Matches(msg, m.keys.Left):
		m.linkSel = clamp(m.linkSel-1, 0, tiles-1)
	case key.Matches(msg, m.keys.Right):
		m.linkSel = clamp(m.linkSel+1, 0, tiles-1)
	case key.Matches(msg, m.keys.Up):
		if m.linkSel-homeColumns >= 0 {
			m.linkSel -= homeColumns
		}
	case key.Matches(msg, m.keys.Down):
		m.linkSel = clamp(m.linkSel+homeColumns, 0, tiles-1)
	case key.Matches(msg, m.keys.DeleteLink):
		if m.editLinks {
			return m.deleteQuickLink(), nil
		}
	case key.Matches(msg, m.keys.Select):
		if m.linkSel == len(m.quickLinks) {
			m.dialog = newLinkDialog(dialogAddLink, "Add quick link", "Website", "")
			return m, m.dialog.focusCmd()
		}
		if m.editLinks {
			return m.deleteQuickLink(), nil
		}
		return m.navigate(m.quickLinks[m.linkSel].Link)
	}
	return m, nil
}

func (m Model) toggleQuickLinks() Model {
	m.quickLinksEnabled = !m.quickLinksEnabled
	if err := m.lib.SetQuickLinksEnabled(m.quickLinksEnabled); err != nil {
		m.setError("Saving quick link switch: %v", err)
	}
	if !m.quickLinksEnabled {
		m.editLinks = false
	}
	return m
}

func (m Model) deleteQuickLink() Model {
	if m.linkSel >= len(m.quickLinks) {
		return m
	}
	q := m.quickLinks[m.linkSel]
	if _, err := m.lib.DeleteQuickLink(q); err != nil {
		m.setError("Deleting %s: %v", q.Title, err)
		return m
	}
	m.setStatus("Removed %s", q.Title)
	m.refreshHome()
	return m
}

// addQuickLink saves a link entered in the add dialog.
func (m Model) addQuickLink(title, link string) Model {
	link = omnibox.NormalizeAddress(link)
	if link == "" {
		m.setError("A quick link needs an address")
		return m
	}
	if title == "" {
		title = "Website"
	}
	links, err := m.lib.QuickLinks()
	if err != nil {
		m.setError("Reading quick links: %v", err)
		return m
	}
	q := library.QuickLink{
		ID:    library.NextQuickLinkID(links),
		Title: title,
		Link:  link,
		Icon:  library.DefaultIcon,
	}
	if err := m.lib.AddQuickLink(q); err != nil {
		m.setError("Saving quick link: %v", err)
		return m
	}
	m.setStatus("Added %s", title)
	m.refreshHome()
	return m
}

// updateSearch handles keys while the home search box has focus.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		return m.submitSearch()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	input := m.search.Value()
	res := m.parser.Parse(input)
	if res.URL == "" {
		return m, nil
	}

	if m.sess != nil && !m.browser.Incognito {
		m.sess.AddSearch(input)
		m.search.SetSuggestions(m.sess.SearchHistory)
	}
	m.search.Blur()
	m.search.Reset()

	if res.IsSearch && res.Provider == "Search" {
		m.browser.SearchWithEngine(res.Query)
	} else {
		m.browser.Open(res.URL)
	}
	return m.navigate(m.browser.URL)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
