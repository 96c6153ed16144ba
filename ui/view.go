package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"minibrowse/state"
)

// sheetHeight is the number of rows the tool sheet takes when open.
const sheetHeight = 12

// layout sizes the components for the window and the visible chrome.
func (m *Model) layout() {
	m.help.Width = m.width
	m.search.Width = max(10, min(60, m.width-10))
	m.address.Width = max(10, m.width-6)

	h := m.height - 1 // title line
	if m.browser.BarVisible {
		h -= 3 + 1 + 1 // address bar, status line, help
	}
	if m.sheetOpen {
		h -= sheetHeight
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(1, h)
}

// View renders the shell.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.dialog != nil {
		return m.dialogView()
	}

	var parts []string
	if m.browser.Mode == state.ModeHome {
		parts = m.homeView()
	} else {
		parts = m.webView()
	}
	if m.sheetOpen {
		parts = append(parts, m.sheetView())
	}
	if m.browser.BarVisible && !m.sheetOpen {
		parts = append(parts, m.help.View(m.keys))
	}
	return m.styles.Base.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) homeView() []string {
	title := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.styles.Heading.Render("minibrowse"))

	bar := m.styles.Bar
	if m.search.Focused() {
		bar = m.styles.BarFocus
	}
	search := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bar.Render(m.search.View()))

	parts := []string{title, "", search, ""}
	if m.quickLinksEnabled {
		parts = append(parts, m.quickLinkGrid())
	} else {
		parts = append(parts, m.styles.Dim.Render("Quick links hidden (H to show)"))
	}
	parts = append(parts, "", m.statusLine())
	return parts
}

func (m Model) quickLinkGrid() string {
	tileWidth := max(8, m.width/homeColumns-2)
	label := tileWidth - 2

	var tiles []string
	for i, q := range m.quickLinks {
		text := q.Title
		if m.editLinks {
			text = m.styles.Badge.Render("✕") + " " + runewidth.Truncate(text, label-2, "…")
		} else {
			text = runewidth.Truncate(text, label, "…")
		}
		tiles = append(tiles, m.tile(i, text, tileWidth))
	}
	tiles = append(tiles, m.tile(len(m.quickLinks), "+ Add", tileWidth))

	var rows []string
	for start := 0; start < len(tiles); start += homeColumns {
		end := min(start+homeColumns, len(tiles))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) tile(i int, text string, width int) string {
	style := m.styles.Tile
	if i == m.linkSel {
		style = m.styles.TileOn
	}
	return style.Width(width).Render(text)
}

func (m Model) webView() []string {
	var parts []string
	if m.browser.BarVisible {
		bar := m.styles.Bar
		text := m.address.View()
		if m.address.Focused() {
			bar = m.styles.BarFocus
		} else {
			text = runewidth.Truncate(m.browser.URL, m.width-6, "…")
		}
		parts = append(parts, bar.Width(m.width-2).Render(text))
	}

	parts = append(parts, m.titleLine(), m.viewport.View())

	if m.browser.BarVisible {
		parts = append(parts, m.statusLine())
	}
	return parts
}

func (m Model) titleLine() string {
	if m.web.IsLoading {
		return m.spinner.View() + m.styles.Dim.Render(fmt.Sprintf(" Loading %d%%", m.web.Progress))
	}
	if m.page == nil {
		return ""
	}
	title := m.page.Title
	if title == "" {
		title = m.page.URL
	}
	return m.styles.Title.Render(runewidth.Truncate(title, m.width, "…"))
}

// statusLine shows the last message on the left and the mode flags on the
// right.
func (m Model) statusLine() string {
	left := m.status
	if m.statusErr {
		left = m.styles.Error.Render(left)
	}

	var flags []string
	if m.browser.Incognito {
		flags = append(flags, "incognito")
	}
	if m.browser.AccessMode == state.AccessDesktop {
		flags = append(flags, "desktop")
	}
	if m.browser.ImageMode != state.ImagesShow {
		flags = append(flags, strings.ToLower(m.browser.ImageMode.String()))
	}
	if m.browser.Fullscreen {
		flags = append(flags, "fullscreen")
	}
	if m.browser.Mode == state.ModeWeb && m.page != nil && m.page.Doc != nil {
		flags = append(flags, fmt.Sprintf("%d links", len(m.page.Doc.Links)))
	}
	right := m.styles.Status.Render(strings.Join(flags, " · "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) sheetView() string {
	var content string
	if m.browser.Sheet == state.SheetQuickSet {
		content = m.actionGrid()
	} else {
		content = m.panelView()
	}
	return m.styles.Sheet.Width(m.width).Height(sheetHeight - 1).Render(content)
}

func (m Model) actionGrid() string {
	items := m.browser.QuickSet()
	cell := max(8, (m.width-2)/sheetColumns)

	var rows []string
	var row []string
	for i, it := range items {
		text := it.Icon + " " + it.Title
		if it.Switch {
			if it.Enabled {
				text += " ●"
			} else {
				text += " ○"
			}
		}
		text = runewidth.Truncate(text, cell-1, "…")

		style := lipgloss.NewStyle().Width(cell)
		switch {
		case i == m.sheetSel:
			style = style.Inherit(m.styles.Accent).Reverse(true)
		case !it.Actionable():
			style = style.Inherit(m.styles.Dim)
		}
		row = append(row, style.Render(text))

		if len(row) == sheetColumns || i == len(items)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return m.styles.Title.Render("Tools") + "\n\n" + strings.Join(rows, "\n")
}

func (m Model) panelView() string {
	var heading, empty, hint string
	cols := 1
	switch m.browser.Sheet {
	case state.SheetHistory:
		heading, empty = "History", "No history"
		hint = "v layout · C clear · esc back"
		cols = m.columns
	case state.SheetBookmarks:
		heading, empty = "Bookmarks", "No bookmarks"
		hint = "v layout · C clear · esc back"
		cols = m.columns
	default:
		heading, empty = "Resources", "No images on this page"
		hint = "enter open · esc back"
	}

	head := m.styles.Title.Render(heading) + "  " + m.styles.Dim.Render(hint)
	if len(m.entries) == 0 {
		return head + "\n\n" + m.styles.Dim.Render(empty)
	}

	cell := max(10, (m.width-2)/cols)
	visible := (sheetHeight - 4) * cols
	first := 0
	if m.sheetSel >= visible {
		first = (m.sheetSel/cols - (sheetHeight - 5)) * cols
	}

	var rows []string
	var row []string
	for i := first; i < len(m.entries) && i < first+visible; i++ {
		e := m.entries[i]
		text := runewidth.Truncate(e.Title, cell-1, "…")
		if room := cell - 3 - runewidth.StringWidth(text); cols == 1 && e.URL != e.Title && room > 4 {
			text += "  " + m.styles.Dim.Render(runewidth.Truncate(e.URL, room, "…"))
		}

		style := lipgloss.NewStyle().Width(cell)
		if i == m.sheetSel {
			style = style.Inherit(m.styles.Accent).Reverse(true)
		}
		row = append(row, style.Render(text))
		if len(row) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return head + "\n\n" + strings.Join(rows, "\n")
}
