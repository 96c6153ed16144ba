package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"minibrowse/html"
	"minibrowse/omnibox"
	"minibrowse/state"
)

// updateAddress handles keys while the address bar has focus.
func (m Model) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.address.Blur()
		m.address.SetValue(m.browser.URL)
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.address.Value())
		m.address.Blur()
		if strings.HasPrefix(input, "#") {
			return m.followLink(input[1:])
		}
		target := omnibox.NormalizeAddress(input)
		if target == "" {
			m.address.SetValue(m.browser.URL)
			return m, nil
		}
		return m.navigate(target)
	}
	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

// followLink opens the page link numbered ref.
func (m Model) followLink(ref string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil || m.page == nil || m.page.Doc == nil {
		m.setError("No link %q", ref)
		m.address.SetValue(m.browser.URL)
		return m, nil
	}
	u, ok := m.page.Doc.LinkURL(n)
	if !ok {
		m.setError("No link %d (page has %d)", n, len(m.page.Doc.Links))
		m.address.SetValue(m.browser.URL)
		return m, nil
	}
	return m.navigate(u)
}

// updateWeb scrolls the page.
func (m Model) updateWeb(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderPage lays the current page out for the viewport width.
func (m *Model) renderPage() {
	if m.page == nil || m.page.Doc == nil {
		return
	}
	lines := m.page.Doc.Lines(html.RenderOptions{
		CollapseImages: m.browser.ImageMode == state.ImagesSaver,
	})

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case strings.HasPrefix(line, "#"):
			sb.WriteString(m.styles.Heading.Render(line))
		case strings.HasPrefix(line, "[image") || (strings.HasPrefix(line, "[") && strings.HasSuffix(line, "hidden]")):
			sb.WriteString(m.styles.Dim.Render(line))
		default:
			sb.WriteString(line)
		}
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width).Render(sb.String())
	m.viewport.SetContent(body)
}
