package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogDownload dialogKind = iota
	dialogAddLink
	dialogShortcut
)

// dialog is a modal confirmation or a small form.
type dialog struct {
	kind    dialogKind
	title   string
	message string
	url     string // download target
	inputs  []textinput.Model
	focus   int
}

func newDownloadDialog(url, contentType string) *dialog {
	msg := url
	if contentType != "" {
		msg += "\n(" + contentType + ")"
	}
	return &dialog{
		kind:    dialogDownload,
		title:   "Download this file?",
		message: msg,
		url:     url,
	}
}

// newLinkDialog builds the title/link form used for quick links and
// desktop shortcuts.
func newLinkDialog(kind dialogKind, heading, title, link string) *dialog {
	titleIn := textinput.New()
	titleIn.Prompt = "Title: "
	titleIn.SetValue(title)
	titleIn.CursorEnd()

	linkIn := textinput.New()
	linkIn.Prompt = "Link:  "
	linkIn.Placeholder = "https://"
	linkIn.SetValue(link)
	linkIn.CursorEnd()

	return &dialog{
		kind:   kind,
		title:  heading,
		inputs: []textinput.Model{titleIn, linkIn},
	}
}

func (d *dialog) editable() bool {
	return len(d.inputs) > 0
}

func (d *dialog) focusCmd() tea.Cmd {
	if !d.editable() {
		return nil
	}
	return d.inputs[d.focus].Focus()
}

func (d *dialog) next() tea.Cmd {
	d.inputs[d.focus].Blur()
	d.focus = (d.focus + 1) % len(d.inputs)
	return d.inputs[d.focus].Focus()
}

func (d *dialog) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return cmd
}

func (d *dialog) value(i int) string {
	return strings.TrimSpace(d.inputs[i].Value())
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.dialog

	if !d.editable() {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.dialog = nil
			return m.startDownload(d.url)
		case key.Matches(msg, m.keys.No):
			m.dialog = nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.dialog = nil
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		return m, d.next()
	case tea.KeyEnter:
		m.dialog = nil
		title, link := d.value(0), d.value(1)
		if d.kind == dialogShortcut {
			return m.createShortcut(title, link), nil
		}
		return m.addQuickLink(title, link), nil
	}
	return m, d.update(msg)
}

func (m Model) startDownload(url string) (tea.Model, tea.Cmd) {
	if m.downloads == nil {
		m.setError("Downloads are not available")
		return m, nil
	}
	dl := m.downloads
	m.setStatus("Downloading %s", url)
	return m, func() tea.Msg {
		res, err := dl.Start(context.Background(), url)
		return downloadDoneMsg{res: res, err: err}
	}
}

// createShortcut writes a desktop launcher for link.
func (m Model) createShortcut(title, link string) Model {
	if link == "" {
		m.setError("A shortcut needs a link")
		return m
	}
	if title == "" {
		title = "Website"
	}
	path, err := m.platform.CreateShortcut(m.cfg.Shortcuts.Dir, title, link)
	if err != nil {
		m.setError("Creating shortcut: %v", err)
		return m
	}
	m.setStatus("Shortcut saved to %s", path)
	return m
}

func (m Model) dialogView() string {
	d := m.dialog
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(d.title))
	b.WriteString("\n\n")

	if !d.editable() {
		b.WriteString(d.message)
		b.WriteString("\n\n")
		b.WriteString(m.styles.Dim.Render("y download · n cancel"))
	} else {
		for i, in := range d.inputs {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(in.View())
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.Dim.Render("tab switch · enter save · esc cancel"))
	}

	box := m.styles.Dialog.Width(min(60, m.width-4)).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
