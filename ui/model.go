// Package ui is the interactive browser shell: a home surface with a
// search box and quick links, a web surface showing the loaded page, a
// tool sheet of actions and lists, and the dialogs those actions open.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"minibrowse/config"
	"minibrowse/download"
	"minibrowse/engine"
	"minibrowse/library"
	"minibrowse/logging"
	"minibrowse/omnibox"
	"minibrowse/session"
	"minibrowse/state"
	"minibrowse/theme"
)

// Downloader saves files the user agreed to download.
type Downloader interface {
	Start(ctx context.Context, url string) (*download.Result, error)
	SetUserAgent(ua string)
	Dir() string
}

// Platform hands things to the desktop.
type Platform interface {
	Share(url string) error
	OpenDownloads(dir string) error
	CreateShortcut(dir, title, link string) (string, error)
}

// Deps wires the shell to the rest of the browser.
type Deps struct {
	Config    *config.Config
	Browser   *state.Browser
	Library   *library.Library
	Engine    *engine.Engine
	Downloads Downloader
	Platform  Platform
	Session   *session.Session // search history; nil disables suggestions

	// Restore is loaded at startup when Browser has no URL to open.
	Restore session.Buffer

	TerminalDark bool
	Log          *zap.Logger
	Now          func() time.Time
}

// PrefsChangedMsg tells the shell the preference store was changed by
// another process.
type PrefsChangedMsg struct{}

// Messages
type (
	pageLoadedMsg struct {
		seq  int
		page *engine.Page
		err  error
		url  string
	}

	stateMsg engine.WebViewState

	downloadDoneMsg struct {
		res *download.Result
		err error
	}
)

// Model is the bubbletea model of the shell.
type Model struct {
	cfg          *config.Config
	browser      *state.Browser
	lib          *library.Library
	engine       *engine.Engine
	downloads    Downloader
	platform     Platform
	sess         *session.Session
	restore      session.Buffer
	terminalDark bool
	parser       *omnibox.Parser
	log          *zap.Logger
	now          func() time.Time

	keys   KeyMap
	help   help.Model
	theme  *theme.Theme
	styles theme.Styles

	search   textinput.Model
	address  textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int

	// Page loading
	web     engine.WebViewState
	page    *engine.Page
	seq     int
	cancel  context.CancelFunc
	states  chan engine.WebViewState
	initial tea.Cmd

	// Home surface
	quickLinks        []library.QuickLink
	quickLinksEnabled bool
	linkSel           int
	editLinks         bool

	// Tool sheet
	sheetOpen bool
	sheetSel  int
	columns   int // history/bookmark layout: 2 or 1
	entries   []entry

	dialog *dialog

	status    string
	statusErr bool
	quitting  bool
}

// New builds the shell. It takes over the engine's progress callback.
func New(d Deps) Model {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	browser := d.Browser
	if browser == nil {
		browser = state.New(cfg)
	}

	search := textinput.New()
	search.Placeholder = "Search or type a URL"
	search.Prompt = "⌕ "
	search.ShowSuggestions = true
	if d.Session != nil {
		search.SetSuggestions(d.Session.SearchHistory)
	}

	address := textinput.New()
	address.Placeholder = "Address, or #n to follow link n"
	address.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	states := make(chan engine.WebViewState, 16)
	if d.Engine != nil {
		d.Engine.SetOnState(func(s engine.WebViewState) {
			select {
			case states <- s:
			default:
			}
		})
	}

	m := Model{
		cfg:          cfg,
		browser:      browser,
		lib:          d.Library,
		engine:       d.Engine,
		downloads:    d.Downloads,
		platform:     d.Platform,
		sess:         d.Session,
		restore:      d.Restore,
		terminalDark: d.TerminalDark,
		parser:       omnibox.NewParser(browser.SearchEngine()),
		log:          logging.OrNop(d.Log),
		now:          d.Now,
		keys:         NewKeyMap(cfg.Keybindings),
		help:         help.New(),
		search:       search,
		address:      address,
		viewport:     viewport.New(80, 20),
		spinner:      sp,
		width:        80,
		height:       24,
		states:       states,
		columns:      2,
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.applyTheme()
	m.refreshHome()
	m.prepareInitial()
	m.layout()
	return m
}

// Init starts the progress listener and the initial load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForState(m.states)}
	if m.initial != nil {
		cmds = append(cmds, m.spinner.Tick, m.initial)
	}
	return tea.Batch(cmds...)
}

// prepareInitial sets up the first load: the URL the browser was opened
// with, or the restored session.
func (m *Model) prepareInitial() {
	if m.engine == nil {
		return
	}
	switch {
	case m.browser.Mode == state.ModeWeb && m.browser.URL != "":
		url := m.browser.URL
		m.address.SetValue(url)
		m.seq++
		m.web.IsLoading = true
		m.initial = m.loadCmd(m.seq, url, func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
			return e.Load(ctx, url)
		})
	case !m.restore.Empty():
		buf := m.restore
		m.browser.Open(buf.Current.URL)
		m.address.SetValue(buf.Current.URL)
		m.seq++
		m.web.IsLoading = true
		m.initial = m.loadCmd(m.seq, buf.Current.URL, func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
			return e.Restore(ctx, buf)
		})
	}
}

func waitForState(ch <-chan engine.WebViewState) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.renderPage()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case stateMsg:
		st := engine.WebViewState(msg)
		if m.cancel == nil {
			st.IsLoading = false
		}
		m.web = st
		return m, waitForState(m.states)

	case downloadDoneMsg:
		if msg.err != nil {
			m.log.Warn("download failed", zap.Error(msg.err))
			m.setError("Download failed: %v", msg.err)
			return m, nil
		}
		m.setStatus("Saved %s", msg.res.Path)
		return m, nil

	case PrefsChangedMsg:
		m.refreshHome()
		if m.sheetOpen && m.browser.Sheet != state.SheetQuickSet {
			m = m.showPanel(m.browser.Sheet)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.web.IsLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// updateInputs forwards other messages (cursor blinks) to the focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.dialog != nil && m.dialog.editable():
		cmd = m.dialog.update(msg)
	case m.address.Focused():
		m.address, cmd = m.address.Update(msg)
	case m.search.Focused():
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if m.dialog != nil {
		return m.updateDialog(msg)
	}
	if m.sheetOpen {
		return m.updateSheet(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tools):
		return m.openSheet(), nil
	case key.Matches(msg, m.keys.Home):
		return m.goHome(), nil
	case key.Matches(msg, m.keys.ToggleBar):
		m.browser.ToggleBar()
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Bookmark):
		m = m.addBookmark()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Forward):
		return m.forward()
	}

	if m.address.Focused() {
		return m.updateAddress(msg)
	}
	if m.search.Focused() {
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back()
	case key.Matches(msg, m.keys.Address):
		if m.browser.Mode == state.ModeHome {
			cmd := m.search.Focus()
			return m, cmd
		}
		if !m.browser.BarVisible {
			m.browser.ToggleBar()
			m.layout()
		}
		m.address.SetValue(m.browser.URL)
		m.address.CursorEnd()
		cmd := m.address.Focus()
		return m, cmd
	}

	if m.browser.Mode == state.ModeHome {
		return m.updateHome(msg)
	}
	return m.updateWeb(msg)
}

// navigate opens url on the web surface.
func (m Model) navigate(url string) (Model, tea.Cmd) {
	m.browser.Open(url)
	m.address.SetValue(url)
	return m.startLoad(url, func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
		return e.Load(ctx, url)
	})
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.page == nil || m.browser.Mode != state.ModeWeb {
		return m, nil
	}
	m.engine.SetScroll(m.viewport.YOffset)
	return m.startLoad(m.page.URL, func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
		return e.Reload(ctx)
	})
}

func (m Model) forward() (tea.Model, tea.Cmd) {
	if m.browser.Mode != state.ModeWeb || !m.engine.CanGoForward() {
		return m, nil
	}
	m.engine.SetScroll(m.viewport.YOffset)
	return m.startLoad("", func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
		return e.GoForward(ctx)
	})
}

// back applies the back key: page history first, then the home surface,
// then exit.
func (m Model) back() (tea.Model, tea.Cmd) {
	switch m.browser.Back(m.engine != nil && m.engine.CanGoBack()) {
	case state.BackGoBack:
		m.engine.SetScroll(m.viewport.YOffset)
		return m.startLoad("", func(ctx context.Context, e *engine.Engine) (*engine.Page, error) {
			return e.GoBack(ctx)
		})
	case state.BackToHome:
		return m.goHome(), nil
	default:
		return m.quit()
	}
}

func (m Model) goHome() Model {
	m.stopLoad()
	if m.page != nil {
		m.engine.SetScroll(m.viewport.YOffset)
	}
	m.browser.GoHome()
	m.address.Blur()
	m.refreshHome()
	m.layout()
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopLoad()
	if m.page != nil && m.engine != nil {
		m.engine.SetScroll(m.viewport.YOffset)
	}
	m.quitting = true
	return m, tea.Quit
}

// startLoad cancels any load in flight and runs fn on the engine.
func (m Model) startLoad(url string, fn func(context.Context, *engine.Engine) (*engine.Page, error)) (Model, tea.Cmd) {
	m.stopLoad()
	m.seq++
	m.web.IsLoading = true
	m.web.Progress = 0
	m.clearStatus()
	load := m.loadCmd(m.seq, url, fn)
	return m, tea.Batch(m.spinner.Tick, load)
}

func (m *Model) loadCmd(seq int, url string, fn func(context.Context, *engine.Engine) (*engine.Page, error)) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	e := m.engine
	return func() tea.Msg {
		page, err := fn(ctx, e)
		return pageLoadedMsg{seq: seq, page: page, err: err, url: url}
	}
}

func (m *Model) stopLoad() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.web.IsLoading = false
}

// handlePageLoaded processes a finished load. Results of superseded loads
// are dropped.
func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq || m.cancel == nil {
		return m, nil
	}
	m.stopLoad()

	if msg.err != nil {
		var dl *engine.DownloadRequest
		switch {
		case errors.As(msg.err, &dl):
			m.restoreAddress()
			m.dialog = newDownloadDialog(dl.URL, dl.ContentType)
		case errors.Is(msg.err, context.Canceled):
		default:
			m.log.Info("page load failed", zap.String("url", msg.url), zap.Error(msg.err))
			m.setError("Failed to load %s: %v", msg.url, msg.err)
			if m.page == nil {
				m.viewport.SetContent(m.styles.Error.Render("Failed to load page") + "\n\n" +
					m.styles.Dim.Render(fmt.Sprintf("URL: %s\nError: %v", msg.url, msg.err)))
			}
		}
		return m, nil
	}

	m.page = msg.page
	m.web = m.engine.State()
	m.browser.Open(msg.page.URL)
	m.address.SetValue(msg.page.URL)
	m.layout()
	m.renderPage()
	m.viewport.SetYOffset(msg.page.ScrollY)
	return m, nil
}

// restoreAddress puts the bar back on the page still on screen after a
// load that did not replace it.
func (m *Model) restoreAddress() {
	if m.page == nil {
		m.browser.GoHome()
		m.refreshHome()
		m.layout()
		return
	}
	m.browser.URL = m.page.URL
	m.address.SetValue(m.page.URL)
}

func (m *Model) applyTheme() {
	m.theme = theme.Resolve(m.cfg.Appearance.Theme, m.browser.DarkMode, m.terminalDark)
	m.styles = m.theme.Styles()
	m.spinner.Style = m.styles.Accent
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// Accessors used by main and tests.

// Browser returns the view-model.
func (m Model) Browser() *state.Browser { return m.browser }

// Page returns the page on screen, or nil.
func (m Model) Page() *engine.Page { return m.page }

// Status returns the status line message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Quitting reports whether the shell is exiting.
func (m Model) Quitting() bool { return m.quitting }
