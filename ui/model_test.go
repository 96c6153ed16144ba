package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minibrowse/config"
	"minibrowse/download"
	"minibrowse/engine"
	"minibrowse/fetcher"
	"minibrowse/library"
	"minibrowse/omnibox"
	"minibrowse/platform"
	"minibrowse/prefs"
	"minibrowse/session"
	"minibrowse/state"
)

const (
	pageA  = "https://a.example/"
	pageB  = "https://b.example/"
	zipURL = "https://a.example/file.zip"
)

var sitePages = map[string]*fetcher.FetchResult{
	pageA: {
		HTML: `<html><head><title>A</title></head><body><h1>Alpha</h1>
<p>See <a href="https://b.example/">bee</a>.</p><img src="/logo.png" alt="logo"></body></html>`,
		FinalURL:    pageA,
		ContentType: "text/html",
		StatusCode:  200,
	},
	pageB: {
		HTML:        `<html><head><title>B</title></head><body><p>Bravo</p></body></html>`,
		FinalURL:    pageB,
		ContentType: "text/html",
		StatusCode:  200,
	},
	zipURL: {
		FinalURL:    zipURL,
		ContentType: "application/zip",
		StatusCode:  200,
	},
}

type fakeFetcher struct{}

func (fakeFetcher) Simple(_ context.Context, r fetcher.Request) (*fetcher.FetchResult, error) {
	res, ok := sitePages[r.URL]
	if !ok {
		return nil, fmt.Errorf("no such page %s", r.URL)
	}
	cp := *res
	return &cp, nil
}

func (f fakeFetcher) Browser(ctx context.Context, r fetcher.Request) (*fetcher.FetchResult, error) {
	return f.Simple(ctx, r)
}

func (fakeFetcher) File(string) (*fetcher.FetchResult, error) {
	return nil, errors.New("no files here")
}

type fakeDownloader struct {
	dir     string
	ua      string
	started []string
}

func (d *fakeDownloader) Start(_ context.Context, url string) (*download.Result, error) {
	d.started = append(d.started, url)
	name := filepath.Base(url)
	return &download.Result{URL: url, Name: name, Path: filepath.Join(d.dir, name)}, nil
}

func (d *fakeDownloader) SetUserAgent(ua string) { d.ua = ua }
func (d *fakeDownloader) Dir() string             { return d.dir }

type fakePlatform struct {
	shared    []string
	opened    []string
	openErr   error
	shortcuts [][3]string
}

func (p *fakePlatform) Share(url string) error {
	p.shared = append(p.shared, url)
	return nil
}

func (p *fakePlatform) OpenDownloads(dir string) error {
	p.opened = append(p.opened, dir)
	return p.openErr
}

func (p *fakePlatform) CreateShortcut(dir, title, link string) (string, error) {
	p.shortcuts = append(p.shortcuts, [3]string{dir, title, link})
	return filepath.Join(dir, platform.ShortcutPrefix+platform.Slug(link)+".desktop"), nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
}

type harness struct {
	lib      *library.Library
	browser  *state.Browser
	engine   *engine.Engine
	dl       *fakeDownloader
	platform *fakePlatform
	sess     *session.Session
	cfg      *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Shortcuts.Dir = t.TempDir()
	lib := library.New(prefs.NewMemory())
	b := state.New(cfg)
	return &harness{
		lib:      lib,
		browser:  b,
		engine:   engine.New(fakeFetcher{}, lib, engine.Options{UserAgent: b.UserAgent()}, nil),
		dl:       &fakeDownloader{dir: t.TempDir()},
		platform: &fakePlatform{},
		sess:     &session.Session{},
		cfg:      cfg,
	}
}

func (h *harness) model(t *testing.T, restore session.Buffer) Model {
	t.Helper()
	m := New(Deps{
		Config:    h.cfg,
		Browser:   h.browser,
		Library:   h.lib,
		Engine:    h.engine,
		Downloads: h.dl,
		Platform:  h.platform,
		Session:   h.sess,
		Restore:   restore,
		Now:       fixedNow,
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// collect runs cmd and returns the load and download results it produces.
// Timers and the progress listener are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(time.Second):
		return nil
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case pageLoadedMsg, downloadDoneMsg:
		return []tea.Msg{msg}
	}
	return nil
}

// settle feeds the results of cmd back into m until nothing is pending.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		updated, next := m.Update(msg)
		m = updated.(Model)
		m = settle(t, m, next)
	}
	return m
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyTools = tea.KeyMsg{Type: tea.KeyCtrlT}
	keyAddr  = tea.KeyMsg{Type: tea.KeyCtrlL}
)

func open(t *testing.T, m Model, url string) Model {
	t.Helper()
	m, cmd := m.navigate(url)
	return settle(t, m, cmd)
}

func TestHomeSearchOpensAddress(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})
	require.Equal(t, state.ModeHome, h.browser.Mode)

	m, _ = press(m, runes("/"))
	require.True(t, m.search.Focused())
	m, _ = press(m, runes("a.example/"))
	m, cmd := press(m, keyEnter)
	m = settle(t, m, cmd)

	require.NotNil(t, m.Page())
	assert.Equal(t, "A", m.Page().Title)
	assert.Equal(t, state.ModeWeb, h.browser.Mode)
	assert.Equal(t, pageA, h.browser.URL)
	assert.False(t, m.search.Focused())
	assert.Equal(t, []string{"a.example/"}, h.sess.SearchHistory)

	hist, err := h.lib.History()
	require.NoError(t, err)
	assert.Equal(t, pageA, hist[len(hist)-1].URL)
}

func TestHomeSearchUsesDefaultEngine(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})

	m, _ = press(m, runes("/"))
	m, _ = press(m, runes("golang tips"))
	m, cmd := press(m, keyEnter)
	m = settle(t, m, cmd)

	assert.Equal(t, omnibox.SearchURL(config.DefaultSearchEngine, "golang tips"), h.browser.URL)
	msg, isErr := m.Status()
	assert.True(t, isErr)
	assert.Contains(t, msg, "Failed to load")
}

func TestAddressBarFollowsLinkNumber(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)

	m, _ = press(m, keyAddr)
	require.True(t, m.address.Focused())
	assert.Equal(t, pageA, m.address.Value())

	m.address.SetValue("#1")
	m, cmd := press(m, keyEnter)
	m = settle(t, m, cmd)
	require.NotNil(t, m.Page())
	assert.Equal(t, "B", m.Page().Title)

	m, _ = press(m, keyAddr)
	m.address.SetValue("#9")
	m, _ = press(m, keyEnter)
	msg, isErr := m.Status()
	assert.True(t, isErr)
	assert.Contains(t, msg, "No link 9")
	assert.Equal(t, "B", m.Page().Title)
}

func TestBackWalksHistoryThenHomeThenExits(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)
	m = open(t, m, pageB)

	m, cmd := press(m, keyEsc)
	m = settle(t, m, cmd)
	assert.Equal(t, "A", m.Page().Title)
	assert.Equal(t, state.ModeWeb, h.browser.Mode)

	m, _ = press(m, keyEsc)
	assert.Equal(t, state.ModeHome, h.browser.Mode)
	assert.False(t, m.Quitting())

	m, cmd = press(m, keyEsc)
	assert.True(t, m.Quitting())
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestSupersededLoadIsDropped(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})

	m, first := m.navigate(pageA)
	m, second := m.navigate(pageB)

	m = settle(t, m, first)
	assert.Nil(t, m.Page())
	m = settle(t, m, second)
	require.NotNil(t, m.Page())
	assert.Equal(t, "B", m.Page().Title)
}

func TestDownloadNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), zipURL)

	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogDownload, m.dialog.kind)
	assert.Equal(t, state.ModeHome, h.browser.Mode, "no page was on screen")
	assert.Contains(t, m.View(), "Download this file?")

	m, _ = press(m, runes("n"))
	assert.Nil(t, m.dialog)
	assert.Empty(t, h.dl.started)

	m = open(t, m, pageA)
	m = open(t, m, zipURL)
	require.NotNil(t, m.dialog)
	assert.Equal(t, pageA, h.browser.URL, "page stays on screen")

	m, cmd := press(m, runes("y"))
	m = settle(t, m, cmd)
	assert.Equal(t, []string{zipURL}, h.dl.started)
	msg, isErr := m.Status()
	assert.False(t, isErr)
	assert.Equal(t, "Saved "+filepath.Join(h.dl.dir, "file.zip"), msg)
}

func TestToolSheetGrid(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})

	m, _ = press(m, keyTools)
	require.True(t, m.sheetOpen)
	assert.Contains(t, m.View(), "Tools")

	// Downloads is first.
	m, _ = press(m, keyEnter)
	assert.Equal(t, []string{h.dl.dir}, h.platform.opened)

	// Share is disabled on the home surface.
	m, _ = press(m, runes("l"))
	m, _ = press(m, keyEnter)
	assert.Empty(t, h.platform.shared)

	m, _ = press(m, keyEsc)
	assert.False(t, m.sheetOpen)
}

func TestOpenDownloadsWithoutOpener(t *testing.T) {
	h := newHarness(t)
	h.platform.openErr = platform.ErrNoOpener
	m := h.model(t, session.Buffer{})

	updated, _ := m.runAction(state.ActionDownloads)
	m = updated.(Model)
	msg, isErr := m.Status()
	assert.True(t, isErr)
	assert.Equal(t, "No download manager found", msg)
}

func TestQuickSetActionsOnPage(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)
	m, _ = press(m, keyTools)

	run := func(id int) {
		t.Helper()
		updated, cmd := m.runAction(id)
		m = settle(t, updated.(Model), cmd)
	}

	run(state.ActionDesktop)
	assert.Equal(t, state.AccessDesktop, h.browser.AccessMode)
	assert.Equal(t, config.DesktopUserAgent, h.dl.ua)
	assert.Equal(t, "A", m.Page().Title)

	run(state.ActionDarkMode)
	run(state.ActionDarkMode)
	d, err := h.lib.DarkMode()
	require.NoError(t, err)
	assert.Equal(t, int(state.DarkDark), d)
	assert.Equal(t, "default-dark", m.theme.Name)

	run(state.ActionImageMode)
	im, err := h.lib.ImageMode()
	require.NoError(t, err)
	assert.Equal(t, int(state.ImagesSaver), im)
	assert.Contains(t, m.View(), "[1 image hidden]")

	run(state.ActionAddBookmark)
	marks, err := h.lib.Bookmarks()
	require.NoError(t, err)
	last := marks[len(marks)-1]
	assert.Equal(t, library.Bookmark{ID: fixedNow().UnixMilli(), URL: pageA, Title: "A"}, last)

	run(state.ActionFullscreen)
	assert.True(t, h.browser.Fullscreen)
	assert.False(t, h.browser.BarVisible)

	run(state.ActionShare)
	assert.Equal(t, []string{pageA}, h.platform.shared)
	assert.False(t, m.sheetOpen)
}

func TestShortcutDialog(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)

	updated, _ := m.runAction(state.ActionShortcut)
	m = updated.(Model)
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Website", m.dialog.value(0))
	assert.Equal(t, pageA, m.dialog.value(1))

	m, _ = press(m, keyEnter)
	assert.Nil(t, m.dialog)
	require.Len(t, h.platform.shortcuts, 1)
	assert.Equal(t, [3]string{h.cfg.Shortcuts.Dir, "Website", pageA}, h.platform.shortcuts[0])
	msg, _ := m.Status()
	assert.True(t, strings.HasPrefix(msg, "Shortcut saved to "))
}

func TestHistoryPanel(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)
	m = open(t, m, pageB)
	m, _ = press(m, keyTools)

	updated, _ := m.runAction(state.ActionHistory)
	m = updated.(Model)
	require.Equal(t, state.SheetHistory, h.browser.Sheet)
	require.GreaterOrEqual(t, len(m.entries), 2)
	assert.Equal(t, pageB, m.entries[0].URL, "newest first")
	assert.Equal(t, pageA, m.entries[1].URL)

	assert.Equal(t, 2, m.columns)
	m, _ = press(m, runes("v"))
	assert.Equal(t, 1, m.columns)

	// Down moves one row in the single-column layout.
	m, _ = press(m, runes("j"))
	assert.Equal(t, 1, m.sheetSel)
	m, cmd := press(m, keyEnter)
	m = settle(t, m, cmd)
	assert.False(t, m.sheetOpen)
	assert.Equal(t, "A", m.Page().Title)

	m, _ = press(m, keyTools)
	updated, _ = m.runAction(state.ActionHistory)
	m = updated.(Model)
	m, _ = press(m, runes("C"))
	assert.Empty(t, m.entries)
	hist, err := h.lib.History()
	require.NoError(t, err)
	assert.Empty(t, hist)
	assert.Contains(t, m.View(), "No history")

	// Esc returns to the action grid.
	m, _ = press(m, keyEsc)
	assert.True(t, m.sheetOpen)
	assert.Equal(t, state.SheetQuickSet, h.browser.Sheet)
}

func TestBookmarksPanelEmpty(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.lib.ClearBookmarks())
	m := h.model(t, session.Buffer{})
	m, _ = press(m, keyTools)

	updated, _ := m.runAction(state.ActionBookmarks)
	m = updated.(Model)
	assert.Contains(t, m.View(), "No bookmarks")
}

func TestResourcesPanelListsImages(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)
	m, _ = press(m, keyTools)

	updated, _ := m.runAction(state.ActionResources)
	m = updated.(Model)
	require.Len(t, m.entries, 1)
	assert.Equal(t, "https://a.example/logo.png", m.entries[0].URL)
}

func TestResourcesPanelEmptyAtHome(t *testing.T) {
	h := newHarness(t)
	m := open(t, h.model(t, session.Buffer{}), pageA)
	m = m.goHome()
	m, _ = press(m, keyTools)

	updated, _ := m.runAction(state.ActionResources)
	m = updated.(Model)
	assert.Empty(t, m.entries)
	assert.Contains(t, m.View(), "No images on this page")
}

func TestQuickLinkEditing(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})

	m, _ = press(m, runes("+"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Website", m.dialog.value(0))
	m, _ = press(m, keyTab)
	m, _ = press(m, runes("example.org"))
	m, _ = press(m, keyEnter)
	require.Nil(t, m.dialog)

	links, err := h.lib.QuickLinks()
	require.NoError(t, err)
	require.Len(t, links, 7)
	assert.Equal(t, library.QuickLink{ID: 7, Title: "Website", Link: "https://example.org", Icon: library.DefaultIcon}, links[6])

	m, _ = press(m, runes("e"))
	require.True(t, m.editLinks)
	assert.Contains(t, m.View(), "✕")
	m, _ = press(m, runes("x"))
	links, err = h.lib.QuickLinks()
	require.NoError(t, err)
	require.Len(t, links, 6)
	assert.Equal(t, "Xiaomi", links[0].Title)

	m, _ = press(m, runes("H"))
	enabled, err := h.lib.QuickLinksEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, m.editLinks)
	assert.Contains(t, m.View(), "Quick links hidden")
}

func TestQuickLinkOpens(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.lib.AddQuickLink(library.QuickLink{ID: 7, Title: "A", Link: pageA}))
	m := h.model(t, session.Buffer{})

	m.linkSel = 6
	m, cmd := press(m, keyEnter)
	m = settle(t, m, cmd)
	require.NotNil(t, m.Page())
	assert.Equal(t, "A", m.Page().Title)
}

func TestInitLoadsStartURL(t *testing.T) {
	h := newHarness(t)
	h.browser.Open(pageB)
	m := h.model(t, session.Buffer{})

	m = settle(t, m, m.Init())
	require.NotNil(t, m.Page())
	assert.Equal(t, "B", m.Page().Title)
	assert.Contains(t, m.View(), "Bravo")
}

func TestInitRestoresSession(t *testing.T) {
	h := newHarness(t)
	buf := session.Buffer{
		History: []session.PageState{{URL: pageA}},
		Current: session.PageState{URL: pageB},
	}
	m := h.model(t, buf)

	m = settle(t, m, m.Init())
	require.NotNil(t, m.Page())
	assert.Equal(t, "B", m.Page().Title)
	assert.True(t, h.engine.CanGoBack())
	assert.Equal(t, state.ModeWeb, h.browser.Mode)
}

func TestIncognitoSkipsSearchHistory(t *testing.T) {
	h := newHarness(t)
	h.browser.Incognito = true
	m := h.model(t, session.Buffer{})

	m, _ = press(m, runes("/"))
	m, _ = press(m, runes("b.example/"))
	m, cmd := press(m, keyEnter)
	settle(t, m, cmd)
	assert.Empty(t, h.sess.SearchHistory)
}

func TestPrefsChangedRefreshesHome(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, session.Buffer{})
	require.Len(t, m.quickLinks, 6)

	require.NoError(t, h.lib.AddQuickLink(library.QuickLink{ID: 7, Title: "Elsewhere", Link: pageB}))
	updated, _ := m.Update(PrefsChangedMsg{})
	m = updated.(Model)
	require.Len(t, m.quickLinks, 7)
	assert.Contains(t, m.View(), "Elsewhere")
}
