// Minibrowse is a minimal terminal browser shell: a home page of quick
// links, a readable page view, history, bookmarks and a tool sheet.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term"

	"minibrowse/config"
	"minibrowse/download"
	"minibrowse/engine"
	"minibrowse/fetcher"
	"minibrowse/html"
	"minibrowse/intent"
	"minibrowse/library"
	"minibrowse/logging"
	"minibrowse/omnibox"
	"minibrowse/platform"
	"minibrowse/prefs"
	"minibrowse/session"
	"minibrowse/state"
	"minibrowse/ui"
)

func main() {
	target := ""
	printMode := false
	initConfig := false
	incognito := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-p", "--print":
			printMode = true
		case "--incognito":
			incognito = true
		case "--init-config":
			initConfig = true
		case "-h", "--help":
			printUsage()
			return
		default:
			if target == "" {
				target = arg
			}
		}
	}

	// Generate default config and exit
	if initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	if printMode {
		if err := runPrint(target); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(target, incognito); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Minibrowse - Minimal Terminal Browser

Usage: minibrowse [options] [url|file|search terms]

Options:
  -p, --print       Print page to stdout (one-shot mode)
  --incognito       Do not record history or save the session
  --init-config     Output default config (redirect to ~/.config/minibrowse/config.toml)
  -h, --help        Show this help

Examples:
  minibrowse                          Open the home page
  minibrowse https://example.com      Open URL
  minibrowse ./page.html              Open a local file
  minibrowse -p https://example.com   Print page to stdout
  minibrowse --init-config > ~/.config/minibrowse/config.toml

Configuration:
  Config file: ~/.config/minibrowse/config.toml
  Environment: MINIBROWSE_* variables override the file`)
}

// app holds what both the shell and print mode need.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   prefs.Store
	lib     *library.Library
	browser *state.Browser
	engine  *engine.Engine
}

func setup(incognito bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.NewOrNop(logging.Config{
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
		Development: cfg.Logging.Development,
	})

	store, err := prefs.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}
	lib := library.New(store)

	b := state.New(cfg)
	b.Incognito = incognito
	if d, err := lib.DarkMode(); err != nil {
		log.Warn("reading dark mode", zap.Error(err))
	} else {
		b.DarkMode = state.DarkMode(triState(d))
	}
	if im, err := lib.ImageMode(); err != nil {
		log.Warn("reading image mode", zap.Error(err))
	} else {
		b.ImageMode = state.ImageMode(triState(im))
	}

	f := fetcher.New(fetcher.Options{
		TimeoutSeconds: cfg.Fetcher.TimeoutSeconds,
		ChromePath:     cfg.Fetcher.ChromePath,
		ProfileDir:     filepath.Join(cfg.Storage.Dir, "chrome-profile"),
	}, log)

	eng := engine.New(f, lib, engine.Options{
		UserAgent: b.UserAgent(),
		ImageMode: b.ImageMode,
		Renderer:  cfg.Fetcher.Renderer,
		Incognito: incognito,
	}, log)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		lib:     lib,
		browser: b,
		engine:  eng,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing preferences", zap.Error(err))
	}
	_ = a.log.Sync()
}

// triState maps stored settings outside 0..2 to the default.
func triState(v int) int {
	if v < 0 || v > 2 {
		return 0
	}
	return v
}

// startURL turns the command-line argument into a URL: an http(s) address
// or local file through the intent resolver, anything else like input to
// the home search box.
func (a *app) startURL(arg string) string {
	if arg == "" {
		return ""
	}
	r := intent.NewResolver(config.CacheDir(), a.log)
	if u, ok := r.Resolve(intent.FromArg(arg)); ok {
		return u
	}
	return omnibox.NewParser(a.browser.SearchEngine()).Parse(arg).URL
}

func run(target string, incognito bool) error {
	a, err := setup(incognito)
	if err != nil {
		return err
	}
	defer a.close()

	if u := a.startURL(target); u != "" {
		a.browser.Open(u)
	}

	sessions := session.NewStore(a.cfg.Storage.Dir)
	sess, err := sessions.Load()
	if err != nil {
		a.log.Warn("loading session", zap.String("path", sessions.Path()), zap.Error(err))
		sess = &session.Session{}
	}
	var restore session.Buffer
	if a.cfg.Session.Restore && !incognito && a.browser.URL == "" {
		restore = sess.Tab
	}

	downloads := download.New(download.Options{
		Dir:       a.cfg.Downloads.Dir,
		UserAgent: a.browser.UserAgent(),
	}, a.log)

	model := ui.New(ui.Deps{
		Config:       a.cfg,
		Browser:      a.browser,
		Library:      a.lib,
		Engine:       a.engine,
		Downloads:    downloads,
		Platform:     platform.New(a.log),
		Session:      sess,
		Restore:      restore,
		TerminalDark: lipgloss.HasDarkBackground(),
		Log:          a.log,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if f, ok := a.store.(*prefs.File); ok {
		go func() {
			onChange := func() { p.Send(ui.PrefsChangedMsg{}) }
			onError := func(err error) { a.log.Warn("reloading preferences", zap.Error(err)) }
			if err := f.Watch(ctx, onChange, onError); err != nil {
				a.log.Warn("watching preferences", zap.Error(err))
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running shell: %w", err)
	}

	if incognito {
		return nil
	}
	// Leaving from the home page starts the next run there too.
	sess.Tab = session.Buffer{}
	if a.browser.Mode == state.ModeWeb {
		sess.Tab = a.engine.Snapshot()
	}
	if err := sessions.Save(sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func runPrint(target string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	// Use terminal width if available, otherwise a fixed default
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	u := a.startURL(target)
	if u == "" {
		return printHome(a.lib, width)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	page, err := a.engine.Load(ctx, u)
	var dl *engine.DownloadRequest
	if errors.As(err, &dl) {
		return fmt.Errorf("%s is a %s file, not a page; open it in the shell to download it", dl.URL, dl.ContentType)
	}
	if err != nil {
		return err
	}

	title := page.Title
	if title == "" {
		title = page.URL
	}
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", min(width, runewidth.StringWidth(title))))
	fmt.Println()

	text := page.Doc.Text(html.RenderOptions{
		CollapseImages: a.browser.ImageMode == state.ImagesSaver,
	})
	fmt.Println(lipgloss.NewStyle().Width(width).Render(text))

	if len(page.Doc.Links) > 0 {
		fmt.Println()
		for i, l := range page.Doc.Links {
			fmt.Printf("[%d] %s\n", i+1, l.URL)
		}
	}
	return nil
}

// printHome lists the quick links.
func printHome(lib *library.Library, width int) error {
	links, err := lib.QuickLinks()
	if err != nil {
		return err
	}
	enabled, err := lib.QuickLinksEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		fmt.Println("Quick links are hidden.")
		return nil
	}
	for _, q := range links {
		fmt.Println(runewidth.Truncate(fmt.Sprintf("%-16s %s", q.Title, q.Link), width, "…"))
	}
	return nil
}
