// Package engine is the page widget behind the browser shell: it loads
// pages, keeps the back/forward stacks, reports progress and records
// finished pages in history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"minibrowse/fetcher"
	"minibrowse/html"
	"minibrowse/library"
	"minibrowse/logging"
	"minibrowse/session"
	"minibrowse/state"
)

// Renderers.
const (
	RendererHTTP   = "http"
	RendererChrome = "chrome"
)

var (
	// ErrBlockedScheme is returned for URLs the widget refuses to navigate to.
	ErrBlockedScheme = errors.New("blocked scheme")
	// ErrNoPage is returned by GoBack/GoForward/Reload with nothing to go to.
	ErrNoPage = errors.New("no page")
)

// DownloadRequest is returned by a load that reached a file rather than a
// page. The caller decides whether to download it.
type DownloadRequest struct {
	URL         string
	ContentType string
}

func (d *DownloadRequest) Error() string {
	return fmt.Sprintf("%s is a download (%s)", d.URL, d.ContentType)
}

// WebViewState is a snapshot published after navigation events.
type WebViewState struct {
	Progress     int
	CanGoBack    bool
	CanGoForward bool
	IsLoading    bool
}

// Page is a loaded page.
type Page struct {
	URL         string
	Title       string
	ContentType string
	StatusCode  int
	UsedBrowser bool
	ScrollY     int
	Doc         *html.Document
}

// Fetcher loads raw documents.
type Fetcher interface {
	Simple(ctx context.Context, r fetcher.Request) (*fetcher.FetchResult, error)
	Browser(ctx context.Context, r fetcher.Request) (*fetcher.FetchResult, error)
	File(path string) (*fetcher.FetchResult, error)
}

// HistoryRecorder stores finished pages.
type HistoryRecorder interface {
	History() ([]library.HistoryItem, error)
	AddHistory(item library.HistoryItem) error
}

// Options configures an Engine.
type Options struct {
	UserAgent string
	ImageMode state.ImageMode
	Renderer  string
	Incognito bool
	OnState   func(WebViewState)
	Now       func() time.Time
}

// Engine loads pages and keeps navigation history.
type Engine struct {
	fetch   Fetcher
	history HistoryRecorder
	log     *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	ua        string
	imageMode state.ImageMode
	renderer  string
	incognito bool
	onState   func(WebViewState)

	back    []session.PageState
	current *Page
	forward []session.PageState
	state   WebViewState
}

// New creates an engine. history may be nil.
func New(f Fetcher, history HistoryRecorder, opts Options, log *zap.Logger) *Engine {
	e := &Engine{
		fetch:     f,
		history:   history,
		log:       logging.OrNop(log),
		now:       opts.Now,
		ua:        opts.UserAgent,
		imageMode: opts.ImageMode,
		renderer:  opts.Renderer,
		incognito: opts.Incognito,
		onState:   opts.OnState,
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// SetUserAgent changes the user agent used by later loads.
func (e *Engine) SetUserAgent(ua string) {
	e.mu.Lock()
	e.ua = ua
	e.mu.Unlock()
}

// SetImageMode changes the image mode used by later loads.
func (e *Engine) SetImageMode(m state.ImageMode) {
	e.mu.Lock()
	e.imageMode = m
	e.mu.Unlock()
}

// SetOnState replaces the progress callback.
func (e *Engine) SetOnState(fn func(WebViewState)) {
	e.mu.Lock()
	e.onState = fn
	e.mu.Unlock()
}

// State returns the latest navigation snapshot.
func (e *Engine) State() WebViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the page on screen, or nil.
func (e *Engine) Current() *Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// CanGoBack reports whether GoBack has somewhere to go.
func (e *Engine) CanGoBack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.back) > 0
}

// CanGoForward reports whether GoForward has somewhere to go.
func (e *Engine) CanGoForward() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.forward) > 0
}

// SetScroll records the scroll offset of the current page.
func (e *Engine) SetScroll(y int) {
	e.mu.Lock()
	if e.current != nil {
		e.current.ScrollY = y
	}
	e.mu.Unlock()
}

type navKind int

const (
	navNew navKind = iota
	navBack
	navForward
	navReload
)

// Load navigates to rawURL.
func (e *Engine) Load(ctx context.Context, rawURL string) (*Page, error) {
	return e.navigate(ctx, session.PageState{URL: rawURL}, navNew)
}

// Reload fetches the current page again.
func (e *Engine) Reload(ctx context.Context) (*Page, error) {
	e.mu.Lock()
	cur := e.current
	e.mu.Unlock()
	if cur == nil {
		return nil, ErrNoPage
	}
	return e.navigate(ctx, session.PageState{URL: cur.URL, ScrollY: cur.ScrollY}, navReload)
}

// GoBack loads the previous page.
func (e *Engine) GoBack(ctx context.Context) (*Page, error) {
	e.mu.Lock()
	if len(e.back) == 0 {
		e.mu.Unlock()
		return nil, ErrNoPage
	}
	target := e.back[len(e.back)-1]
	e.mu.Unlock()
	return e.navigate(ctx, target, navBack)
}

// GoForward loads the next page.
func (e *Engine) GoForward(ctx context.Context) (*Page, error) {
	e.mu.Lock()
	if len(e.forward) == 0 {
		e.mu.Unlock()
		return nil, ErrNoPage
	}
	target := e.forward[len(e.forward)-1]
	e.mu.Unlock()
	return e.navigate(ctx, target, navForward)
}

func (e *Engine) navigate(ctx context.Context, target session.PageState, kind navKind) (*Page, error) {
	if err := CheckScheme(target.URL); err != nil {
		return nil, err
	}

	e.publish(10, true)

	page, err := e.fetchPage(ctx, target.URL)
	if err != nil {
		e.publish(100, false)
		return nil, err
	}
	page.ScrollY = target.ScrollY

	e.mu.Lock()
	if err := e.commit(ctx, target, kind, page); err != nil {
		e.mu.Unlock()
		e.publish(100, false)
		return nil, err
	}
	e.mu.Unlock()

	e.record(page)
	e.publish(100, false)
	return page, nil
}

// commit installs page as the current page and moves the stacks. A load
// whose context was cancelled, or a back/forward step whose target is no
// longer on top of its stack, changes nothing. Must be called with mu held.
func (e *Engine) commit(ctx context.Context, target session.PageState, kind navKind, page *Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch kind {
	case navNew:
		if e.current != nil {
			e.back = append(e.back, e.currentState())
		}
		e.forward = nil
	case navBack:
		if len(e.back) == 0 || e.back[len(e.back)-1] != target {
			return ErrNoPage
		}
		e.back = e.back[:len(e.back)-1]
		if e.current != nil {
			e.forward = append(e.forward, e.currentState())
		}
	case navForward:
		if len(e.forward) == 0 || e.forward[len(e.forward)-1] != target {
			return ErrNoPage
		}
		e.forward = e.forward[:len(e.forward)-1]
		if e.current != nil {
			e.back = append(e.back, e.currentState())
		}
	}
	e.current = page
	return nil
}

// currentState must be called with mu held.
func (e *Engine) currentState() session.PageState {
	return session.PageState{URL: e.current.URL, ScrollY: e.current.ScrollY}
}

func (e *Engine) fetchPage(ctx context.Context, rawURL string) (*Page, error) {
	e.mu.Lock()
	req := fetcher.Request{
		URL:         rawURL,
		UserAgent:   e.ua,
		BlockImages: e.imageMode == state.ImagesNone,
		Incognito:   e.incognito,
	}
	renderer := e.renderer
	e.mu.Unlock()

	var res *fetcher.FetchResult
	var err error
	if isLocal(rawURL) {
		res, err = e.fetch.File(rawURL)
	} else {
		res, err = e.fetch.Simple(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	e.publish(60, true)

	if !res.IsHTML() {
		return nil, &DownloadRequest{URL: res.FinalURL, ContentType: res.ContentType}
	}

	if renderer == RendererChrome && res.ContentType != "text/plain" && !isLocal(rawURL) {
		rendered, berr := e.fetch.Browser(ctx, req)
		if berr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Warn("browser render failed, using plain fetch", zap.String("url", rawURL), zap.Error(berr))
		} else {
			res = rendered
		}
	}

	var doc *html.Document
	if res.ContentType == "text/plain" {
		doc = html.FromText(res.HTML, res.FinalURL)
	} else {
		doc, err = html.ParseString(res.HTML, html.Options{
			BaseURL:     res.FinalURL,
			StripImages: req.BlockImages,
		})
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", res.FinalURL, err)
		}
	}
	e.publish(90, true)

	return &Page{
		URL:         res.FinalURL,
		Title:       doc.Title,
		ContentType: res.ContentType,
		StatusCode:  res.StatusCode,
		UsedBrowser: res.UsedBrowser,
		Doc:         doc,
	}, nil
}

// record adds a finished page to history unless it repeats the last entry.
func (e *Engine) record(p *Page) {
	if e.incognito || e.history == nil {
		return
	}

	items, err := e.history.History()
	if err != nil {
		e.log.Warn("reading history", zap.Error(err))
		return
	}
	if len(items) > 0 && items[len(items)-1].URL == p.URL {
		return
	}

	item := library.HistoryItem{
		ID:    e.now().UnixMilli(),
		URL:   p.URL,
		Title: p.Title,
	}
	if item.Title == "" {
		item.Title = "Untitled"
	}
	if item.URL == "" {
		item.URL = "unknown"
	}
	if err := e.history.AddHistory(item); err != nil {
		e.log.Warn("recording history", zap.String("url", p.URL), zap.Error(err))
	}
}

func (e *Engine) publish(progress int, loading bool) {
	e.mu.Lock()
	e.state = WebViewState{
		Progress:     progress,
		IsLoading:    loading,
		CanGoBack:    len(e.back) > 0,
		CanGoForward: len(e.forward) > 0,
	}
	st, fn := e.state, e.onState
	e.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// Snapshot exports the navigation stacks.
func (e *Engine) Snapshot() session.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := session.Buffer{
		History: append([]session.PageState(nil), e.back...),
		Forward: append([]session.PageState(nil), e.forward...),
	}
	if e.current != nil {
		b.Current = e.currentState()
	}
	return b
}

// Restore loads b.Current and installs b's back and forward stacks.
func (e *Engine) Restore(ctx context.Context, b session.Buffer) (*Page, error) {
	if b.Empty() {
		return nil, ErrNoPage
	}
	page, err := e.navigate(ctx, b.Current, navReload)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.back = append([]session.PageState(nil), b.History...)
	e.forward = append([]session.PageState(nil), b.Forward...)
	e.mu.Unlock()

	e.publish(100, false)
	return page, nil
}

// CheckScheme rejects anything but http, https, file URLs and absolute paths.
func CheckScheme(rawURL string) error {
	if strings.HasPrefix(rawURL, "/") {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "file":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBlockedScheme, u.Scheme)
}

func isLocal(rawURL string) bool {
	return strings.HasPrefix(rawURL, "/") || strings.HasPrefix(strings.ToLower(rawURL), "file:")
}
