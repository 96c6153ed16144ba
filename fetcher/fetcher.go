// Package fetcher loads pages over HTTP, from local files, or through a
// headless Chrome when page scripts need to run.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"minibrowse/logging"
)

// maxPageBytes caps how much of a page body is read.
const maxPageBytes = 16 << 20

// FetchResult contains the fetched HTML and metadata.
type FetchResult struct {
	HTML        string
	FinalURL    string // URL after following redirects
	ContentType string // media type without parameters
	StatusCode  int
	UsedBrowser bool
	FetchTime   time.Duration
}

// IsHTML reports whether the result is a page rather than a file to save.
func (r *FetchResult) IsHTML() bool {
	return IsPageType(r.ContentType)
}

// IsPageType reports whether a media type is rendered rather than downloaded.
func IsPageType(ct string) bool {
	switch ct {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}

// Options configures the fetcher behavior.
type Options struct {
	TimeoutSeconds int
	ChromePath     string // Path to Chrome binary (empty = auto-detect)
	ProfileDir     string // Persistent Chrome profile (empty = throwaway)
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{TimeoutSeconds: 30}
}

// Request describes one page load.
type Request struct {
	URL         string
	UserAgent   string
	BlockImages bool // only honoured by the browser renderer
	Incognito   bool // browser renderer skips the persistent profile
}

// Fetcher performs page loads.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    *zap.Logger
}

// New creates a fetcher.
func New(opts Options, log *zap.Logger) *Fetcher {
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = DefaultOptions().TimeoutSeconds
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: time.Duration(opts.TimeoutSeconds) * time.Second,
		},
		log: logging.OrNop(log),
	}
}

// Timeout returns the configured timeout duration.
func (f *Fetcher) Timeout() time.Duration {
	return time.Duration(f.opts.TimeoutSeconds) * time.Second
}

// Simple fetches a URL using standard HTTP (fast, low bandwidth). Bodies of
// non-page responses are not read; the caller decides whether to download.
func (f *Fetcher) Simple(ctx context.Context, r Request) (*FetchResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	result := &FetchResult{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
	}

	ct := mediaType(resp.Header.Get("Content-Type"))
	body := io.LimitReader(resp.Body, maxPageBytes)
	if ct == "" {
		// Sniff from the first bytes and keep them for the page body.
		head := make([]byte, 3072)
		n, _ := io.ReadFull(body, head)
		head = head[:n]
		ct = mediaType(mimetype.Detect(head).String())
		body = io.MultiReader(strings.NewReader(string(head)), body)
	}
	result.ContentType = ct

	if result.IsHTML() {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		result.HTML = string(data)
	}

	result.FetchTime = time.Since(start)
	f.log.Debug("fetched",
		zap.String("url", result.FinalURL),
		zap.Int("status", result.StatusCode),
		zap.String("type", ct),
		zap.Duration("took", result.FetchTime))
	return result, nil
}

// File loads a local file. path may be a file:// URL or a plain path.
func (f *Fetcher) File(path string) (*FetchResult, error) {
	start := time.Now()

	if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	mt, err := mimetype.DetectFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}

	result := &FetchResult{
		FinalURL:    (&url.URL{Scheme: "file", Path: abs}).String(),
		ContentType: mediaType(mt.String()),
		StatusCode:  http.StatusOK,
	}
	if result.IsHTML() {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", abs, err)
		}
		result.HTML = string(data)
	}
	result.FetchTime = time.Since(start)
	return result, nil
}

// ErrNoBrowser is returned when Chrome cannot be started.
var ErrNoBrowser = errors.New("headless browser unavailable")

// Browser fetches a URL using headless Chrome so page scripts run.
func (f *Fetcher) Browser(ctx context.Context, r Request) (*FetchResult, error) {
	start := time.Now()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", "new"),
		chromedp.WindowSize(412, 915),
	}
	if r.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(r.UserAgent))
	}
	if r.BlockImages {
		allocOpts = append(allocOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if f.opts.ProfileDir != "" && !r.Incognito {
		allocOpts = append(allocOpts, chromedp.UserDataDir(f.opts.ProfileDir))
	}
	if f.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	// Browser fetches get extra time for scripts.
	tctx, cancel := context.WithTimeout(allocCtx, f.Timeout()+15*time.Second)
	defer cancel()

	bctx, cancel := chromedp.NewContext(tctx)
	defer cancel()

	var html, finalURL string
	err := chromedp.Run(bctx,
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept-Language": "en-US,en;q=0.9",
		})),
		chromedp.Navigate(r.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("browser fetch: %w", err)
		}
		return nil, fmt.Errorf("browser fetch: %w: %v", ErrNoBrowser, err)
	}

	return &FetchResult{
		HTML:        html,
		FinalURL:    finalURL,
		ContentType: "text/html",
		StatusCode:  http.StatusOK,
		UsedBrowser: true,
		FetchTime:   time.Since(start),
	}, nil
}

// mediaType strips parameters and lowercases a Content-Type value.
func mediaType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
