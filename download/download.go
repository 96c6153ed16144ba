// Package download saves files the browser was asked to download into the
// downloads directory.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"minibrowse/logging"
)

// guessBase names files that carry no usable name of their own.
const guessBase = "downloadfile"

var dispositionRe = regexp.MustCompile(`(?i)filename="?([^";]+)"?;?`)

// Result describes a finished download.
type Result struct {
	ID          string
	URL         string
	Path        string
	Name        string
	Size        int64
	ContentType string
	Took        time.Duration
}

// Options configures a Manager.
type Options struct {
	Dir          string
	UserAgent    string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Manager downloads files.
type Manager struct {
	dir    string
	client *retryablehttp.Client
	log    *zap.Logger

	mu sync.RWMutex
	ua string
}

// New creates a manager writing into opts.Dir.
func New(opts Options, log *zap.Logger) *Manager {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.Logger = nil // Disable logging

	if opts.RetryMax > 0 {
		client.RetryMax = opts.RetryMax
	}
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}

	return &Manager{
		dir:    opts.Dir,
		ua:     opts.UserAgent,
		client: client,
		log:    logging.OrNop(log),
	}
}

// Dir returns the destination directory.
func (m *Manager) Dir() string {
	return m.dir
}

// SetUserAgent changes the user agent sent with later downloads.
func (m *Manager) SetUserAgent(ua string) {
	m.mu.Lock()
	m.ua = ua
	m.mu.Unlock()
}

// ProbeFilename asks the server for the file's name with a HEAD request,
// falling back to the last path segment when it has an extension. It
// returns "" when neither gives a name.
func (m *Manager) ProbeFilename(ctx context.Context, rawURL string) string {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err == nil {
		m.setHeaders(req)
		if resp, err := m.client.Do(req); err == nil {
			resp.Body.Close()
			if name, ok := FilenameFromDisposition(resp.Header.Get("Content-Disposition")); ok {
				return name
			}
		} else {
			m.log.Debug("probing filename", zap.String("url", rawURL), zap.Error(err))
		}
	}
	if name, ok := FilenameFromURL(rawURL); ok {
		return name
	}
	return ""
}

// FilenameFromDisposition extracts the filename from a Content-Disposition
// header value.
func FilenameFromDisposition(h string) (string, bool) {
	m := dispositionRe.FindStringSubmatch(h)
	if m == nil {
		return "", false
	}
	return cleanName(m[1])
}

// FilenameFromURL returns the last path segment when it contains a dot.
func FilenameFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	seg := path.Base(u.Path)
	if !strings.Contains(seg, ".") {
		return "", false
	}
	return cleanName(seg)
}

// cleanName keeps only the final element of a name and rejects names that
// would escape the downloads directory.
func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", false
	}
	return name, true
}

// Start downloads rawURL into the downloads directory.
func (m *Manager) Start(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()
	id := uuid.New().String()

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	name := m.ProbeFilename(ctx, rawURL)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	m.setHeaders(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("downloading %s: %s", rawURL, resp.Status)
	}
	if name == "" {
		if n, ok := FilenameFromDisposition(resp.Header.Get("Content-Disposition")); ok {
			name = n
		}
	}

	part := filepath.Join(m.dir, "."+id+".part")
	size, err := writeFile(part, resp.Body)
	if err != nil {
		os.Remove(part)
		return nil, err
	}

	mt, err := mimetype.DetectFile(part)
	if err != nil {
		os.Remove(part)
		return nil, fmt.Errorf("detecting type: %w", err)
	}
	if name == "" {
		name = guessBase + mt.Extension()
	}

	dest := uniquePath(m.dir, name)
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return nil, fmt.Errorf("saving %s: %w", dest, err)
	}

	res := &Result{
		ID:          id,
		URL:         rawURL,
		Path:        dest,
		Name:        filepath.Base(dest),
		Size:        size,
		ContentType: mt.String(),
		Took:        time.Since(start),
	}
	m.log.Info("download finished",
		zap.String("id", id),
		zap.String("url", rawURL),
		zap.String("path", dest),
		zap.Int64("bytes", size))
	return res, nil
}

func (m *Manager) setHeaders(req *retryablehttp.Request) {
	m.mu.RLock()
	ua := m.ua
	m.mu.RUnlock()
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("writing %s: %w", path, err)
	}
	return n, f.Close()
}

// uniquePath returns dir/name, or dir/"base (n).ext" for the first n that
// does not exist yet.
func uniquePath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		p = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}
