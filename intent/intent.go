// Package intent resolves what the browser was asked to open at startup or
// by another program into a URL the page loader understands.
package intent

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"minibrowse/logging"
)

// ActionView is the only action the browser handles.
const ActionView = "view"

// Intent is a request to open something.
type Intent struct {
	Action string
	Data   string // URI
	Type   string // MIME type, if known
}

// Resolver turns intents into loadable URLs.
type Resolver struct {
	cacheDir string
	open     func(uri string) (io.ReadCloser, error)
	log      *zap.Logger
}

// NewResolver creates a resolver that copies HTML content into cacheDir.
func NewResolver(cacheDir string, log *zap.Logger) *Resolver {
	return &Resolver{
		cacheDir: cacheDir,
		open:     openURI,
		log:      logging.OrNop(log),
	}
}

// Resolve returns the URL to load for in, or false when the intent is not
// something the browser opens.
func (r *Resolver) Resolve(in *Intent) (string, bool) {
	if in == nil || in.Action != ActionView {
		return "", false
	}

	u, err := url.Parse(in.Data)
	if err != nil {
		r.log.Debug("unparseable intent data", zap.String("data", in.Data), zap.Error(err))
		u = &url.URL{}
	}
	scheme := strings.ToLower(u.Scheme)

	switch {
	case scheme == "http" || scheme == "https":
		return in.Data, true
	case strings.EqualFold(in.Type, "text/html"):
		path, err := r.copyHTML(in.Data)
		if err != nil {
			r.log.Warn("copying html intent", zap.String("data", in.Data), zap.Error(err))
			return "", false
		}
		return "file://" + path, true
	case scheme == "file":
		return u.Path, true
	default:
		return "", false
	}
}

// copyHTML copies the content behind uri into <cache>/temp.html.
func (r *Resolver) copyHTML(uri string) (string, error) {
	src, err := r.open(uri)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(r.cacheDir, "temp.html"))
	if err != nil {
		return "", err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copying to %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// openURI opens file URIs and bare paths.
func openURI(uri string) (io.ReadCloser, error) {
	path := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		path = u.Path
	} else if err == nil && u.Scheme != "" {
		return nil, fmt.Errorf("cannot read %s content", u.Scheme)
	}
	return os.Open(path)
}

// FromArg builds a view intent from a command-line argument. Local files
// become file URIs with their sniffed MIME type; anything else is passed
// through as data.
func FromArg(arg string) *Intent {
	if arg == "" {
		return nil
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			abs = arg
		}
		in := &Intent{
			Action: ActionView,
			Data:   (&url.URL{Scheme: "file", Path: abs}).String(),
		}
		if mt, err := mimetype.DetectFile(abs); err == nil {
			in.Type = baseType(mt.String())
		}
		return in
	}

	return &Intent{Action: ActionView, Data: arg}
}

// baseType strips MIME parameters ("text/html; charset=utf-8" → "text/html").
func baseType(mt string) string {
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
