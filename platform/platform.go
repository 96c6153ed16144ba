// Package platform hands URLs and folders to the desktop: the clipboard for
// sharing, the system opener for the downloads folder, and launcher files
// for page shortcuts.
package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"minibrowse/logging"
)

var (
	// ErrNoClipboard is returned by Share when nothing can receive the URL.
	ErrNoClipboard = errors.New("no clipboard available")
	// ErrNoOpener is returned by OpenDownloads when no file manager is found.
	ErrNoOpener = errors.New("no download manager found")
)

// ShortcutPrefix starts every launcher file name.
const ShortcutPrefix = "web_shortcut_"

// Platform performs desktop integrations.
type Platform struct {
	exe string
	log *zap.Logger

	unsupported func() bool
	copy        func(string) error
	lookPath    func(string) (string, error)
	start       func(name string, args ...string) error
}

// New returns a Platform that launches shortcuts with the running binary.
func New(log *zap.Logger) *Platform {
	exe, err := os.Executable()
	if err != nil {
		exe = "minibrowse"
	}
	return &Platform{
		exe:         exe,
		log:         logging.OrNop(log),
		unsupported: func() bool { return clipboard.Unsupported },
		copy:        clipboard.WriteAll,
		lookPath:    exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Share puts url on the clipboard.
func (p *Platform) Share(url string) error {
	if p.unsupported() {
		return ErrNoClipboard
	}
	if err := p.copy(url); err != nil {
		return fmt.Errorf("%w: %v", ErrNoClipboard, err)
	}
	return nil
}

// OpenDownloads opens dir in the system file manager.
func (p *Platform) OpenDownloads(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{"open"}
	case "windows":
		candidates = []string{"explorer"}
	default:
		candidates = []string{"xdg-open", "gio"}
	}

	for _, name := range candidates {
		if _, err := p.lookPath(name); err != nil {
			continue
		}
		args := []string{dir}
		if name == "gio" {
			args = []string{"open", dir}
		}
		if err := p.start(name, args...); err != nil {
			p.log.Warn("opening downloads", zap.String("opener", name), zap.Error(err))
			continue
		}
		return nil
	}
	return ErrNoOpener
}

// CreateShortcut writes a desktop launcher for link into dir and returns
// its path. An existing launcher for the same link is replaced.
func (p *Platform) CreateShortcut(dir, title, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", errors.New("shortcut needs a link")
	}
	if strings.TrimSpace(title) == "" {
		title = link
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, ShortcutPrefix+Slug(link)+".desktop")
	entry := DesktopEntry(p.exe, title, link)
	if err := os.WriteFile(path, []byte(entry), 0755); err != nil {
		return "", fmt.Errorf("writing shortcut: %w", err)
	}
	return path, nil
}

// DesktopEntry renders a freedesktop launcher that opens link in exe.
func DesktopEntry(exe, title, link string) string {
	var sb strings.Builder
	sb.WriteString("[Desktop Entry]\n")
	sb.WriteString("Type=Application\n")
	sb.WriteString("Name=" + oneLine(title) + "\n")
	sb.WriteString("Comment=" + oneLine(link) + "\n")
	sb.WriteString("Exec=" + execArg(exe) + " " + execArg(link) + "\n")
	sb.WriteString("Icon=web-browser\n")
	sb.WriteString("Terminal=true\n")
	sb.WriteString("Categories=Network;WebBrowser;\n")
	return sb.String()
}

// Slug turns a link into a file-name-safe identifier.
func Slug(link string) string {
	link = strings.ToLower(link)
	for _, p := range []string{"https://", "http://", "file://"} {
		link = strings.TrimPrefix(link, p)
	}

	var sb strings.Builder
	lastSep := true
	for _, r := range link {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep {
			sb.WriteByte('_')
			lastSep = true
		}
	}

	s := strings.TrimSuffix(sb.String(), "_")
	if len(s) > 64 {
		s = strings.TrimSuffix(s[:64], "_")
	}
	if s == "" {
		s = "page"
	}
	return s
}

// execArg quotes an Exec= argument for a .desktop file.
func execArg(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	s = strings.ReplaceAll(r.Replace(oneLine(s)), "%", "%%")
	return `"` + s + `"`
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
