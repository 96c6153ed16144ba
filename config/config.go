// Package config provides configuration loading for minibrowse using TOML,
// with MINIBROWSE_* environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// User agent strings sent in mobile and desktop access modes.
const (
	DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"
	MobileUserAgent  = "Mozilla/5.0 (Linux; Android 15; 24094RAD4C Build/AP3A.240617.008) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.6723.86 Mobile Safari/537.36"
)

// DefaultSearchEngine is the home search template. Every %s is replaced by
// the escaped query.
const DefaultSearchEngine = "https://cn.bing.com/search?q=%s&form=QBLH&sp=-1&lq=0&pq=%s&sc=11-4&qs=n&sk="

// Appearance settings
type Appearance struct {
	Theme string `toml:"theme"` // theme family: "default", "gruvbox", "nord"
}

// Search settings
type Search struct {
	Engine string `toml:"engine"`
}

// Fetcher settings
type Fetcher struct {
	MobileUserAgent  string `toml:"mobileUserAgent"`
	DesktopUserAgent string `toml:"desktopUserAgent"`
	TimeoutSeconds   int    `toml:"timeoutSeconds"`
	ChromePath       string `toml:"chromePath"`
	Renderer         string `toml:"renderer"` // "http" or "chrome"
}

// Storage settings
type Storage struct {
	Backend string `toml:"backend"` // "json" or "sqlite"
	Dir     string `toml:"dir"`
}

// Downloads settings
type Downloads struct {
	Dir string `toml:"dir"`
}

// Shortcuts settings
type Shortcuts struct {
	Dir string `toml:"dir"` // where launcher files are written
}

// Session settings
type Session struct {
	Restore bool `toml:"restore"`
}

// Logging settings
type Logging struct {
	Level       string `toml:"level"`
	File        string `toml:"file"`
	Development bool   `toml:"development"`
}

// Keybindings for the interactive shell.
type Keybindings struct {
	Quit      string `toml:"quit"`
	Tools     string `toml:"tools"`
	Address   string `toml:"address"`
	Back      string `toml:"back"`
	Forward   string `toml:"forward"`
	Reload    string `toml:"reload"`
	Home      string `toml:"home"`
	ToggleBar string `toml:"toggleBar"`
	Bookmark  string `toml:"bookmark"`
}

// Config is the main configuration struct
type Config struct {
	Appearance  Appearance  `toml:"appearance"`
	Search      Search      `toml:"search"`
	Fetcher     Fetcher     `toml:"fetcher"`
	Storage     Storage     `toml:"storage"`
	Downloads   Downloads   `toml:"downloads"`
	Shortcuts   Shortcuts   `toml:"shortcuts"`
	Session     Session     `toml:"session"`
	Logging     Logging     `toml:"logging"`
	Keybindings Keybindings `toml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	dataDir, _ := configDir()
	return &Config{
		Appearance: Appearance{
			Theme: "default",
		},
		Search: Search{
			Engine: DefaultSearchEngine,
		},
		Fetcher: Fetcher{
			MobileUserAgent:  MobileUserAgent,
			DesktopUserAgent: DesktopUserAgent,
			TimeoutSeconds:   30,
			Renderer:         "http",
		},
		Storage: Storage{
			Backend: "json",
			Dir:     dataDir,
		},
		Downloads: Downloads{
			Dir: defaultDownloadDir(),
		},
		Shortcuts: Shortcuts{
			Dir: defaultShortcutDir(),
		},
		Session: Session{
			Restore: true,
		},
		Logging: Logging{
			Level: "info",
		},
		Keybindings: Keybindings{
			Quit:      "ctrl+q",
			Tools:     "ctrl+t",
			Address:   "ctrl+l",
			Back:      "alt+left",
			Forward:   "alt+right",
			Reload:    "ctrl+r",
			Home:      "alt+h",
			ToggleBar: "ctrl+b",
			Bookmark:  "ctrl+d",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "minibrowse"), nil
}

// CacheDir returns the directory for transient files (copied intents).
func CacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "minibrowse")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "Downloads")
	}
	return filepath.Join(home, "Downloads")
}

func defaultShortcutDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "applications")
	}
	return filepath.Join(home, ".local", "share", "applications")
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration: defaults, then the user's TOML file if any,
// then environment overrides.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return applyEnv(Default())
	}
	return LoadFile(configPath)
}

// LoadFile is Load with an explicit config file path. A missing file is not
// an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		userCfg, md, err := loadFromTOML(path)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		cfg = merge(cfg, userCfg, md)
	}

	return applyEnv(cfg)
}

// loadFromTOML loads a TOML config file and returns the config along with
// the metadata recording which keys were present.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults.
// Only non-zero values from user config override defaults; booleans
// override when the key is present in the file.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults

	mergeString(&result.Appearance.Theme, user.Appearance.Theme)
	mergeString(&result.Search.Engine, user.Search.Engine)

	mergeString(&result.Fetcher.MobileUserAgent, user.Fetcher.MobileUserAgent)
	mergeString(&result.Fetcher.DesktopUserAgent, user.Fetcher.DesktopUserAgent)
	if user.Fetcher.TimeoutSeconds != 0 {
		result.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}
	mergeString(&result.Fetcher.ChromePath, user.Fetcher.ChromePath)
	mergeString(&result.Fetcher.Renderer, user.Fetcher.Renderer)

	mergeString(&result.Storage.Backend, user.Storage.Backend)
	mergeString(&result.Storage.Dir, user.Storage.Dir)
	mergeString(&result.Downloads.Dir, user.Downloads.Dir)
	mergeString(&result.Shortcuts.Dir, user.Shortcuts.Dir)

	if md.IsDefined("session", "restore") {
		result.Session.Restore = user.Session.Restore
	}

	mergeString(&result.Logging.Level, user.Logging.Level)
	mergeString(&result.Logging.File, user.Logging.File)
	if md.IsDefined("logging", "development") {
		result.Logging.Development = user.Logging.Development
	}

	mergeString(&result.Keybindings.Quit, user.Keybindings.Quit)
	mergeString(&result.Keybindings.Tools, user.Keybindings.Tools)
	mergeString(&result.Keybindings.Address, user.Keybindings.Address)
	mergeString(&result.Keybindings.Back, user.Keybindings.Back)
	mergeString(&result.Keybindings.Forward, user.Keybindings.Forward)
	mergeString(&result.Keybindings.Reload, user.Keybindings.Reload)
	mergeString(&result.Keybindings.Home, user.Keybindings.Home)
	mergeString(&result.Keybindings.ToggleBar, user.Keybindings.ToggleBar)
	mergeString(&result.Keybindings.Bookmark, user.Keybindings.Bookmark)

	return &result
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
