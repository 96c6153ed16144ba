package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every override, e.g. MINIBROWSE_RENDERER=chrome.
const envPrefix = "MINIBROWSE"

// envOverrides mirrors the settings that can come from the environment.
// Unset variables leave the zero value (or nil) and do not override.
type envOverrides struct {
	Theme            string `envconfig:"THEME"`
	SearchEngine     string `envconfig:"SEARCH_ENGINE"`
	MobileUserAgent  string `envconfig:"MOBILE_USER_AGENT"`
	DesktopUserAgent string `envconfig:"DESKTOP_USER_AGENT"`
	TimeoutSeconds   int    `envconfig:"TIMEOUT_SECONDS"`
	ChromePath       string `envconfig:"CHROME_PATH"`
	Renderer         string `envconfig:"RENDERER"`
	StorageBackend   string `envconfig:"STORAGE_BACKEND"`
	DataDir          string `envconfig:"DATA_DIR"`
	DownloadDir      string `envconfig:"DOWNLOAD_DIR"`
	ShortcutDir      string `envconfig:"SHORTCUT_DIR"`
	RestoreSession   *bool  `envconfig:"RESTORE_SESSION"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
	LogFile          string `envconfig:"LOG_FILE"`
	LogDevelopment   *bool  `envconfig:"LOG_DEV"`
}

func applyEnv(cfg *Config) (*Config, error) {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	mergeString(&cfg.Appearance.Theme, env.Theme)
	mergeString(&cfg.Search.Engine, env.SearchEngine)
	mergeString(&cfg.Fetcher.MobileUserAgent, env.MobileUserAgent)
	mergeString(&cfg.Fetcher.DesktopUserAgent, env.DesktopUserAgent)
	if env.TimeoutSeconds > 0 {
		cfg.Fetcher.TimeoutSeconds = env.TimeoutSeconds
	}
	mergeString(&cfg.Fetcher.ChromePath, env.ChromePath)
	mergeString(&cfg.Fetcher.Renderer, env.Renderer)
	mergeString(&cfg.Storage.Backend, env.StorageBackend)
	mergeString(&cfg.Storage.Dir, env.DataDir)
	mergeString(&cfg.Downloads.Dir, env.DownloadDir)
	mergeString(&cfg.Shortcuts.Dir, env.ShortcutDir)
	if env.RestoreSession != nil {
		cfg.Session.Restore = *env.RestoreSession
	}
	mergeString(&cfg.Logging.Level, env.LogLevel)
	mergeString(&cfg.Logging.File, env.LogFile)
	if env.LogDevelopment != nil {
		cfg.Logging.Development = *env.LogDevelopment
	}

	return cfg, nil
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# minibrowse configuration
# Save to ~/.config/minibrowse/config.toml and customize
# Only include settings you want to change from defaults.
# Any setting below can also be overridden with MINIBROWSE_* variables.

[appearance]
theme = "default"             # "default", "gruvbox" or "nord"

[search]
# Every %s is replaced by the escaped query
engine = "` + DefaultSearchEngine + `"

[fetcher]
mobileUserAgent = "` + MobileUserAgent + `"
desktopUserAgent = "` + DesktopUserAgent + `"
timeoutSeconds = 30
chromePath = ""               # Chrome/Chromium binary (empty = auto-detect)
renderer = "http"             # "http" or "chrome" (runs page scripts)

[storage]
backend = "json"              # "json" or "sqlite"
dir = ""                      # empty = ~/.config/minibrowse

[downloads]
dir = ""                      # empty = ~/Downloads

[shortcuts]
dir = ""                      # empty = ~/.local/share/applications

[session]
restore = true                # Reopen the last page on startup

[logging]
level = "info"
file = ""                     # empty = <user cache dir>/minibrowse/minibrowse.log
development = false

[keybindings]
quit = "ctrl+q"
tools = "ctrl+t"              # Open the tool sheet
address = "ctrl+l"            # Focus the address bar
back = "alt+left"
forward = "alt+right"
reload = "ctrl+r"
home = "alt+h"
toggleBar = "ctrl+b"
bookmark = "ctrl+d"
`
}
