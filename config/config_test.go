package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Search.Engine != DefaultSearchEngine {
		t.Errorf("engine = %q, want default", cfg.Search.Engine)
	}
	if !cfg.Session.Restore {
		t.Error("restore should default to true")
	}
	if cfg.Fetcher.MobileUserAgent != MobileUserAgent {
		t.Error("mobile user agent should default")
	}
}

func TestLoadFileMergesUserValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[fetcher]
timeoutSeconds = 5
renderer = "chrome"

[session]
restore = false

[keybindings]
tools = "f2"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Fetcher.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d, want 5", cfg.Fetcher.TimeoutSeconds)
	}
	if cfg.Fetcher.Renderer != "chrome" {
		t.Errorf("renderer = %q, want chrome", cfg.Fetcher.Renderer)
	}
	if cfg.Session.Restore {
		t.Error("explicit restore = false should win")
	}
	if cfg.Keybindings.Tools != "f2" {
		t.Errorf("tools key = %q, want f2", cfg.Keybindings.Tools)
	}
	if cfg.Keybindings.Quit != "ctrl+q" {
		t.Errorf("unset keybinding should keep default, got %q", cfg.Keybindings.Quit)
	}
}

func TestLoadFileBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[fetcher\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MINIBROWSE_STORAGE_BACKEND", "sqlite")
	t.Setenv("MINIBROWSE_RESTORE_SESSION", "false")
	t.Setenv("MINIBROWSE_TIMEOUT_SECONDS", "9")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Session.Restore {
		t.Error("env should disable restore")
	}
	if cfg.Fetcher.TimeoutSeconds != 9 {
		t.Errorf("timeout = %d, want 9", cfg.Fetcher.TimeoutSeconds)
	}
}

func TestDefaultTOMLParses(t *testing.T) {
	var cfg Config
	if _, err := toml.Decode(DefaultTOML(), &cfg); err != nil {
		t.Fatalf("DefaultTOML does not parse: %v", err)
	}
	if cfg.Search.Engine != DefaultSearchEngine {
		t.Errorf("engine = %q", cfg.Search.Engine)
	}
	if cfg.Keybindings.Home != Default().Keybindings.Home {
		t.Errorf("home key = %q", cfg.Keybindings.Home)
	}
}
