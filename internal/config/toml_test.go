package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Analyze.Order != nil || cfg.UI.HistoryLimit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[analyze]
order = "alpha"
letter-gated = true
bar-width = 12

[ui]
history-limit = 7

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Analyze.Order == nil || *cfg.Analyze.Order != "alpha" {
		t.Fatalf("unexpected order: %v", cfg.Analyze.Order)
	}
	if cfg.Analyze.LetterGated == nil || !*cfg.Analyze.LetterGated {
		t.Fatalf("expected letter-gated true")
	}
	if cfg.Analyze.BarWidth == nil || *cfg.Analyze.BarWidth != 12 {
		t.Fatalf("unexpected bar width: %v", cfg.Analyze.BarWidth)
	}
	if cfg.UI.HistoryLimit == nil || *cfg.UI.HistoryLimit != 7 {
		t.Fatalf("unexpected history limit: %v", cfg.UI.HistoryLimit)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analyze]\nlang = \"fr\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultConfigPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/xdg", "subcrack", "config.toml") {
		t.Fatalf("unexpected path %q", got)
	}
}
