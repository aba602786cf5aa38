package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "stale_threshold: 30m\nchannel: reports\ndata_dir: /srv/jobs\nwatch: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.StaleThreshold != 30*time.Minute {
		t.Errorf("StaleThreshold = %v, want 30m", cfg.StaleThreshold)
	}
	if cfg.Channel != "reports" {
		t.Errorf("Channel = %q, want reports", cfg.Channel)
	}
	if cfg.DataDir != "/srv/jobs" {
		t.Errorf("DataDir = %q, want /srv/jobs", cfg.DataDir)
	}
	if cfg.Watch {
		t.Error("Watch should be overridden to false")
	}
	// Untouched fields keep their defaults.
	if cfg.Debounce != Default().Debounce {
		t.Errorf("Debounce = %v, want default %v", cfg.Debounce, Default().Debounce)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("stale_threshold: [not a duration\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidateRejectsNegativeThreshold(t *testing.T) {
	cfg := Default()
	cfg.StaleThreshold = -time.Minute
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative threshold")
	}
}
