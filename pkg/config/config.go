// Package config loads viewer settings from the snapshot directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"jobtree/pkg/loader"
)

// File is the config file name inside the snapshot directory.
const File = "config.yaml"

// Config holds viewer settings. All fields have working defaults; the
// config file only needs the ones being overridden.
type Config struct {
	// StaleThreshold is how long a job may sit pending before it is
	// flagged as stuck.
	StaleThreshold time.Duration `yaml:"stale_threshold"`

	// RunningThreshold is how long a job may run before its runner is
	// presumed dead.
	RunningThreshold time.Duration `yaml:"running_threshold"`

	// Debounce is the quiet window for file-watch reloads.
	Debounce time.Duration `yaml:"debounce"`

	// DataDir points at an alternate project root to read snapshots
	// from. Empty reads from the root the config was found under.
	DataDir string `yaml:"data_dir"`

	// Channel restricts the view to one job channel. Empty shows all.
	Channel string `yaml:"channel"`

	// Watch enables live reload when snapshot files change.
	Watch bool `yaml:"watch"`
}

// UnmarshalYAML decodes durations from strings like "10m" or "1h30m".
// Absent fields keep whatever value the receiver already holds.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		StaleThreshold   string  `yaml:"stale_threshold"`
		RunningThreshold string  `yaml:"running_threshold"`
		Debounce         string  `yaml:"debounce"`
		DataDir          *string `yaml:"data_dir"`
		Channel          *string `yaml:"channel"`
		Watch            *bool   `yaml:"watch"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	durations := []struct {
		text string
		dst  *time.Duration
		name string
	}{
		{raw.StaleThreshold, &c.StaleThreshold, "stale_threshold"},
		{raw.RunningThreshold, &c.RunningThreshold, "running_threshold"},
		{raw.Debounce, &c.Debounce, "debounce"},
	}
	for _, d := range durations {
		if d.text == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.text)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if raw.DataDir != nil {
		c.DataDir = *raw.DataDir
	}
	if raw.Channel != nil {
		c.Channel = *raw.Channel
	}
	if raw.Watch != nil {
		c.Watch = *raw.Watch
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		StaleThreshold:   10 * time.Minute,
		RunningThreshold: time.Hour,
		Debounce:         250 * time.Millisecond,
		Watch:            true,
	}
}

// Validate checks the configuration for nonsensical values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.StaleThreshold, validation.Min(time.Duration(0))),
		validation.Field(&c.RunningThreshold, validation.Min(time.Duration(0))),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
	)
}

// Load reads the config file from root's snapshot directory. A missing
// file yields the defaults; a malformed or invalid file is an error.
func Load(root string) (Config, error) {
	return LoadFile(filepath.Join(loader.Dir(root), File))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
