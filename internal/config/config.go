// Package config loads uniscope configuration from the state directory.
// Configuration lives in <state dir>/config.yaml; every field has a default
// so a missing file is not an error. Environment variables override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the backend origin used when nothing else is configured.
const DefaultBaseURL = "http://localhost:2040"

// DefaultLocale is the locale used for multilingual field resolution.
const DefaultLocale = "en"

// Config holds all uniscope configuration.
type Config struct {
	// API configures the remote backend gateway.
	API APIConfig `yaml:"api"`

	// Locale selects which language variant of multilingual fields to show
	// (en, ru, tm).
	Locale string `yaml:"locale"`

	// StateDir is where local state lives (preferences, session, catalog
	// cache). Defaults to ~/.uniscope.
	StateDir string `yaml:"state_dir"`

	// Logging controls log verbosity.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the HTTP gateway.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration string, e.g. "30s"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: "30s",
		},
		Locale:   DefaultLocale,
		StateDir: defaultStateDir(),
	}
}

// Load reads config.yaml from the given state directory. A missing file
// yields defaults; a malformed file is an error. Environment overrides are
// applied last.
func Load(stateDir string) (*Config, error) {
	cfg := Default()
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	path := filepath.Join(cfg.StateDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of file values.
// UNISCOPE_HOME moves the whole state directory; UNISCOPE_API_URL and
// UNISCOPE_LOCALE override individual settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("UNISCOPE_HOME"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("UNISCOPE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("UNISCOPE_LOCALE"); v != "" {
		c.Locale = v
	}
}

// fillDefaults backfills any field a partial config file left empty.
func (c *Config) fillDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.StateDir == "" {
		c.StateDir = defaultStateDir()
	}
}

// RequestTimeout parses the API timeout, falling back to 30s on bad input.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// PrefsDir returns the preference store directory.
func (c *Config) PrefsDir() string {
	return filepath.Join(c.StateDir, "prefs")
}

// CatalogCachePath returns the offline catalog database path.
func (c *Config) CatalogCachePath() string {
	return filepath.Join(c.StateDir, "cache", "catalog.db")
}

// Save writes the config back to <state dir>/config.yaml.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.StateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(c.StateDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".uniscope"
	}
	return filepath.Join(home, ".uniscope")
}
