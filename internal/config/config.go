// Package config loads and validates AirDocs configuration.
//
// Configuration is resolved in order of increasing precedence:
// built-in defaults, the YAML config file, then AIRDOCS_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Search backends.
const (
	BackendSQLite = "sqlite"
	BackendBleve  = "bleve"
)

// Config represents the complete AirDocs configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	DBPath  string       `yaml:"db_path" json:"db_path"`
	Branch  string       `yaml:"branch" json:"branch"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// SearchConfig configures the full-text search backend.
type SearchConfig struct {
	// Backend selects the search backend.
	// Options: "sqlite" (default, FTS5 with porter stemming) or "bleve"
	// (pure-Go index with english analyzer).
	Backend string `yaml:"backend" json:"backend"`

	// MarkStart and MarkEnd delimit matched regions in snippets.
	MarkStart string `yaml:"mark_start" json:"mark_start"`
	MarkEnd   string `yaml:"mark_end" json:"mark_end"`

	// MaxResults is the hard cap on search result count.
	MaxResults int `yaml:"max_results" json:"max_results"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		DBPath:  DefaultDBPath(),
		Branch:  "main",
		Search: SearchConfig{
			Backend:    BackendSQLite,
			MarkStart:  "<mark>",
			MarkEnd:    "</mark>",
			MaxResults: 50,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// DefaultDBPath returns the default database location (~/.airdocs/airdocs.db).
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".airdocs", "airdocs.db")
	}
	return filepath.Join(home, ".airdocs", "airdocs.db")
}

// UserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/airdocs/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/airdocs/config.yaml (default)
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "airdocs", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "airdocs", "config.yaml")
	}
	return filepath.Join(home, ".config", "airdocs", "config.yaml")
}

// Load builds the effective configuration.
// path is an explicit config file; when empty, the user config path is
// consulted and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if path == "" {
		path = UserConfigPath()
	}

	if err := cfg.loadYAML(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML merges the YAML file at path into the config.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

// applyEnvOverrides applies AIRDOCS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AIRDOCS_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("AIRDOCS_BRANCH"); v != "" {
		c.Branch = v
	}
	if v := os.Getenv("AIRDOCS_SEARCH_BACKEND"); v != "" {
		c.Search.Backend = v
	}
	if v := os.Getenv("AIRDOCS_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("AIRDOCS_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Search.Backend {
	case BackendSQLite, BackendBleve:
	default:
		return fmt.Errorf("invalid search backend %q (supported: %s, %s)",
			c.Search.Backend, BackendSQLite, BackendBleve)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.MarkStart == "" || c.Search.MarkEnd == "" {
		return fmt.Errorf("search.mark_start and search.mark_end must be non-empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must be set")
	}
	if c.Branch == "" {
		return fmt.Errorf("branch must be set")
	}
	switch c.Server.Transport {
	case "stdio":
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", c.Server.Transport)
	}
	return nil
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
