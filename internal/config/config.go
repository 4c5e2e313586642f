// Package config loads and persists gfc configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for go-flow-classes.
type Config struct {
	// CacheDir is where analysis snapshots are stored.
	CacheDir string `yaml:"cache_dir"`

	// CacheMaxEntries caps the number of cached analyses. 0 means unlimited.
	CacheMaxEntries int `yaml:"cache_max_entries"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	// JSONLogs switches log output to one JSON object per line.
	JSONLogs bool `yaml:"json_logs"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:        defaultCacheDir(),
		CacheMaxEntries: 512,
		Verbose:         false,
		JSONLogs:        false,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gfc/cache"
	}
	return filepath.Join(home, ".gfc", "cache")
}

// globalConfigFilePath returns the global config file path (~/.gfc/config.yaml).
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gfc/config.yaml"
	}
	return filepath.Join(home, ".gfc", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.gfc/config.yaml).
func projectConfigFilePath() string {
	return ".gfc/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables (GFC_*)
// 2. Project-level config (./.gfc/config.yaml)
// 3. Global config (~/.gfc/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalPath, err)
		}
	}

	projectPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file path, creating
// parent directories if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// GlobalPath returns where Save should write the user-level config.
func GlobalPath() string {
	return globalConfigFilePath()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GFC_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GFC_CACHE_MAX_ENTRIES"); v != "" {
		if i := parseInt(v); i >= 0 {
			cfg.CacheMaxEntries = i
		}
	}
	if v := os.Getenv("GFC_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("GFC_JSON_LOGS"); v != "" {
		cfg.JSONLogs = v == "true" || v == "1" || v == "yes"
	}
}

// Validate checks that the configuration has valid required fields.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must be non-negative")
	}
	return nil
}

// parseInt attempts to parse a string as int, returning -1 on failure.
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return -1
	}
	return i
}
