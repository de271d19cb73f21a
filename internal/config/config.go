// Package config provides configuration loading and structs for the Seisho server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Corpus sources.
const (
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string  `yaml:"host"`
	Port              int     `yaml:"port"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CorpusConfig selects where volumes are loaded from. Volume order is the corpus
// traversal order.
type CorpusConfig struct {
	Source    string         `yaml:"source"`
	Directory string         `yaml:"directory"`
	Volumes   []VolumeConfig `yaml:"volumes"`
}

// VolumeConfig names one volume and its source file, relative to the corpus directory.
type VolumeConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// StorageConfig holds the corpus database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig holds query execution settings.
type SearchConfig struct {
	Workers                  int  `yaml:"workers"`
	MaxConcurrentLoads       int  `yaml:"max_concurrent_loads"`
	DefaultProximityDistance int  `yaml:"default_proximity_distance"`
	MinQueryLength           int  `yaml:"min_query_length"`
	VolumeQualifiedLabels    bool `yaml:"volume_qualified_labels"`
}

// WatchConfig controls reloading of volume files that change on disk.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// VolumeNames returns the configured volume names in order.
func (c *CorpusConfig) VolumeNames() []string {
	names := make([]string, len(c.Volumes))
	for i, v := range c.Volumes {
		names[i] = v.Name
	}
	return names
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	switch c.Corpus.Source {
	case SourceFiles, SourceSQLite:
	default:
		return fmt.Errorf("unknown corpus source %q (want %q or %q)", c.Corpus.Source, SourceFiles, SourceSQLite)
	}
	seen := make(map[string]struct{}, len(c.Corpus.Volumes))
	for i, v := range c.Corpus.Volumes {
		if v.Name == "" {
			return fmt.Errorf("corpus volume %d has no name", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("duplicate corpus volume %q", v.Name)
		}
		seen[v.Name] = struct{}{}
		if c.Corpus.Source == SourceFiles && v.Path == "" {
			return fmt.Errorf("corpus volume %q has no path", v.Name)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Corpus.Directory = expandPath(cfg.Corpus.Directory, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
