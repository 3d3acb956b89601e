// Package config provides configuration management for installsync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/installsync/internal/buildstep"
	"github.com/klauern/installsync/internal/scan"
	"github.com/klauern/installsync/internal/util"
)

// Config represents the complete installsync configuration.
type Config struct {
	// Sync configures content mirroring
	Sync SyncConfig `yaml:"sync"`

	// Build configures build step injection
	Build BuildConfig `yaml:"build"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Logging configures the log handler
	Logging LoggingConfig `yaml:"logging"`
}

// SyncConfig holds content mirroring settings.
type SyncConfig struct {
	// Filter is the default file name glob for add and remove
	Filter string `yaml:"filter"`
	// FoldCase makes destination lookups case-insensitive
	FoldCase bool `yaml:"fold_case"`
}

// BuildConfig holds build step settings.
type BuildConfig struct {
	// Slot is the default build event slot (pre, post)
	Slot string `yaml:"slot"`
	// SolutionRoot is replaced by $(SolutionDir) in generated copy steps
	SolutionRoot string `yaml:"solution_root,omitempty"`
	// TargetSubPath is the default output subdirectory for copy steps
	TargetSubPath string `yaml:"target_subpath,omitempty"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
	// Progress shows a progress indicator on terminals
	Progress bool `yaml:"progress"`
}

// LoggingConfig holds log handler settings.
type LoggingConfig struct {
	// JSON switches the handler to JSON output
	JSON bool `yaml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Filter:   scan.MatchAll,
			FoldCase: false,
		},
		Build: BuildConfig{
			Slot: string(buildstep.Post),
		},
		Output: OutputConfig{
			Color:    "auto",
			Verbose:  false,
			Progress: true,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.ConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	return LoadFromPath(FilePath())
}

// LoadFromPath loads configuration from a specific path. A missing file
// yields the defaults with environment overrides applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg.applyEnvironment()
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern INSTALLSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("INSTALLSYNC_SYNC_FILTER"); v != "" {
		c.Sync.Filter = v
	}
	if v := os.Getenv("INSTALLSYNC_SYNC_FOLD_CASE"); v != "" {
		c.Sync.FoldCase = parseBool(v)
	}

	if v := os.Getenv("INSTALLSYNC_BUILD_SLOT"); v != "" {
		c.Build.Slot = v
	}
	if v := os.Getenv("INSTALLSYNC_BUILD_SOLUTION_ROOT"); v != "" {
		c.Build.SolutionRoot = v
	}
	if v := os.Getenv("INSTALLSYNC_BUILD_TARGET_SUBPATH"); v != "" {
		c.Build.TargetSubPath = v
	}

	if v := os.Getenv("INSTALLSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("INSTALLSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
	if v := os.Getenv("INSTALLSYNC_OUTPUT_PROGRESS"); v != "" {
		c.Output.Progress = parseBool(v)
	}

	if v := os.Getenv("INSTALLSYNC_LOG_JSON"); v != "" {
		c.Logging.JSON = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// GetSlot returns the build step slot from config, validating it.
func (c *Config) GetSlot() buildstep.Slot {
	slot, err := buildstep.ParseSlot(c.Build.Slot)
	if err != nil {
		return buildstep.Post
	}
	return slot
}

// GetFilter returns the sync filter, falling back to matching everything.
func (c *Config) GetFilter() string {
	if strings.TrimSpace(c.Sync.Filter) == "" {
		return scan.MatchAll
	}
	return c.Sync.Filter
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
