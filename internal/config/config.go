// Package config loads the passforge configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/policy"
)

const (
	// AppName is the directory name under the XDG base directories.
	AppName = "passforge"
	// FileName is the config file name.
	FileName = "config.yaml"
	// CurrentVersion is the only supported schema version.
	CurrentVersion = 1
)

// ErrUnsupportedVersion is returned for a config file with an unknown schema version.
var ErrUnsupportedVersion = errors.New("unsupported config version")

// ErrInsecureConfig is returned when group or others can write the config file.
var ErrInsecureConfig = errors.New("config file is writable by group or others")

// ErrConfigSymlink is returned when the config file is a symlink.
var ErrConfigSymlink = errors.New("config file is a symlink")

// ErrConfigNotOwnedByUser is returned when the config file belongs to another user.
var ErrConfigNotOwnedByUser = errors.New("config file not owned by current user")

// Config is the on-disk configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Policy    policy.Policy   `yaml:"policy"`
	Generator GeneratorConfig `yaml:"generator"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

// GeneratorConfig tunes the generator.
type GeneratorConfig struct {
	// MaxAttempts caps constrained mixed retries.
	MaxAttempts int `yaml:"max_attempts"`
	// StrictUniform switches the sampler from modulo reduction to rejection sampling.
	StrictUniform bool `yaml:"strict_uniform"`
}

// HistoryConfig controls the local report history.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir holds the history database. Empty means DataDir().
	Dir string `yaml:"dir,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Policy:  policy.Default(),
		Generator: GeneratorConfig{
			MaxAttempts: generator.DefaultMaxAttempts,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns $XDG_CONFIG_HOME/passforge.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns $XDG_DATA_HOME/passforge.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Load reads the config at path. A missing file yields Default().
// Fields absent from the file keep their default values.
//
// The file controls which passwords get generated, so a symlink, a file
// writable by group or others, or one owned by another user is rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := openConfigFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		if errors.Is(err, ErrConfigSymlink) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	// fstat the open descriptor so the checked file is the one read.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := checkFileSecurity(info); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the schema version and the generator settings.
// The policy itself is validated when it is used.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	if c.Generator.MaxAttempts < 0 {
		return fmt.Errorf("generator.max_attempts must not be negative, got %d", c.Generator.MaxAttempts)
	}
	return nil
}

// HistoryDir returns the configured history directory or the XDG data dir.
func (c *Config) HistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	return DataDir()
}

// Save writes c to path, creating the parent directory.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := Marshal(c)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes c as YAML.
func Marshal(c *Config) ([]byte, error) {
	content, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return content, nil
}
