// Package config loads the spectrace.yaml configuration. Config errors are
// the CLI's concern; the core packages receive already-validated values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spectrace/spectrace/internal/watcher"
)

// ConfigFile is the project-level config file name, searched for in the
// working directory and its parents.
const ConfigFile = "spectrace.yaml"

// Config is the complete configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
	// SocketPath is where serve mode listens. Empty means
	// .spectrace/daemon.sock under the project root.
	SocketPath string `yaml:"socket_path"`
	// StorePath is the serve-mode sqlite database. Empty means
	// .spectrace/store.db under the project root.
	StorePath string `yaml:"store_path"`

	Watch watcher.Config `yaml:"watch"`
	Specs []SpecConfig   `yaml:"specs"`
}

// SpecConfig configures one tracked spec. Exactly one of RulesGlob,
// RulesFile, RulesURL must be set.
type SpecConfig struct {
	Name string `yaml:"name"`

	// RulesGlob selects prose documents to extract rule declarations from.
	RulesGlob string `yaml:"rules_glob"`
	// RulesFile points at an interchange-format manifest on disk.
	RulesFile string `yaml:"rules_file"`
	// RulesURL fetches an interchange-format manifest over HTTP.
	RulesURL string `yaml:"rules_url"`

	// Include/Exclude restrict which source files are scanned for this
	// spec. Empty include means every file with a known comment dialect.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Watch:     watcher.DefaultConfig(),
	}
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Validate checks the configuration's internal consistency.
func (c *Config) Validate() error {
	names := make(map[string]bool)
	for i, spec := range c.Specs {
		if spec.Name == "" {
			return fmt.Errorf("specs[%d]: name is required", i)
		}
		if names[spec.Name] {
			return fmt.Errorf("specs[%d]: duplicate spec name %q", i, spec.Name)
		}
		names[spec.Name] = true

		sources := 0
		for _, s := range []string{spec.RulesGlob, spec.RulesFile, spec.RulesURL} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("spec %q: exactly one of rules_glob, rules_file, rules_url is required", spec.Name)
		}
	}
	return nil
}

// Spec returns the named spec configuration.
func (c *Config) Spec(name string) (SpecConfig, bool) {
	for _, spec := range c.Specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return SpecConfig{}, false
}

// FindProjectRoot walks up from the working directory looking for
// spectrace.yaml and returns the directory containing it along with the
// config path. Falls back to the working directory when none is found.
func FindProjectRoot() (root, configPath string, err error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", "", err
	}

	for cur := dir; ; {
		candidate := filepath.Join(cur, ConfigFile)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return cur, candidate, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, "", nil
		}
		cur = parent
	}
}

// ResolveSocketPath applies the default socket location under root.
func (c *Config) ResolveSocketPath(root string) string {
	if c.SocketPath != "" {
		return c.SocketPath
	}
	return filepath.Join(root, ".spectrace", "daemon.sock")
}

// ResolveStorePath applies the default store location under root.
func (c *Config) ResolveStorePath(root string) string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return filepath.Join(root, ".spectrace", "store.db")
}
