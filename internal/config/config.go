// Package config loads and validates the quality gate's project-level
// settings from .qualitygate/config.yml, with sane defaults so the gate
// runs unconfigured.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configDir = ".qualitygate"
const configFile = "config.yml"

// VersionPin pins a validator to a specific tool major version.
type VersionPin string

const (
	VersionAuto VersionPin = "auto"
	Version1x   VersionPin = "1.x"
	Version2x   VersionPin = "2.x"
)

// Config holds the immutable, process-wide quality gate settings (spec §3,
// §6). Recognized keys are exactly those listed in spec §6; unknown YAML
// keys are ignored by yaml.v3's default decode behavior.
type Config struct {
	Enabled    bool             `yaml:"enabled"`
	Include    []string         `yaml:"include"`
	Exclude    []string         `yaml:"exclude"`
	Timeout    string           `yaml:"timeout"`
	AutoFix    AutoFixSection   `yaml:"autoFix"`
	Validators ValidatorSection `yaml:"validators"`
}

// AutoFixSection controls the auto-fix stage.
type AutoFixSection struct {
	Enabled     bool `yaml:"enabled"`
	MaxAttempts int  `yaml:"maxAttempts"`
}

// ValidatorSection groups the two built-in validator kinds (spec §4.4).
type ValidatorSection struct {
	FormatterLinter FormatterLinterConfig `yaml:"formatterLinter"`
	TypeChecker     TypeCheckerConfig     `yaml:"typeChecker"`
}

// FormatterLinterConfig configures the formatter/linter validator.
type FormatterLinterConfig struct {
	Enabled    bool       `yaml:"enabled"`
	Version    VersionPin `yaml:"version"`
	ConfigPath string     `yaml:"configPath"`
}

// TypeCheckerConfig configures the type-checker validator.
type TypeCheckerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ConfigPath string `yaml:"configPath"`
}

// DefaultConfig returns the gate's configuration with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Include: []string{"**/*"},
		Exclude: []string{},
		Timeout: "5000ms",
		AutoFix: AutoFixSection{
			Enabled:     true,
			MaxAttempts: 3,
		},
		Validators: ValidatorSection{
			FormatterLinter: FormatterLinterConfig{
				Enabled: true,
				Version: VersionAuto,
			},
			TypeChecker: TypeCheckerConfig{
				Enabled: true,
			},
		},
	}
}

// Load reads .qualitygate/config.yml from projectRoot and merges it onto
// DefaultConfig. A missing file is not an error (spec §6 boundary: the core
// treats Config as immutable and collaborator-provided, but ships a working
// default so standalone invocation is possible).
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, configDir, configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate returns an error if the config's duration fields don't parse.
func (c *Config) Validate() error {
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("timeout: invalid duration %q: %w", c.Timeout, err)
		}
	}
	if c.AutoFix.MaxAttempts < 0 {
		return fmt.Errorf("autoFix.maxAttempts must be >= 0, got %d", c.AutoFix.MaxAttempts)
	}
	switch c.Validators.FormatterLinter.Version {
	case "", VersionAuto, Version1x, Version2x:
	default:
		return fmt.Errorf("validators.formatterLinter.version: invalid pin %q", c.Validators.FormatterLinter.Version)
	}
	return nil
}

// TimeoutDuration resolves c.Timeout, falling back to 5s when unset/invalid.
func (c *Config) TimeoutDuration() time.Duration {
	if c == nil {
		return 5 * time.Second
	}
	return TimeoutFromConfigOrEnv(c.Timeout, "QUALITYGATE_TIMEOUT_VALIDATOR", 5*time.Second)
}

// MaxFixAttempts resolves c.AutoFix.MaxAttempts, defaulting to 3.
func (c *Config) MaxFixAttempts() int {
	if c == nil || c.AutoFix.MaxAttempts <= 0 {
		return 3
	}
	return c.AutoFix.MaxAttempts
}

// TimeoutFromEnv returns a duration from an env var, or fallback if unset
// or unparseable.
func TimeoutFromEnv(envKey string, fallback time.Duration) time.Duration {
	if v := os.Getenv(envKey); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// TimeoutFromConfigOrEnv resolves a duration from a config string, then an
// env var, then a hardcoded fallback.
func TimeoutFromConfigOrEnv(configVal, envKey string, fallback time.Duration) time.Duration {
	if configVal != "" {
		if d, err := time.ParseDuration(configVal); err == nil {
			return d
		}
	}
	return TimeoutFromEnv(envKey, fallback)
}

// FindProjectRoot walks up from cwd looking for a directory containing
// .qualitygate/ or .git/, falling back to cwd if neither is found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, configDir)); err == nil {
			return current, nil
		}
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return cwd, nil
		}
		current = parent
	}
}

// RelativeToRoot returns path relative to root, or path unchanged if it
// cannot be made relative (e.g. on a different volume).
func RelativeToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
