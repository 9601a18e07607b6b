// Package config loads probec settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/types2"
)

// Config holds all probec configuration.
type Config struct {
	// Type resolution
	Resolver ResolverConfig `yaml:"resolver"`

	// Diagnostic rendering
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Kernel type information
	Types TypesConfig `yaml:"types"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ResolverConfig configures the type resolver.
type ResolverConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// DiagnosticsConfig configures how diagnostics are reported.
type DiagnosticsConfig struct {
	Color            string `yaml:"color"` // auto, always, never
	WarningsAsErrors bool   `yaml:"warnings_as_errors"`
}

// TypesConfig locates the kernel struct descriptions.
type TypesConfig struct {
	BTF string `yaml:"btf"` // YAML struct database; empty for none
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			MaxIterations: types2.DefaultMaxIterations,
		},
		Diagnostics: DiagnosticsConfig{
			Color: diag.ColorAuto.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies PROBEC_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PROBEC_BTF"); v != "" {
		c.Types.BTF = v
	}
	if v := os.Getenv("PROBEC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Resolver.MaxIterations <= 0 {
		return fmt.Errorf("invalid resolver.max_iterations: %d (must be positive)", c.Resolver.MaxIterations)
	}
	if _, err := diag.ParseColorMode(c.Diagnostics.Color); err != nil {
		return fmt.Errorf("invalid diagnostics.color: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	return nil
}

// ColorMode returns the parsed diagnostics color mode. Validate must have
// succeeded.
func (c *Config) ColorMode() diag.ColorMode {
	m, _ := diag.ParseColorMode(c.Diagnostics.Color)
	return m
}

// LogLevel returns the parsed logging level, defaulting to info.
func (c *Config) LogLevel() zapcore.Level {
	l, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
