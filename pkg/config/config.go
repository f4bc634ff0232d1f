// Package config provides configuration loading and management for lsl3d.
// It loads scan settings from YAML or TOML files and provides default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"lsl3d/pkg/ccl"
	"lsl3d/pkg/features"
	"lsl3d/pkg/relabel"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unify"
)

// Config represents the scan configuration loaded from a file
type Config struct {
	// Scan parameters
	Scan struct {
		// Connectivity is 4 or 8 for images, 6, 18 or 26 for volumes
		Connectivity int `yaml:"connectivity" toml:"connectivity"`

		// Strategy is one of separate, eager, double, pipeline, er, noera
		Strategy string `yaml:"strategy" toml:"strategy"`

		// Encoder is one of auto, scalar, branchy, word
		Encoder string `yaml:"encoder" toml:"encoder"`

		// Relabel is one of scalar, block, nothing
		Relabel string `yaml:"relabel" toml:"relabel"`

		// CountStates records merge state transitions
		CountStates bool `yaml:"countStates" toml:"countStates"`
	} `yaml:"scan" toml:"scan"`

	// Component statistics
	Features struct {
		// Mode is one of otf, postpass, none
		Mode string `yaml:"mode" toml:"mode"`

		// Stats selects the statistics tracked per component
		Stats features.Config `yaml:"stats" toml:"stats"`
	} `yaml:"features" toml:"features"`

	// Output parameters
	Output struct {
		// Verbose enables development logging
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	def := ccl.DefaultConfig()
	cfg := &Config{}

	cfg.Scan.Connectivity = int(def.Connectivity)
	cfg.Scan.Strategy = string(def.Strategy)
	cfg.Scan.Encoder = string(def.Encoder)
	cfg.Scan.Relabel = string(def.Relabel)

	cfg.Features.Mode = string(def.FeatureMode)
	cfg.Features.Stats = def.Features

	cfg.Output.Verbose = false
	return cfg
}

// ScanConfig converts the file settings into a validated scan
// configuration for a volume of the given size.
func (c *Config) ScanConfig(width, height, depth int) (ccl.Config, error) {
	out := ccl.Config{
		Connectivity: unify.Connectivity(c.Scan.Connectivity),
		Strategy:     unify.Kind(strings.ToLower(c.Scan.Strategy)),
		Encoder:      rle.Kind(strings.ToLower(c.Scan.Encoder)),
		Relabel:      relabel.Kind(strings.ToLower(c.Scan.Relabel)),
		FeatureMode:  ccl.FeatureMode(strings.ToLower(c.Features.Mode)),
		Features:     c.Features.Stats,
		CountStates:  c.Scan.CountStates,
	}
	if err := out.Validate(width, height, depth); err != nil {
		return ccl.Config{}, fmt.Errorf("invalid scan configuration: %w", err)
	}
	return out, nil
}

// Logger returns a development logger when verbose output is enabled
// and a no-op logger otherwise
func (c *Config) Logger() (*zap.Logger, error) {
	if !c.Output.Verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by
// extension. If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if isTOML(configPath) {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
