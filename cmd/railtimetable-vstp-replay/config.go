// Config loading for the replay CLI, styled on the sibling
// netex-validator's config package: a DefaultConfig, a LoadConfig that
// starts from the default and unmarshals a YAML file over it, and a
// Validate pass before the config is trusted.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReplayConfig is the optional replay.yaml shape. Every field has a
// command-line flag equivalent; the config file exists so an operator
// running this against the same feed repeatedly doesn't have to repeat
// the same four flags by hand.
type ReplayConfig struct {
	StateFile string `yaml:"stateFile"`
	CIFFile   string `yaml:"cifFile"`
	LogLevel  string `yaml:"logLevel"`
	Output    string `yaml:"output"` // "table" or "json"
}

func DefaultConfig() *ReplayConfig {
	return &ReplayConfig{
		StateFile: "vstp-state.json",
		LogLevel:  "info",
		Output:    "table",
	}
}

func LoadConfig(configPath string) (*ReplayConfig, error) {
	config := DefaultConfig()
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	if !filepath.IsAbs(configPath) && strings.Contains(configPath, "..") {
		return nil, fmt.Errorf("invalid config file path: %s", configPath)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *ReplayConfig) Validate() error {
	if c.StateFile == "" {
		return fmt.Errorf("stateFile cannot be empty")
	}
	if c.Output != "table" && c.Output != "json" {
		return fmt.Errorf("invalid output %q (valid: table, json)", c.Output)
	}
	return nil
}
