package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the provider report commands and the dataset location.
type Config struct {
	// Dataset is the path to the merged dataset file.
	Dataset string `yaml:"dataset"`
	// Providers maps a provider name to the argv of a command printing that
	// provider's daily usage report as JSON.
	Providers map[string][]string `yaml:"providers"`
}

// defaultConfig covers the common setup: ccusage for Claude Code and the
// codex usage exporter, both writing JSON to stdout.
func defaultConfig() *Config {
	return &Config{
		Dataset: "usage.json",
		Providers: map[string][]string{
			"claude": {"ccusage", "daily", "--json", "--offline"},
			"codex":  {"ccusage-codex", "daily", "--json"},
		},
	}
}

// defaultConfigPath returns ~/.ccmerge.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ccmerge.yaml"), nil
}

// LoadConfig reads the YAML config at path, falling back to defaults when
// the file does not exist. Fields left empty in the file keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Dataset == "" {
		cfg.Dataset = defaultConfig().Dataset
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultConfig().Providers
	}
	// "totals" is the dataset file's combined-totals key.
	if _, ok := cfg.Providers["totals"]; ok {
		return nil, fmt.Errorf("%s: %q is a reserved key and cannot be a provider name", path, "totals")
	}
	return &cfg, nil
}
