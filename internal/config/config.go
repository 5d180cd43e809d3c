// Package config loads the verifier's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region config

// Config holds the verifier settings. Flags override file values.
type Config struct {
	// Input is the results file to verify.
	Input string `yaml:"input"`

	// Archive, when set, is the SQLite database verified runs are saved to.
	Archive string `yaml:"archive"`

	// Levels, when positive, requires every record to carry exactly this
	// many per-batch counts (the simulator emits one per cache level).
	Levels int `yaml:"levels"`

	// JSON switches the verifier to one JSON object per record instead of
	// summary lines.
	JSON bool `yaml:"json"`
}

// Default returns the built-in configuration: the simulator drops
// output.csv in the working directory.
func Default() Config {
	return Config{Input: "output.csv"}
}

// #endregion config

// #region load

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Input == "" {
		cfg.Input = Default().Input
	}
	if cfg.Levels < 0 {
		return Config{}, fmt.Errorf("config %s: levels must be non-negative, got %d", path, cfg.Levels)
	}
	return cfg, nil
}

// #endregion load
