// Package config loads the underwriting policy file (config/underwriting.yaml).
package config

import (
	"fmt"
	"os"

	"deal_underwriting/pkg/core/logging"
	"deal_underwriting/pkg/core/returns"

	"gopkg.in/yaml.v2"
)

// DefaultPath is where binaries look for the policy file unless UNDERWRITING_CONFIG is set.
const DefaultPath = "config/underwriting.yaml"

// Config is the on-disk shape of the policy file.
type Config struct {
	Waterfall returns.WaterfallPolicy `yaml:"waterfall"`
	Compare   CompareConfig           `yaml:"compare"`
	Log       logging.LogConfig       `yaml:"log"`
}

// CompareConfig bounds scenario fan-out.
type CompareConfig struct {
	Workers      int `yaml:"workers"`       // Concurrent evaluations, <= 0 means GOMAXPROCS
	MaxScenarios int `yaml:"max_scenarios"` // Per request / invocation
}

// Default returns the house policy.
func Default() Config {
	return Config{
		Waterfall: returns.DefaultPolicy(),
		Compare: CompareConfig{
			Workers:      0,
			MaxScenarios: 256,
		},
		Log: logging.LogConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// Load reads path over the defaults, then applies LOG_LEVEL / LOG_FORMAT from the
// environment. A missing file is not an error: the defaults are returned and found is false.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, false, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		found = true
		cfg, err = Parse(data)
		if err != nil {
			return cfg, true, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, found, nil
}

// ApplyEnv overrides the log block from LOG_LEVEL and LOG_FORMAT when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the waterfall policy and compare limits.
func (c Config) Validate() error {
	if err := c.Waterfall.Validate(); err != nil {
		return err
	}
	if c.Compare.MaxScenarios < 1 {
		return fmt.Errorf("compare.max_scenarios must be >= 1, got %d", c.Compare.MaxScenarios)
	}
	return nil
}
