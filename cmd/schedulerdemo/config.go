package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives one schedulerdemo run. Fields mirror the cobra flags in
// main.go; a YAML file loaded via --config supplies defaults that flags
// then override, and SCHEDULER_NAME (if set) overrides Strategy last of
// all, so a CI job can swap strategies without touching either.
type Config struct {
	Strategy string `yaml:"strategy"`
	VPs      int    `yaml:"vps"`
	EUsPerVP int    `yaml:"eus_per_vp"`
	Tiles    int    `yaml:"tiles"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when neither --config nor
// any override flag is given.
func DefaultConfig() Config {
	return Config{
		Strategy: "pbq",
		VPs:      1,
		EUsPerVP: 4,
		Tiles:    6,
		LogLevel: "info",
	}
}

// LoadConfig reads and parses a YAML config file, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// applyEnvOverride lets SCHEDULER_NAME override the configured strategy,
// for quick strategy sweeps in shell scripts without editing flags/YAML.
func (c *Config) applyEnvOverride() {
	if name := os.Getenv("SCHEDULER_NAME"); name != "" {
		c.Strategy = name
	}
}
