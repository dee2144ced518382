package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the cosine configuration file (~/.config/cosine/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	// Target
	Variant         string `yaml:"variant"`
	Strategy        string `yaml:"strategy"`
	FastMemoryBytes *int64 `yaml:"fast_memory_bytes"`
	Units           *int64 `yaml:"units"`
	AlignBytes      *int64 `yaml:"align_bytes"`
	Sequential      *bool  `yaml:"sequential"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cosine", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a file that exists but does not parse is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig applies config file defaults to the shared flag variables
// when the corresponding CLI flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.Variant != "" && !c.IsSet("variant") {
		variantName = cfg.Variant
	}
	if cfg.Strategy != "" && !c.IsSet("strategy") {
		strategyName = cfg.Strategy
	}
	if cfg.FastMemoryBytes != nil && !c.IsSet("fast-memory") {
		fastMemory = *cfg.FastMemoryBytes
	}
	if cfg.Units != nil && !c.IsSet("units") {
		units = *cfg.Units
	}
	if cfg.AlignBytes != nil && !c.IsSet("align") {
		alignBytes = *cfg.AlignBytes
	}
	if cfg.Sequential != nil && !c.IsSet("sequential") {
		sequential = *cfg.Sequential
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
