package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil || cfg.Variant != "" || cfg.Units != nil {
		t.Fatalf("missing file: cfg=%+v err=%v", cfg, err)
	}

	path := filepath.Join(dir, "config.yaml")
	body := "variant: constrained\nstrategy: reference\nfast_memory_bytes: 65536\nunits: 0\nlog_format: json\nserver_address: 0.0.0.0:9000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Variant != "constrained" || cfg.Strategy != "reference" || cfg.LogFormat != "json" || cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.FastMemoryBytes == nil || *cfg.FastMemoryBytes != 65536 {
		t.Fatalf("fast_memory_bytes not parsed")
	}
	if cfg.Units == nil || *cfg.Units != 0 {
		t.Fatalf("explicit zero units should be kept as set")
	}
	if cfg.AlignBytes != nil {
		t.Fatalf("unset align_bytes should stay nil")
	}

	if err := os.WriteFile(path, []byte("units: [1, 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	fm := int64(4096)
	u := int64(6)
	cfg := Config{
		Variant:         "constrained",
		Strategy:        "reference",
		FastMemoryBytes: &fm,
		Units:           &u,
		LogLevel:        "debug",
	}

	cmd := &cli.Command{
		Name:  "probe",
		Flags: commonFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyConfig(c, cfg)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"probe", "--units", "3", "--log-level", "warn"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if variantName != "constrained" || strategyName != "reference" || fastMemory != 4096 {
		t.Fatalf("config values not applied: %q %q %d", variantName, strategyName, fastMemory)
	}
	if units != 3 || logLevel != "warn" {
		t.Fatalf("explicit flags overridden: units=%d level=%q", units, logLevel)
	}

	caps, opts, err := resolveTarget()
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if caps.Variant != platform.Constrained || caps.Units != 3 || caps.FastMemoryBytes != 4096 || opts.Strategy != strategy.Reference {
		t.Fatalf("caps=%+v opts=%+v", caps, opts)
	}
}

func TestResolveTargetRejects(t *testing.T) {
	cmd := &cli.Command{
		Name:  "probe",
		Flags: commonFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"probe", "--variant", "quantum"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, _, err := resolveTarget(); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
	if err := cmd.Run(context.Background(), []string{"probe", "--strategy", "cordic"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, _, err := resolveTarget(); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
