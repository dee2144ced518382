package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/kernel"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
)

// setup is the Before hook shared by every subcommand: it loads the config
// file, fills unset flags from it and stores the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	applyConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	log, err := logger.ForFormat(logFormat, os.Stderr, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}

// resolveTarget turns the target flags into launch capabilities and
// options.
func resolveTarget() (platform.Capabilities, kernel.Options, error) {
	v, err := platform.ParseVariant(variantName)
	if err != nil {
		return platform.Capabilities{}, kernel.Options{}, err
	}
	if fastMemory < 0 || units < 0 {
		return platform.Capabilities{}, kernel.Options{}, fmt.Errorf("fast memory and units must not be negative")
	}
	caps, err := platform.Query(v, platform.Overrides{
		FastMemoryBytes: uint64(fastMemory),
		Units:           int(units),
	})
	if err != nil {
		return platform.Capabilities{}, kernel.Options{}, err
	}
	opts := kernel.Options{
		AlignBytes: int(alignBytes),
		Sequential: sequential,
	}
	if strategyName != "" {
		if opts.Strategy, err = strategy.ParseKind(strategyName); err != nil {
			return platform.Capabilities{}, kernel.Options{}, err
		}
	}
	return caps, opts, nil
}
