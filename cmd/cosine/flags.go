package main

import "github.com/urfave/cli/v3"

var (
	configFile   string
	variantName  string
	strategyName string
	fastMemory   int64
	units        int64
	alignBytes   int64
	sequential   bool
	logLevel     string
	logFormat    string
	debug        bool
)

func targetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "platform variant (standard, constrained)",
			Value:       "standard",
			Destination: &variantName,
		},
		&cli.StringFlag{
			Name:        "strategy",
			Aliases:     []string{"s"},
			Usage:       "compute strategy (reference, high-performance, high-precision); empty selects the variant default",
			Destination: &strategyName,
		},
		&cli.Int64Flag{
			Name:        "fast-memory",
			Usage:       "per-unit fast memory budget in bytes (0 uses the variant default)",
			Destination: &fastMemory,
		},
		&cli.Int64Flag{
			Name:        "units",
			Aliases:     []string{"j"},
			Usage:       "maximum number of units (0 uses GOMAXPROCS)",
			Destination: &units,
		},
		&cli.Int64Flag{
			Name:        "align",
			Usage:       "block alignment in bytes",
			Value:       32,
			Destination: &alignBytes,
		},
		&cli.BoolFlag{
			Name:        "sequential",
			Usage:       "run copy-in, compute and copy-out back to back within each unit",
			Destination: &sequential,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func commonFlags(extra ...cli.Flag) []cli.Flag {
	flags := append(targetFlags(), loggingFlags()...)
	return append(flags, extra...)
}
