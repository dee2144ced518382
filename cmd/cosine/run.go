package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/kernel"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/pkg/tensorfile"
)

func runCmd() *cli.Command {
	var (
		inPath    string
		outPath   string
		values    string
		dtypeName string
		asJSON    bool
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Compute the cosine of a tensor file or a list of values",
		Flags: commonFlags(
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "input .ctf tensor file",
				Destination: &inPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .ctf tensor file (default: <in>.cos.ctf)",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "values",
				Aliases:     []string{"x"},
				Usage:       "comma-separated input values, used when --in is not given",
				Destination: &values,
			},
			&cli.StringFlag{
				Name:        "dtype",
				Aliases:     []string{"t"},
				Usage:       "element type for --values (float16, float32, bfloat16)",
				Value:       "float32",
				Destination: &dtypeName,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the launch report as JSON",
				Destination: &asJSON,
			},
		),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			caps, opts, err := resolveTarget()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			var rep *kernel.Report
			switch {
			case inPath != "":
				if outPath == "" {
					outPath = strings.TrimSuffix(inPath, ".ctf") + ".cos.ctf"
				}
				rep, err = runFile(ctx, inPath, outPath, caps, opts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				log.Info("wrote output", "path", outPath, "launch_id", rep.ID)
			case values != "":
				var out []float32
				out, rep, err = runValues(ctx, values, dtypeName, caps, opts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				if !asJSON {
					for _, v := range out {
						fmt.Println(strconv.FormatFloat(float64(v), 'g', -1, 32))
					}
				}
			default:
				return cli.Exit("error: one of --in or --values is required", 1)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			return nil
		},
	}
}

func runFile(ctx context.Context, inPath, outPath string, caps platform.Capabilities, opts kernel.Options) (*kernel.Report, error) {
	t, err := tensorfile.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", inPath, err)
	}
	defer func() { _ = t.Close() }()
	logger.FromContext(ctx).Debug("loaded tensor",
		"path", inPath,
		"dtype", t.DType().String(),
		"shape", t.Shape(),
		"elements", t.Elements(),
	)

	data, shape, dt, rep, err := kernel.LaunchTensor(ctx, t, caps, opts)
	if err != nil {
		return nil, err
	}
	if err := tensorfile.Write(outPath, dt, shape, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}
	return rep, nil
}

// parseValues reads a comma or whitespace separated list of numbers.
func parseValues(s string) ([]float32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func runValues(ctx context.Context, s, dtypeName string, caps platform.Capabilities, opts kernel.Options) ([]float32, *kernel.Report, error) {
	xs, err := parseValues(s)
	if err != nil {
		return nil, nil, err
	}
	dt, err := dtype.Parse(dtypeName)
	if err != nil {
		return nil, nil, err
	}
	src := encodeValues(dt, xs)
	dst := make([]byte, len(src))
	rep, err := kernel.LaunchRaw(ctx, dt, dst, src, caps, opts)
	if err != nil {
		return nil, nil, err
	}
	out, err := decodeValues(dt, dst)
	if err != nil {
		return nil, nil, err
	}
	return out, rep, nil
}

// encodeValues narrows xs to dt with round-to-nearest-even and returns the
// little-endian payload.
func encodeValues(dt dtype.DType, xs []float32) []byte {
	raw := make([]byte, len(xs)*dt.Size())
	switch dt {
	case dtype.F16:
		h := make([]dtype.Float16, len(xs))
		dtype.FromFloat32(h, xs, dtype.RoundNearestEven)
		dtype.Encode(raw, h)
	case dtype.BF16:
		h := make([]dtype.BFloat16, len(xs))
		dtype.FromFloat32(h, xs, dtype.RoundNearestEven)
		dtype.Encode(raw, h)
	default:
		dtype.Encode(raw, xs)
	}
	return raw
}

func decodeValues(dt dtype.DType, raw []byte) ([]float32, error) {
	switch dt {
	case dtype.F16:
		return widen[dtype.Float16](raw)
	case dtype.BF16:
		return widen[dtype.BFloat16](raw)
	default:
		return widen[float32](raw)
	}
}

func widen[T dtype.Element](raw []byte) ([]float32, error) {
	v, err := dtype.View[T](raw)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(v))
	dtype.ToFloat32(out, v)
	return out, nil
}
