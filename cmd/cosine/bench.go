package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sys/cpu"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/kernel"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
)

func benchCmd() *cli.Command {
	var (
		elements   int64
		warmupRuns int64
		benchRuns  int64
		lo, hi     float64
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "Measure throughput and accuracy of each strategy on this host",
		Flags: commonFlags(
			&cli.Int64Flag{
				Name:        "elements",
				Aliases:     []string{"n"},
				Usage:       "number of float32 elements per launch",
				Value:       1 << 22,
				Destination: &elements,
			},
			&cli.Int64Flag{
				Name:        "warmup",
				Usage:       "number of warmup runs",
				Value:       1,
				Destination: &warmupRuns,
			},
			&cli.Int64Flag{
				Name:        "runs",
				Usage:       "number of benchmark runs",
				Value:       5,
				Destination: &benchRuns,
			},
			&cli.FloatFlag{
				Name:        "lo",
				Usage:       "lower bound of the input range",
				Value:       -1000,
				Destination: &lo,
			},
			&cli.FloatFlag{
				Name:        "hi",
				Usage:       "upper bound of the input range",
				Value:       1000,
				Destination: &hi,
			},
		),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			caps, opts, err := resolveTarget()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if elements < 2 || benchRuns < 1 || !(hi > lo) {
				return cli.Exit("error: need at least 2 elements, 1 run and hi > lo", 1)
			}
			prof, _ := platform.Lookup(caps.Variant)
			kinds := prof.Strategies
			if opts.Strategy != 0 {
				kinds = []strategy.Kind{opts.Strategy}
			}

			n := int(elements)
			src := make([]float32, n)
			for i := range src {
				src[i] = float32(lo + (hi-lo)*float64(i)/float64(n-1))
			}
			dst := make([]float32, n)

			fmt.Printf("host:     %s/%s, %d CPUs, features: %s\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), hostFeatures())
			fmt.Printf("target:   %s, %d units, fast memory %d bytes\n", caps.Variant, caps.Units, caps.FastMemoryBytes)
			fmt.Printf("input:    %d x %s in [%g, %g]\n\n", n, dtype.F32, lo, hi)

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STRATEGY\tUNITS\tTILE\tBEST\tMEAN\tGELEM/S\tMAX ERR\tMEAN ERR")
			for _, k := range kinds {
				o := opts
				o.Strategy = k
				for range warmupRuns {
					if _, err := kernel.Launch(ctx, dst, src, caps, o); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
				}
				var (
					best  = time.Duration(math.MaxInt64)
					total time.Duration
					rep   *kernel.Report
				)
				for range benchRuns {
					start := time.Now()
					rep, err = kernel.Launch(ctx, dst, src, caps, o)
					if err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
					d := time.Since(start)
					total += d
					best = min(best, d)
				}
				maxErr, meanErr := errorStats(dst, src)
				mean := total / time.Duration(benchRuns)
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%.3f\t%.3g\t%.3g\n",
					k, rep.Plan.Units, rep.Plan.TileElems,
					best.Round(time.Microsecond), mean.Round(time.Microsecond),
					float64(n)/best.Seconds()/1e9, maxErr, meanErr)
				log.Debug("bench strategy done", "strategy", k.String(), "runs", benchRuns, "best", best)
			}
			return tw.Flush()
		},
	}
}

func errorStats(got, xs []float32) (maxErr, meanErr float64) {
	var sum float64
	for i, x := range xs {
		e := math.Abs(float64(got[i]) - math.Cos(float64(x)))
		maxErr = max(maxErr, e)
		sum += e
	}
	return maxErr, sum / float64(len(xs))
}

func hostFeatures() string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			ok   bool
		}{
			{"sse4.1", cpu.X86.HasSSE41},
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"fma", cpu.X86.HasFMA},
			{"avx512f", cpu.X86.HasAVX512F},
		} {
			if f.ok {
				feats = append(feats, f.name)
			}
		}
	case "arm64":
		for _, f := range []struct {
			name string
			ok   bool
		}{
			{"asimd", cpu.ARM64.HasASIMD},
			{"fphp", cpu.ARM64.HasFPHP},
			{"asimdhp", cpu.ARM64.HasASIMDHP},
			{"sve", cpu.ARM64.HasSVE},
		} {
			if f.ok {
				feats = append(feats, f.name)
			}
		}
	}
	if len(feats) == 0 {
		return "none detected"
	}
	return strings.Join(feats, ",")
}
