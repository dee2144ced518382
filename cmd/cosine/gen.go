package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/pkg/tensorfile"
)

func genCmd() *cli.Command {
	var (
		outPath   string
		shapeSpec string
		dtypeName string
		lo, hi    float64
	)

	return &cli.Command{
		Name:  "gen",
		Usage: "Write a tensor file holding evenly spaced values",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .ctf tensor file",
				Required:    true,
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "shape",
				Usage:       "comma-separated dimensions",
				Value:       "1024",
				Destination: &shapeSpec,
			},
			&cli.StringFlag{
				Name:        "dtype",
				Aliases:     []string{"t"},
				Usage:       "element type (float16, float32, bfloat16)",
				Value:       "float32",
				Destination: &dtypeName,
			},
			&cli.FloatFlag{
				Name:        "lo",
				Usage:       "first value",
				Value:       -10,
				Destination: &lo,
			},
			&cli.FloatFlag{
				Name:        "hi",
				Usage:       "last value",
				Value:       10,
				Destination: &hi,
			},
		),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dt, err := dtype.Parse(dtypeName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			shape, err := parseShape(shapeSpec)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			n := 1
			for _, d := range shape {
				n *= d
			}
			xs := make([]float32, n)
			for i := range xs {
				if n == 1 {
					xs[i] = float32(lo)
					break
				}
				xs[i] = float32(lo + (hi-lo)*float64(i)/float64(n-1))
			}
			if err := tensorfile.Write(outPath, dt, shape, encodeValues(dt, xs)); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			logger.FromContext(ctx).Info("wrote tensor", "path", outPath, "dtype", dt.String(), "shape", shape)
			return nil
		},
	}
}

func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid dimension %q", p)
		}
		shape = append(shape, d)
	}
	if len(shape) > tensorfile.MaxRank {
		return nil, fmt.Errorf("rank %d exceeds %d", len(shape), tensorfile.MaxRank)
	}
	return shape, nil
}
