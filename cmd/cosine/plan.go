package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/kernel"
)

func planCmd() *cli.Command {
	var (
		elements  int64
		dtypeName string
		asJSON    bool
	)

	return &cli.Command{
		Name:  "plan",
		Usage: "Show the partition a launch would use without running it",
		Flags: commonFlags(
			&cli.Int64Flag{
				Name:        "elements",
				Aliases:     []string{"n"},
				Usage:       "number of elements",
				Value:       1 << 20,
				Destination: &elements,
			},
			&cli.StringFlag{
				Name:        "dtype",
				Aliases:     []string{"t"},
				Usage:       "element type (float16, float32, bfloat16)",
				Value:       "float32",
				Destination: &dtypeName,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the plan as JSON",
				Destination: &asJSON,
			},
		),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			caps, opts, err := resolveTarget()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			dt, err := dtype.Parse(dtypeName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			plan, err := kernel.Plan(int(elements), dt, caps, opts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			desc, err := plan.Descriptor.MarshalBinary()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"plan":            plan,
					"descriptor":      hex.EncodeToString(desc),
					"workspace_bytes": plan.WorkspaceBytes(),
				})
			}

			fmt.Printf("target:          %s (fast memory %d bytes, %d units max)\n", caps.Variant, caps.FastMemoryBytes, caps.Units)
			fmt.Printf("elements:        %d x %s\n", plan.Elements, plan.DType)
			fmt.Printf("strategy:        %s\n", plan.Strategy)
			fmt.Printf("units:           %d (%d big x %d, rest x %d)\n", plan.Units, plan.BigUnitCount, plan.BigUnitElems, plan.SmallUnitElems)
			fmt.Printf("tile:            %d elements (%d buffers, block %d)\n", plan.TileElems, plan.Scratch, plan.BlockElems)
			fmt.Printf("descriptor:      %s\n", hex.EncodeToString(desc))
			fmt.Printf("workspace:       %d bytes\n", plan.WorkspaceBytes())
			for u := range plan.Units {
				off, count := plan.UnitRange(u)
				fmt.Printf("  unit %-4d  [%d, %d)  %d tiles\n", u, off, off+count, plan.Tiles(u))
			}
			return nil
		},
	}
}
