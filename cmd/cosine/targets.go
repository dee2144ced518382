package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cosine/internal/platform"
)

func targetsCmd() *cli.Command {
	return &cli.Command{
		Name:   "targets",
		Usage:  "List platform variants and what each supports",
		Flags:  commonFlags(),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "VARIANT\tDTYPES\tSTRATEGIES\tDEFAULT\tFAST MEMORY\tSCRATCH (F32/16-BIT)\tDOWN-CAST")
			for _, v := range platform.Variants() {
				p, _ := platform.Lookup(v)
				dts := make([]string, len(p.DTypes))
				for i, dt := range p.DTypes {
					dts[i] = dt.String()
				}
				ks := make([]string, len(p.Strategies))
				for i, k := range p.Strategies {
					ks[i] = k.String()
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%s\n",
					v, strings.Join(dts, ","), strings.Join(ks, ","), p.Default,
					p.FastMemoryBytes, p.ScratchF32, p.ScratchReduced, p.DownCast)
			}
			return tw.Flush()
		},
	}
}
