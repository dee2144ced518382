// Package kernel launches the tiled cosine over a whole buffer: it plans the
// partition once, builds one pipeline per unit and runs every unit on its
// own goroutine.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/internal/pipeline"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
	"github.com/samcharles93/cosine/internal/tiling"
)

// ErrLengthMismatch is returned when input and output differ in length.
var ErrLengthMismatch = errors.New("input and output lengths differ")

// Options tune a launch. The zero value uses the variant's default strategy
// and the default alignment.
type Options struct {
	Strategy   strategy.Kind
	AlignBytes int
	// Sequential runs each unit's stages back to back instead of overlapping
	// copy-in, compute and copy-out.
	Sequential bool
}

// Report describes a finished launch.
type Report struct {
	ID       string           `json:"id"`
	Plan     *tiling.Plan     `json:"plan"`
	Units    []pipeline.Stats `json:"units"`
	Started  time.Time        `json:"started"`
	Duration time.Duration    `json:"duration_ns"`
}

// Plan validates a launch of n elements of type dt without running it.
func Plan(n int, dt dtype.DType, caps platform.Capabilities, opts Options) (*tiling.Plan, error) {
	return tiling.New(tiling.Request{
		Elements:   n,
		DType:      dt,
		Target:     caps,
		Strategy:   opts.Strategy,
		AlignBytes: opts.AlignBytes,
	})
}

// Launch writes cos(src[i]) to dst[i] for every i. All validation happens
// before the first unit starts, so a failed launch leaves dst untouched.
// dst may be src itself but must not otherwise overlap it.
func Launch[T dtype.Element](ctx context.Context, dst, src []T, caps platform.Capabilities, opts Options) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(dst) != len(src) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(dst), len(src))
	}
	plan, err := Plan(len(src), dtype.Of[T](), caps, opts)
	if err != nil {
		return nil, err
	}

	pipes := make([]*pipeline.Pipeline[T], plan.Units)
	for u := range pipes {
		if pipes[u], err = pipeline.New[T](plan, u); err != nil {
			return nil, err
		}
	}

	rep := &Report{
		ID:      uuid.NewString(),
		Plan:    plan,
		Units:   make([]pipeline.Stats, plan.Units),
		Started: time.Now(),
	}
	log := logger.FromContext(ctx).With("launch_id", rep.ID)
	log.Debug("launch planned",
		"elements", plan.Elements,
		"units", plan.Units,
		"tile_elems", plan.TileElems,
		"big_units", plan.BigUnitCount,
		"strategy", plan.Strategy.String(),
		"dtype", plan.DType.String(),
		"variant", string(plan.Variant),
	)

	var wg sync.WaitGroup
	wg.Add(len(pipes))
	for u, p := range pipes {
		go func() {
			defer wg.Done()
			if opts.Sequential {
				rep.Units[u] = p.Process(dst, src)
			} else {
				rep.Units[u] = p.Run(dst, src)
			}
		}()
	}
	wg.Wait()
	rep.Duration = time.Since(rep.Started)

	log.Info("launch complete",
		"elements", plan.Elements,
		"units", plan.Units,
		"strategy", plan.Strategy.String(),
		"duration", rep.Duration,
	)
	return rep, nil
}
