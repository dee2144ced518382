// Package pipeline streams one unit's share of a launch through fast memory
// tile by tile: copy a tile in, compute it, copy it out.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/strategy"
	"github.com/samcharles93/cosine/internal/tiling"
)

// slots is the depth of each tile queue.
const slots = 2

// Stats summarises the work of one pipeline.
type Stats struct {
	Unit     int `json:"unit"`
	Offset   int `json:"offset"`
	Elements int `json:"elements"`
	Tiles    int `json:"tiles"`
}

// Pipeline owns the tile queues, working buffers and strategy instance of a
// single unit. It is not safe for concurrent use.
type Pipeline[T dtype.Element] struct {
	unit   int
	offset int
	count  int
	tile   int
	mode   dtype.RoundMode
	strat  strategy.Strategy

	in  [slots][]T
	out [slots][]T
	// float32 working copies of the tile being computed
	work []float32
	res  []float32
}

// New builds the pipeline for unit u of plan. Buffers are sized to the
// smaller of the tile and the unit's share so small launches stay small.
func New[T dtype.Element](plan *tiling.Plan, u int) (*Pipeline[T], error) {
	if got := dtype.Of[T](); got != plan.DType {
		return nil, fmt.Errorf("pipeline: element type %v does not match plan %v", got, plan.DType)
	}
	if u < 0 || u >= plan.Units {
		return nil, fmt.Errorf("pipeline: unit %d out of range [0, %d)", u, plan.Units)
	}
	offset, count := plan.UnitRange(u)
	tile := max(min(int(plan.TileElems), count), 1)
	strat, err := strategy.New(plan.Strategy, tile)
	if err != nil {
		return nil, err
	}
	p := &Pipeline[T]{
		unit:   u,
		offset: offset,
		count:  count,
		tile:   tile,
		mode:   plan.DownCast,
		strat:  strat,
		work:   make([]float32, tile),
		res:    make([]float32, tile),
	}
	for i := range slots {
		p.in[i] = make([]T, tile)
		p.out[i] = make([]T, tile)
	}
	return p, nil
}

func (p *Pipeline[T]) stats() Stats {
	return Stats{
		Unit:     p.unit,
		Offset:   p.offset,
		Elements: p.count,
		Tiles:    (p.count + p.tile - 1) / p.tile,
	}
}

// compute widens a staged tile, runs the strategy and narrows the result
// into an output slot.
func (p *Pipeline[T]) compute(out, in []T) {
	n := len(in)
	work, res := p.work[:n], p.res[:n]
	dtype.ToFloat32(work, in)
	p.strat.Compute(res, work)
	dtype.FromFloat32(out, res, p.mode)
}

func (p *Pipeline[T]) check(dst, src []T) {
	if len(src) < p.offset+p.count || len(dst) < p.offset+p.count {
		panic(fmt.Sprintf("pipeline: unit %d range [%d, %d) exceeds buffers of %d/%d", p.unit, p.offset, p.offset+p.count, len(src), len(dst)))
	}
}

// Process runs the unit's tiles one stage at a time through a single slot.
// dst and src are the whole launch buffers; only the unit's range is read
// or written.
func (p *Pipeline[T]) Process(dst, src []T) Stats {
	p.check(dst, src)
	for off := 0; off < p.count; off += p.tile {
		n := min(p.tile, p.count-off)
		lo := p.offset + off
		in, out := p.in[0][:n], p.out[0][:n]
		copy(in, src[lo:lo+n])
		p.compute(out, in)
		copy(dst[lo:lo+n], out)
	}
	return p.stats()
}

type staged struct {
	slot int
	off  int
	n    int
}

// Run is Process with the stages overlapped: a copy-in goroutine fills free
// input slots while the caller's goroutine computes, and a copy-out
// goroutine drains ready output slots. Each queue rotates two slots, so
// copy-in of tile i+1 proceeds while tile i is computed. The output is
// identical to Process.
func (p *Pipeline[T]) Run(dst, src []T) Stats {
	p.check(dst, src)

	freeIn := make(chan int, slots)
	readyIn := make(chan staged, slots)
	freeOut := make(chan int, slots)
	readyOut := make(chan staged, slots)
	for i := range slots {
		freeIn <- i
		freeOut <- i
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(readyIn)
		for off := 0; off < p.count; off += p.tile {
			n := min(p.tile, p.count-off)
			s := <-freeIn
			lo := p.offset + off
			copy(p.in[s][:n], src[lo:lo+n])
			readyIn <- staged{slot: s, off: off, n: n}
		}
	}()
	go func() {
		defer wg.Done()
		for t := range readyOut {
			lo := p.offset + t.off
			copy(dst[lo:lo+t.n], p.out[t.slot][:t.n])
			freeOut <- t.slot
		}
	}()

	for t := range readyIn {
		o := <-freeOut
		p.compute(p.out[o][:t.n], p.in[t.slot][:t.n])
		freeIn <- t.slot
		readyOut <- staged{slot: o, off: t.off, n: t.n}
	}
	close(readyOut)
	wg.Wait()
	return p.stats()
}
