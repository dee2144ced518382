// Package tiling decides, once per launch, how many units to run, how many
// elements each unit owns and how large a tile each unit streams through its
// fast memory.
package tiling

import (
	"fmt"
	"math"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
)

// DefaultAlignBytes is the hardware block the unit shares and tiles are
// rounded to.
const DefaultAlignBytes = 32

// unitFactor weights the square-root unit heuristic: sqrt(0.4*blocks) units
// balance per-unit launch overhead against per-unit work.
const unitFactor = 0.4

// Partition is the planner arithmetic on its own. n is the element count,
// width the element size in bytes, ubSize the fast memory budget in bytes
// and k the number of tile buffers that must fit in it at once.
func Partition(n, width, maxUnits int, ubSize uint64, k, alignBytes int) (Descriptor, int, error) {
	switch {
	case n < 0:
		return Descriptor{}, 0, invalid(fmt.Sprintf("negative element count %d", n))
	case width <= 0:
		return Descriptor{}, 0, invalid(fmt.Sprintf("element width %d", width))
	case maxUnits < 1:
		return Descriptor{}, 0, invalid(fmt.Sprintf("max units %d", maxUnits))
	case k < 1:
		return Descriptor{}, 0, invalid(fmt.Sprintf("scratch multiplier %d", k))
	case alignBytes < width || alignBytes%width != 0:
		return Descriptor{}, 0, invalid(fmt.Sprintf("alignment %d is not a multiple of element width %d", alignBytes, width))
	}

	blockElems := alignBytes / width
	if uint64(n) > math.MaxUint32-uint64(blockElems) {
		return Descriptor{}, 0, invalid(fmt.Sprintf("element count %d exceeds the 32-bit parameter block", n))
	}
	blocks := (n + blockElems - 1) / blockElems

	units := int(math.Sqrt(unitFactor * float64(blocks)))
	units = max(min(units, maxUnits), 1)

	smallBlocks := blocks / units
	bigCount := blocks % units
	smallElems := smallBlocks * blockElems
	bigElems := smallElems + blockElems

	tileBlocks := (ubSize / uint64(alignBytes)) / uint64(k)
	if tileBlocks == 0 {
		return Descriptor{}, 0, invalid(fmt.Sprintf("fast memory of %d bytes cannot hold %d tiles of one %d-byte block", ubSize, k, alignBytes))
	}
	tileElems := tileBlocks * uint64(blockElems)
	if tileElems > math.MaxUint32 {
		tileElems = math.MaxUint32 - math.MaxUint32%uint64(blockElems)
	}

	return Descriptor{
		BigUnitElems:   uint32(bigElems),
		SmallUnitElems: uint32(smallElems),
		TileElems:      uint32(tileElems),
		BigUnitCount:   uint32(bigCount),
	}, units, nil
}

// Request describes one launch to plan.
type Request struct {
	Elements int
	DType    dtype.DType
	Target   platform.Capabilities
	// Strategy is the requested compute strategy; zero selects the variant
	// default.
	Strategy strategy.Kind
	// AlignBytes overrides DefaultAlignBytes when positive.
	AlignBytes int
}

// Plan is the complete pre-launch decision for one launch.
type Plan struct {
	Descriptor
	Units      int              `json:"units"`
	Elements   int              `json:"elements"`
	BlockElems int              `json:"block_elems"`
	Scratch    int              `json:"scratch_multiplier"`
	DType      dtype.DType      `json:"dtype"`
	Variant    platform.Variant `json:"variant"`
	Strategy   strategy.Kind    `json:"strategy"`
	DownCast   dtype.RoundMode  `json:"-"`
}

// New validates req against its target variant and plans the launch. Every
// configuration error is reported here, before any unit runs.
func New(req Request) (*Plan, error) {
	prof, ok := platform.Lookup(req.Target.Variant)
	if !ok {
		return nil, unsupported(fmt.Sprintf("unknown platform variant %q", req.Target.Variant))
	}
	if req.DType.Size() == 0 {
		return nil, invalid(fmt.Sprintf("element type %v", req.DType))
	}
	if !prof.Supports(req.DType) {
		return nil, unsupported(fmt.Sprintf("%v is not supported on the %s variant", req.DType, prof.Variant))
	}
	kind := req.Strategy
	if kind == 0 {
		kind = prof.Default
	}
	if !prof.Allows(kind) {
		return nil, unsupported(fmt.Sprintf("%v strategy is not available on the %s variant", kind, prof.Variant))
	}

	align := req.AlignBytes
	if align <= 0 {
		align = DefaultAlignBytes
	}
	k := prof.ScratchMultiplier(req.DType)
	desc, units, err := Partition(req.Elements, req.DType.Size(), req.Target.Units, req.Target.FastMemoryBytes, k, align)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Descriptor: desc,
		Units:      units,
		Elements:   req.Elements,
		BlockElems: align / req.DType.Size(),
		Scratch:    k,
		DType:      req.DType,
		Variant:    prof.Variant,
		Strategy:   kind,
		DownCast:   prof.DownCast,
	}, nil
}

// UnitRange returns the elements owned by unit u.
func (p *Plan) UnitRange(u int) (offset, count int) {
	return p.Descriptor.UnitRange(u, p.Elements)
}

// Tiles returns how many pipeline iterations unit u runs.
func (p *Plan) Tiles(u int) int {
	_, count := p.UnitRange(u)
	tile := int(p.TileElems)
	return (count + tile - 1) / tile
}

// WorkspaceBytes is the global scratch a launch needs beyond its input and
// output. Cosine keeps everything in per-unit fast memory.
func (p *Plan) WorkspaceBytes() int {
	return 0
}
