// Package platform describes the execution targets a cosine launch can be
// planned for and answers the capability query used before launch.
package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/strategy"
)

// Variant names a target family. Variants differ in which element types they
// accept, how much scratch each tile needs and how results are narrowed.
type Variant string

const (
	// Standard supports all element types and every compute strategy.
	Standard Variant = "standard"
	// Constrained has no bfloat16 path, runs only the reference strategy and
	// truncates when narrowing results.
	Constrained Variant = "constrained"
)

// ParseVariant accepts a variant name, case-insensitively.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[v]; !ok {
		return "", fmt.Errorf("unknown platform variant %q", s)
	}
	return v, nil
}

// Profile is the static description of a variant.
type Profile struct {
	Variant Variant
	DTypes  []dtype.DType
	// Tile buffers needed concurrently per element width. The 16-bit paths
	// hold both the narrow queue slots and the widened working copies.
	ScratchF32     int
	ScratchReduced int
	DownCast       dtype.RoundMode
	Strategies     []strategy.Kind
	Default        strategy.Kind
	// FastMemoryBytes is the default per-unit tile memory budget.
	FastMemoryBytes uint64
}

var profiles = map[Variant]Profile{
	Standard: {
		Variant:         Standard,
		DTypes:          []dtype.DType{dtype.F16, dtype.F32, dtype.BF16},
		ScratchF32:      8,
		ScratchReduced:  16,
		DownCast:        dtype.RoundNearestEven,
		Strategies:      []strategy.Kind{strategy.Reference, strategy.HighPerformance, strategy.HighPrecision},
		Default:         strategy.HighPrecision,
		FastMemoryBytes: 192 * 1024,
	},
	Constrained: {
		Variant:         Constrained,
		DTypes:          []dtype.DType{dtype.F16, dtype.F32},
		ScratchF32:      6,
		ScratchReduced:  12,
		DownCast:        dtype.RoundTruncate,
		Strategies:      []strategy.Kind{strategy.Reference},
		Default:         strategy.Reference,
		FastMemoryBytes: 256 * 1024,
	},
}

// Lookup returns the profile for v.
func Lookup(v Variant) (Profile, bool) {
	p, ok := profiles[v]
	return p, ok
}

// Variants lists the known variants in a stable order.
func Variants() []Variant {
	out := make([]Variant, 0, len(profiles))
	for v := range profiles {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Supports reports whether the variant has a path for dt.
func (p Profile) Supports(dt dtype.DType) bool {
	return slices.Contains(p.DTypes, dt)
}

// Allows reports whether the variant can run strategy k.
func (p Profile) Allows(k strategy.Kind) bool {
	return slices.Contains(p.Strategies, k)
}

// ScratchMultiplier returns how many tile-sized buffers must fit the fast
// memory budget at once for elements of type dt.
func (p Profile) ScratchMultiplier(dt dtype.DType) int {
	if dt.Reduced() {
		return p.ScratchReduced
	}
	return p.ScratchF32
}

// Capabilities is the answer to the capability query.
type Capabilities struct {
	Variant         Variant `json:"variant" yaml:"variant"`
	FastMemoryBytes uint64  `json:"fast_memory_bytes" yaml:"fast_memory_bytes"`
	Units           int     `json:"units" yaml:"units"`
}

// Overrides replaces parts of the queried capabilities. Zero fields keep the
// queried value.
type Overrides struct {
	FastMemoryBytes uint64
	Units           int
}

// Query returns the capabilities of variant v on this host. Units defaults to
// GOMAXPROCS since every unit runs on its own goroutine.
func Query(v Variant, o Overrides) (Capabilities, error) {
	p, ok := profiles[v]
	if !ok {
		return Capabilities{}, fmt.Errorf("unknown platform variant %q", v)
	}
	caps := Capabilities{
		Variant:         v,
		FastMemoryBytes: p.FastMemoryBytes,
		Units:           max(runtime.GOMAXPROCS(0), 1),
	}
	if o.FastMemoryBytes > 0 {
		caps.FastMemoryBytes = o.FastMemoryBytes
	}
	if o.Units > 0 {
		caps.Units = o.Units
	}
	return caps, nil
}
