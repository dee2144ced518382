// Package strategy implements the interchangeable cosine algorithms applied
// to one tile of float32 angles. Each strategy reduces the angle into a small
// range and evaluates a polynomial, using only scratch buffers allocated when
// the strategy is created.
package strategy

import (
	"fmt"
	"strings"
)

// Kind selects a compute strategy.
type Kind uint8

const (
	// Reference reduces by 2π and sums a 7-term Taylor series.
	Reference Kind = iota + 1
	// HighPerformance uses a split-π reduction and one odd polynomial.
	HighPerformance
	// HighPrecision uses a two-stage quadrant reduction with sine and cosine
	// polynomials.
	HighPrecision
)

// Kinds lists every strategy.
var Kinds = []Kind{Reference, HighPerformance, HighPrecision}

func (k Kind) String() string {
	switch k {
	case Reference:
		return "reference"
	case HighPerformance:
		return "high-performance"
	case HighPrecision:
		return "high-precision"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind accepts the names printed by String plus a few short forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference", "ref", "taylor":
		return Reference, nil
	case "high-performance", "highperf", "perf", "hp":
		return HighPerformance, nil
	case "high-precision", "highprec", "prec", "precise":
		return HighPrecision, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}

// MarshalText encodes k by name and rejects unknown kinds.
func (k Kind) MarshalText() ([]byte, error) {
	if k < Reference || k > HighPrecision {
		return nil, fmt.Errorf("cannot marshal strategy %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts any name ParseKind does.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Strategy computes cosine over one tile.
//
// Compute writes cos(src[i]) into dst[i] for every i < len(src). Both slices
// must have the same length, no larger than the tile length the strategy was
// created with. src may be overwritten; dst and src must not alias.
type Strategy interface {
	Kind() Kind
	TileElems() int
	Compute(dst, src []float32)
}

// New allocates a strategy of kind k for tiles of up to tileElems elements.
func New(k Kind, tileElems int) (Strategy, error) {
	if tileElems <= 0 {
		return nil, fmt.Errorf("tile length must be positive, got %d", tileElems)
	}
	switch k {
	case Reference:
		return newReference(tileElems), nil
	case HighPerformance:
		return newHighPerf(tileElems), nil
	case HighPrecision:
		return newHighPrec(tileElems), nil
	default:
		return nil, fmt.Errorf("unknown strategy %d", uint8(k))
	}
}

// newBuffers carves n tile-sized working buffers out of one allocation.
func newBuffers(tile, n int) [][]float32 {
	backing := make([]float32, tile*n)
	bufs := make([][]float32, n)
	for i := range bufs {
		bufs[i] = backing[i*tile : (i+1)*tile : (i+1)*tile]
	}
	return bufs
}

func checkTile(dst, src []float32, tile int) int {
	n := len(src)
	if len(dst) != n {
		panic(fmt.Sprintf("strategy: dst length %d != src length %d", len(dst), n))
	}
	if n > tile {
		panic(fmt.Sprintf("strategy: tile of %d exceeds capacity %d", n, tile))
	}
	return n
}
