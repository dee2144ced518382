package pipeline

import (
	"math"
	"testing"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
	"github.com/samcharles93/cosine/internal/tiling"
)

func plan(t *testing.T, n int, dt dtype.DType, v platform.Variant, ub uint64, k strategy.Kind) *tiling.Plan {
	t.Helper()
	p, err := tiling.New(tiling.Request{
		Elements: n,
		DType:    dt,
		Target:   platform.Capabilities{Variant: v, Units: 4, FastMemoryBytes: ub},
		Strategy: k,
	})
	if err != nil {
		t.Fatalf("tiling.New: %v", err)
	}
	return p
}

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i)*0.37 - float32(n)*0.1
	}
	return out
}

func TestRunMatchesProcess(t *testing.T) {
	t.Parallel()
	const n = 10007
	src := ramp(n)
	p := plan(t, n, dtype.F32, platform.Standard, 1024, 0)
	if p.TileElems >= uint32(n)/uint32(p.Units) {
		t.Fatalf("test needs several tiles per unit, tile=%d", p.TileElems)
	}
	seq := make([]float32, n)
	ovl := make([]float32, n)
	for u := range p.Units {
		a, err := New[float32](p, u)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		b, err := New[float32](p, u)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		sa := a.Process(seq, src)
		sb := b.Run(ovl, src)
		if sa != sb {
			t.Fatalf("unit %d stats differ: %+v vs %+v", u, sa, sb)
		}
		if sa.Tiles != p.Tiles(u) {
			t.Fatalf("unit %d tiles=%d want %d", u, sa.Tiles, p.Tiles(u))
		}
	}
	for i := range seq {
		if seq[i] != ovl[i] {
			t.Fatalf("element %d: Process %v Run %v", i, seq[i], ovl[i])
		}
		if d := math.Abs(float64(ovl[i]) - math.Cos(float64(src[i]))); d > 2e-7 {
			t.Fatalf("element %d: cos(%v)=%v err %g", i, src[i], ovl[i], d)
		}
	}
}

func TestRunTouchesOnlyOwnRange(t *testing.T) {
	t.Parallel()
	const n = 777
	src := ramp(n)
	p := plan(t, n, dtype.F32, platform.Standard, 512, strategy.HighPerformance)
	for u := range p.Units {
		dst := make([]float32, n)
		for i := range dst {
			dst[i] = 42
		}
		pl, err := New[float32](p, u)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		st := pl.Run(dst, src)
		off, count := st.Offset, st.Elements
		for i, v := range dst {
			inside := i >= off && i < off+count
			if inside == (v == 42) {
				t.Fatalf("unit %d element %d: got %v (range [%d, %d))", u, i, v, off, off+count)
			}
		}
	}
}

func TestHalfPrecisionPaths(t *testing.T) {
	t.Parallel()
	const n = 3001
	xs := ramp(n)
	tests := []struct {
		name    string
		variant platform.Variant
		kind    strategy.Kind
		mode    dtype.RoundMode
	}{
		{"standard", platform.Standard, strategy.HighPrecision, dtype.RoundNearestEven},
		{"constrained", platform.Constrained, strategy.Reference, dtype.RoundTruncate},
	}
	for _, tt := range tests {
		src := make([]dtype.Float16, n)
		dtype.FromFloat32(src, xs, dtype.RoundNearestEven)

		// Cosine is elementwise, so a single strategy call over the widened
		// input gives the expected narrowed result.
		wide := make([]float32, n)
		dtype.ToFloat32(wide, src)
		ref, err := strategy.New(tt.kind, n)
		if err != nil {
			t.Fatalf("strategy.New: %v", err)
		}
		res := make([]float32, n)
		ref.Compute(res, wide)
		want := make([]dtype.Float16, n)
		dtype.FromFloat32(want, res, tt.mode)

		p := plan(t, n, dtype.F16, tt.variant, 2048, 0)
		if p.Strategy != tt.kind {
			t.Fatalf("%s: strategy %v", tt.name, p.Strategy)
		}
		dst := make([]dtype.Float16, n)
		for u := range p.Units {
			pl, err := New[dtype.Float16](p, u)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			pl.Run(dst, src)
		}
		for i := range dst {
			if dst[i] != want[i] {
				t.Fatalf("%s element %d: got %#04x want %#04x", tt.name, i, uint16(dst[i]), uint16(want[i]))
			}
		}
	}
}

func TestBFloat16(t *testing.T) {
	t.Parallel()
	const n = 513
	xs := ramp(n)
	src := make([]dtype.BFloat16, n)
	dtype.FromFloat32(src, xs, dtype.RoundNearestEven)
	p := plan(t, n, dtype.BF16, platform.Standard, 4096, 0)
	dst := make([]dtype.BFloat16, n)
	for u := range p.Units {
		pl, err := New[dtype.BFloat16](p, u)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		pl.Process(dst, src)
	}
	for i := range dst {
		want := math.Cos(float64(src[i].Float32()))
		if d := math.Abs(float64(dst[i].Float32()) - want); d > 4e-3 {
			t.Fatalf("element %d: got %v want %v", i, dst[i].Float32(), want)
		}
	}
}

func TestNewRejectsMismatch(t *testing.T) {
	t.Parallel()
	p := plan(t, 64, dtype.F32, platform.Standard, 4096, 0)
	if _, err := New[dtype.Float16](p, 0); err == nil {
		t.Fatalf("expected dtype mismatch error")
	}
	if _, err := New[float32](p, p.Units); err == nil {
		t.Fatalf("expected unit range error")
	}
}

func TestEmptyUnit(t *testing.T) {
	t.Parallel()
	p := plan(t, 0, dtype.F32, platform.Standard, 4096, 0)
	pl, err := New[float32](p, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s := pl.Run(nil, nil); s.Tiles != 0 || s.Elements != 0 {
		t.Fatalf("stats=%+v", s)
	}
}

func BenchmarkRun(b *testing.B) {
	const n = 1 << 16
	src := ramp(n)
	dst := make([]float32, n)
	p, err := tiling.New(tiling.Request{
		Elements: n,
		DType:    dtype.F32,
		Target:   platform.Capabilities{Variant: platform.Standard, Units: 1, FastMemoryBytes: 192 * 1024},
	})
	if err != nil {
		b.Fatalf("tiling.New: %v", err)
	}
	pl, err := New[float32](p, 0)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.SetBytes(n * 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pl.Run(dst, src)
	}
}
