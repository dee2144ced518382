package strategy

import (
	"math"
	"testing"
)

// sampleErrors runs strategy k over n evenly spaced float32 angles in
// [lo, hi] and returns the max and mean absolute error against math.Cos.
func sampleErrors(t *testing.T, k Kind, lo, hi float64, n int) (maxErr, meanErr float64) {
	t.Helper()
	const tile = 1024
	s, err := New(k, tile)
	if err != nil {
		t.Fatalf("New(%v): %v", k, err)
	}
	src := make([]float32, tile)
	dst := make([]float32, tile)
	var sum float64
	for base := 0; base < n; base += tile {
		count := min(tile, n-base)
		xs := make([]float32, count)
		for i := range count {
			xs[i] = float32(lo + (hi-lo)*float64(base+i)/float64(n-1))
		}
		copy(src, xs)
		s.Compute(dst[:count], src[:count])
		for i, x := range xs {
			e := math.Abs(float64(dst[i]) - math.Cos(float64(x)))
			maxErr = max(maxErr, e)
			sum += e
		}
	}
	return maxErr, sum / float64(n)
}

func TestAccuracyBounds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind   Kind
		lo, hi float64
		bound  float64
	}{
		{Reference, -10, 10, 1e-5},
		{Reference, -1000, 1000, 1e-4},
		{HighPerformance, -10, 10, 4e-7},
		{HighPerformance, -1000, 1000, 4e-7},
		{HighPerformance, -1e5, 1e5, 4e-7},
		{HighPrecision, -10, 10, 2e-7},
		{HighPrecision, -1000, 1000, 2e-7},
		{HighPrecision, -1e5, 1e5, 2e-7},
	}
	for _, tt := range tests {
		maxErr, _ := sampleErrors(t, tt.kind, tt.lo, tt.hi, 20001)
		if maxErr > tt.bound {
			t.Fatalf("%v on [%g, %g]: max error %g exceeds %g", tt.kind, tt.lo, tt.hi, maxErr, tt.bound)
		}
	}
}

func TestAccuracyOrdering(t *testing.T) {
	t.Parallel()
	type result struct{ max, mean float64 }
	got := make(map[Kind]result)
	for _, k := range Kinds {
		m, avg := sampleErrors(t, k, -1000, 1000, 40001)
		got[k] = result{m, avg}
	}
	ref, perf, prec := got[Reference], got[HighPerformance], got[HighPrecision]
	if !(ref.max > perf.max && perf.max > prec.max) {
		t.Fatalf("max error ordering broken: ref=%g perf=%g prec=%g", ref.max, perf.max, prec.max)
	}
	if !(ref.mean > perf.mean && perf.mean > prec.mean) {
		t.Fatalf("mean error ordering broken: ref=%g perf=%g prec=%g", ref.mean, perf.mean, prec.mean)
	}
}

func TestHighPerformanceBounded(t *testing.T) {
	t.Parallel()
	src := make([]float32, 0, 6000)
	// Multiples of π are where the odd polynomial is evaluated at ±π/2 and
	// can exceed one before clamping.
	for k := -1000; k < 1000; k++ {
		c := float32(float64(k) * math.Pi)
		src = append(src, c, math.Nextafter32(c, 1e9), math.Nextafter32(c, -1e9))
	}
	s, err := New(HighPerformance, len(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dst := make([]float32, len(src))
	in := append([]float32(nil), src...)
	s.Compute(dst, in)
	for i, v := range dst {
		if v > 1 || v < -1 {
			t.Fatalf("cos(%v)=%v outside [-1, 1]", src[i], v)
		}
	}
}

func TestHighPerformancePolynomialOvershoots(t *testing.T) {
	t.Parallel()
	halfPi := float32(math.Pi / 2)
	r := []float32{halfPi, -halfPi}
	r2 := []float32{halfPi * halfPi, halfPi * halfPi}
	got := make([]float32, len(r))
	perfSin(got, make([]float32, len(r)), r, r2)
	if !(got[0] > 1) || !(got[1] < -1) {
		t.Fatalf("unclamped polynomial at ±π/2 = %v, want outside [-1, 1]", got)
	}

	// -3135.3096 (about -998π) reduces to r = 1.5706943, where the
	// polynomial also exceeds one.
	const x float32 = -3135.3095703125
	r[0] = 1.5706943
	r2[0] = r[0] * r[0]
	perfSin(got[:1], make([]float32, 1), r[:1], r2[:1])
	if !(got[0] > 1) {
		t.Fatalf("unclamped polynomial at %v = %v, want > 1", r[0], got[0])
	}
	s, err := New(HighPerformance, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dst := make([]float32, 1)
	s.Compute(dst, []float32{x})
	if dst[0] != 1 {
		t.Fatalf("cos(%v)=%v, want the clamped 1", x, dst[0])
	}
}

func TestKnownValues(t *testing.T) {
	t.Parallel()
	xs := []float32{0, math.Pi / 3, math.Pi / 2, math.Pi, -math.Pi, 2 * math.Pi, 10, -123.456}
	for _, k := range Kinds {
		s, err := New(k, len(xs))
		if err != nil {
			t.Fatalf("New(%v): %v", k, err)
		}
		src := append([]float32(nil), xs...)
		dst := make([]float32, len(xs))
		s.Compute(dst, src)
		for i, x := range xs {
			want := math.Cos(float64(x))
			if d := math.Abs(float64(dst[i]) - want); d > 1e-5 {
				t.Fatalf("%v cos(%v)=%v want %v", k, x, dst[i], want)
			}
		}
	}
}

func TestPartialTile(t *testing.T) {
	t.Parallel()
	for _, k := range Kinds {
		s, err := New(k, 64)
		if err != nil {
			t.Fatalf("New(%v): %v", k, err)
		}
		if s.Kind() != k || s.TileElems() != 64 {
			t.Fatalf("unexpected identity %v/%d", s.Kind(), s.TileElems())
		}
		dst := []float32{9, 9, 9, 9}
		s.Compute(dst[:3], []float32{0, 0, 0})
		if dst[0] != 1 || dst[1] != 1 || dst[2] != 1 || dst[3] != 9 {
			t.Fatalf("%v wrote outside tile or wrong value: %v", k, dst)
		}
	}
}

func TestOversizedTilePanics(t *testing.T) {
	t.Parallel()
	s, err := New(HighPrecision, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for oversized tile")
		}
	}()
	s.Compute(make([]float32, 5), make([]float32, 5))
}

func TestNonFiniteInputsDoNotPanic(t *testing.T) {
	t.Parallel()
	xs := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), math.MaxFloat32}
	for _, k := range Kinds {
		s, err := New(k, len(xs))
		if err != nil {
			t.Fatalf("New(%v): %v", k, err)
		}
		dst := make([]float32, len(xs))
		s.Compute(dst, append([]float32(nil), xs...))
		if !math.IsNaN(float64(dst[0])) {
			t.Fatalf("%v cos(NaN)=%v, want NaN", k, dst[0])
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(HighPrecision, 0); err == nil {
		t.Fatalf("expected error for zero tile")
	}
	if _, err := New(Kind(42), 8); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q)=%v,%v", k.String(), got, err)
		}
	}
	if got, _ := ParseKind("perf"); got != HighPerformance {
		t.Fatalf("short form not accepted")
	}
	if _, err := ParseKind("chebyshev"); err == nil {
		t.Fatalf("expected error")
	}
	var k Kind
	if err := k.UnmarshalText([]byte("taylor")); err != nil || k != Reference {
		t.Fatalf("UnmarshalText: %v %v", k, err)
	}
	if _, err := Kind(0).MarshalText(); err == nil {
		t.Fatalf("expected marshal error for zero kind")
	}
}

func BenchmarkStrategies(b *testing.B) {
	const tile = 8192
	src := make([]float32, tile)
	for i := range src {
		src[i] = float32(i%2000) - 1000 + 0.25
	}
	work := make([]float32, tile)
	dst := make([]float32, tile)
	for _, k := range Kinds {
		b.Run(k.String(), func(b *testing.B) {
			s, err := New(k, tile)
			if err != nil {
				b.Fatalf("New: %v", err)
			}
			b.SetBytes(tile * 4)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				copy(work, src)
				s.Compute(dst, work)
			}
		})
	}
}
