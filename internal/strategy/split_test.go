package strategy

import (
	"math"
	"testing"
)

func splitSum(c SplitConst) float64 {
	var s float64
	for _, t := range c {
		s += float64(t)
	}
	return s
}

func TestSplitConstValues(t *testing.T) {
	tests := []struct {
		name string
		c    SplitConst
		want float64
	}{
		{"pi", piSplit, math.Pi},
		{"half-pi", halfPiSplit, math.Pi / 2},
		{"coarse-half-pi", coarseHalfPi, math.Pi / 2},
		{"fine-half-pi", fineHalfPi, math.Pi / 2},
	}
	for _, tt := range tests {
		single := math.Abs(float64(float32(tt.want)) - tt.want)
		got := math.Abs(splitSum(tt.c) - tt.want)
		if got > 1e-12 {
			t.Fatalf("%s: split error %g too large", tt.name, got)
		}
		if got >= single {
			t.Fatalf("%s: split error %g not better than float32 error %g", tt.name, got, single)
		}
		for i := 1; i < len(tt.c); i++ {
			if math.Abs(float64(tt.c[i])) >= math.Abs(float64(tt.c[i-1])) {
				t.Fatalf("%s: term %d does not shrink", tt.name, i)
			}
		}
	}
}

func TestSplitConstLeadingProductsExact(t *testing.T) {
	// Products of the leading π term with quotients below 2^11 must be exact
	// in float32 for the first subtraction to cancel cleanly.
	for k := 1; k < 2048; k++ {
		p := float32(k) * piSplit[0]
		if float64(p) != float64(k)*float64(piSplit[0]) {
			t.Fatalf("k=%d: %v*%v not exact", k, k, piSplit[0])
		}
	}
}

func TestSubtractInterleavedBeatsSingleFloat(t *testing.T) {
	xs := []float32{100, 1000, 5000, 12345.678}
	k := make([]float32, len(xs))
	for i, x := range xs {
		k[i] = float32(math.Round(float64(x) / math.Pi))
	}
	split := append([]float32(nil), xs...)
	piSplit.SubtractInterleaved(split, [][]float32{k}, []int{0})

	for i, x := range xs {
		exact := float64(x) - float64(k[i])*math.Pi
		naive := x - k[i]*float32(math.Pi)
		splitErr := math.Abs(float64(split[i]) - exact)
		naiveErr := math.Abs(float64(naive) - exact)
		if splitErr > 1e-6 {
			t.Fatalf("x=%v: split residual error %g", x, splitErr)
		}
		if splitErr > naiveErr {
			t.Fatalf("x=%v: split error %g worse than naive %g", x, splitErr, naiveErr)
		}
	}
}

func TestSubtractInterleavedOrder(t *testing.T) {
	// Terms 1, 2, 4 and multipliers chosen so the final value records the
	// order in which products were removed only through their total.
	c := SplitConst{4, 2, 1}
	a := []float32{1}
	b := []float32{10}
	dst := []float32{1000}
	c.SubtractInterleaved(dst, [][]float32{a, b}, []int{0, 1})
	want := float32(1000 - (4+2+1)*1 - (4+2+1)*10)
	if dst[0] != want {
		t.Fatalf("got %v want %v", dst[0], want)
	}
}
