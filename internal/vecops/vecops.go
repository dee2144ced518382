// Package vecops holds the elementwise float32 primitives the compute
// strategies are built from. Every function writes len(dst) results and
// tolerates dst aliasing any of its inputs.
package vecops

import "math"

// Muls computes dst[i] = a[i] * s.
func Muls(dst, a []float32, s float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] * s
	}
}

// Adds computes dst[i] = a[i] + s.
func Adds(dst, a []float32, s float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + s
	}
}

// Mul computes dst[i] = a[i] * b[i].
func Mul(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// Add computes dst[i] = a[i] + b[i].
func Add(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Sub computes dst[i] = a[i] - b[i].
func Sub(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// SubMuls computes dst[i] = a[i] - k[i]*s with the product rounded to float32
// before the subtraction, matching a separate multiply then subtract.
func SubMuls(dst, a, k []float32, s float32) {
	a, k = a[:len(dst)], k[:len(dst)]
	for i := range dst {
		dst[i] = a[i] - float32(k[i]*s)
	}
}

// MulAdds computes dst[i] = a[i]*b[i] + s, one Horner step.
func MulAdds(dst, a, b []float32, s float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = float32(a[i]*b[i]) + s
	}
}

// Mins computes dst[i] = min(a[i], s).
func Mins(dst, a []float32, s float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = min(a[i], s)
	}
}

// Maxs computes dst[i] = max(a[i], s).
func Maxs(dst, a []float32, s float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = max(a[i], s)
	}
}

// RoundEven rounds to the nearest integer, ties to even.
func RoundEven(dst, a []float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = float32(math.RoundToEven(float64(a[i])))
	}
}

// RoundHalfAway rounds to the nearest integer, ties away from zero.
func RoundHalfAway(dst, a []float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = float32(math.Round(float64(a[i])))
	}
}

// Floor rounds toward negative infinity.
func Floor(dst, a []float32) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = float32(math.Floor(float64(a[i])))
	}
}
