package strategy

import "github.com/samcharles93/cosine/internal/vecops"

// SplitConst is a constant carried as a sum of float32 terms of decreasing
// magnitude, so that k*c can be subtracted with more precision than a single
// float32 allows. Terms are chosen so that small integer multiples of the
// leading terms are exact in float32.
type SplitConst []float32

// SubTerm subtracts k*c[i] from dst in place.
func (c SplitConst) SubTerm(dst, k []float32, i int) {
	vecops.SubMuls(dst, dst, k, c[i])
}

// SubtractInterleaved subtracts every ks[j]*c from dst as a wavefront: step d
// applies term d-lags[j] of each multiplier in order. Multipliers of larger
// magnitude get smaller lags so the products are removed roughly from the
// largest to the smallest.
func (c SplitConst) SubtractInterleaved(dst []float32, ks [][]float32, lags []int) {
	maxLag := 0
	for _, l := range lags {
		maxLag = max(maxLag, l)
	}
	for d := 0; d < len(c)+maxLag; d++ {
		for j, k := range ks {
			if i := d - lags[j]; i >= 0 && i < len(c) {
				c.SubTerm(dst, k, i)
			}
		}
	}
}
