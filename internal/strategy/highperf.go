package strategy

import "github.com/samcharles93/cosine/internal/vecops"

const (
	invPi     float32 = 0.3183098733425140380859375
	coarseMod float32 = 2048
)

var (
	// piSplit sums to π; pi_0 has few enough bits that k*pi_0 is exact for
	// the quotients a float32 angle can produce.
	piSplit = SplitConst{3.14160156, -8.9071691e-06, -1.74122761e-09, 1.24467439e-13}
	// halfPiSplit sums to π/2.
	halfPiSplit = SplitConst{1.57079637050628662109375, -0.00000004371139000189375}
)

// Odd polynomial for sin(r) on [-π/2, π/2], highest coefficient first.
var perfSinPoly = [...]float32{2.604926501e-6, -0.0001980894471, 0.008333049340, -0.1666665792}

type highPerf struct {
	tile int
	t    [4][]float32
}

func newHighPerf(tile int) *highPerf {
	b := newBuffers(tile, 4)
	return &highPerf{tile: tile, t: [4][]float32{b[0], b[1], b[2], b[3]}}
}

func (s *highPerf) Kind() Kind     { return HighPerformance }
func (s *highPerf) TileElems() int { return s.tile }

// Compute evaluates cos(x) as ±sin(x - kπ + π/2) with k = round(x/π + 1/2).
func (s *highPerf) Compute(dst, src []float32) {
	n := checkTile(dst, src, s.tile)
	q, k, kLo, r2 := s.t[0][:n], s.t[1][:n], s.t[2][:n], s.t[3][:n]

	vecops.Muls(q, src, invPi)
	vecops.Adds(k, q, 0.5)
	vecops.RoundHalfAway(k, k)

	// k = kHi + kLo with kHi a multiple of 2048, keeping each product with the
	// leading π term exact.
	kHi := q
	vecops.Muls(kHi, q, 1/coarseMod)
	vecops.RoundHalfAway(kHi, kHi)
	vecops.Muls(kHi, kHi, coarseMod)
	vecops.Sub(kLo, k, kHi)

	r := dst
	vecops.SubMuls(r, src, kHi, piSplit[0])
	piSplit.SubTerm(r, kLo, 0)
	piSplit.SubTerm(r, kHi, 1)
	// The leading half of the π/2 shift goes in before the small terms.
	vecops.Adds(r, r, halfPiSplit[0])
	piSplit.SubTerm(r, kLo, 1)
	for i := 2; i < len(piSplit); i++ {
		piSplit.SubTerm(r, kHi, i)
		piSplit.SubTerm(r, kLo, i)
	}
	vecops.Adds(r, r, halfPiSplit[1])

	vecops.Mul(r2, r, r)

	// sign = 4*floor(k/2) - 2k + 1: +1 for even k, -1 for odd k.
	sign := q
	vecops.Muls(sign, k, 0.5)
	vecops.Floor(sign, sign)
	vecops.Muls(sign, sign, 4)
	vecops.Muls(k, k, -2)
	vecops.Add(sign, sign, k)
	vecops.Adds(sign, sign, 1)

	perfSin(dst, kLo, r, r2)
	vecops.Mul(dst, dst, sign)
	// The polynomial overshoots 1 slightly near r = ±π/2.
	vecops.Mins(dst, dst, 1)
	vecops.Maxs(dst, dst, -1)
}

// perfSin writes the unclamped odd polynomial r*P(r²) to dst, using poly as
// scratch. dst may alias r.
func perfSin(dst, poly, r, r2 []float32) {
	vecops.Muls(poly, r2, perfSinPoly[0])
	vecops.Adds(poly, poly, perfSinPoly[1])
	for _, c := range perfSinPoly[2:] {
		vecops.MulAdds(poly, poly, r2, c)
	}
	vecops.MulAdds(poly, poly, r2, 1)
	vecops.Mul(dst, poly, r)
}
