package strategy

import "github.com/samcharles93/cosine/internal/vecops"

const invHalfPi float32 = 0.63661975

var (
	// coarseHalfPi sums to π/2 and is applied to x/2048.
	coarseHalfPi = SplitConst{1.5708008, -0.0000044535846, -8.706138e-10}
	// fineHalfPi sums to π/2 and is applied to the full angle. Each term is
	// three to four decimal orders below the previous one.
	fineHalfPi = SplitConst{
		1.5703125,
		0.0004837513,
		0.000000075495336,
		2.5579538e-12,
		5.389786e-15,
		5.166901e-19,
		3.281839e-22,
	}
)

// Polynomials on [-π/4, π/4] in r², highest coefficient first. The sine
// polynomial is multiplied by r afterwards.
var (
	precSinPoly = [...]float32{
		0.0000027183114939898219064,
		-0.000198393348360966317347,
		0.0083333293858894631756,
		-0.166666666416265235595,
	}
	precCosPoly = [...]float32{
		0.0000243904487962774090654,
		-0.00138867637746099294692,
		0.0416666233237390631894,
		-0.499999997251031003120,
	}
)

type highPrec struct {
	tile int
	t    [4][]float32
}

func newHighPrec(tile int) *highPrec {
	b := newBuffers(tile, 4)
	return &highPrec{tile: tile, t: [4][]float32{b[0], b[1], b[2], b[3]}}
}

func (s *highPrec) Kind() Kind     { return HighPrecision }
func (s *highPrec) TileElems() int { return s.tile }

// Compute reduces x to r = x - N·π/2 with N = n0 + n1 + n2, where n0 and n1
// are multiples of 2048 found on x/2048 and n2 is the remaining quadrant
// count, then picks ±sin(r) or ±cos(r) from n2 mod 4.
func (s *highPrec) Compute(dst, src []float32) {
	n := checkTile(dst, src, s.tile)
	t1, t2, t3, t4 := s.t[0][:n], s.t[1][:n], s.t[2][:n], s.t[3][:n]

	// Stage one works on x/2048 so the quadrant counts stay exact.
	scaled, quad := t1, t2
	vecops.Muls(scaled, src, 1/coarseMod)
	vecops.Muls(quad, scaled, invHalfPi)
	n1 := t3
	vecops.RoundEven(n1, quad)
	n0 := quad
	vecops.Muls(n0, quad, 1/coarseMod)
	vecops.RoundEven(n0, n0)
	vecops.Muls(n0, n0, coarseMod)
	vecops.Sub(n1, n1, n0)

	coarse := scaled
	vecops.SubMuls(coarse, scaled, n0, coarseHalfPi[0])
	coarseHalfPi.SubTerm(coarse, n1, 0)
	coarseHalfPi.SubTerm(coarse, n0, 1)
	coarseHalfPi.SubTerm(coarse, n1, 1)
	coarseHalfPi.SubTerm(coarse, n0, 2)

	// Stage two: quadrant count of what is left at full scale.
	n2 := t4
	vecops.Muls(coarse, coarse, coarseMod)
	vecops.Muls(coarse, coarse, invHalfPi)
	vecops.RoundEven(n2, coarse)

	vecops.Muls(n0, n0, coarseMod)
	vecops.Muls(n1, n1, coarseMod)
	r := dst
	copy(r, src)
	fineHalfPi.SubtractInterleaved(r, [][]float32{n0, n2, n1}, []int{0, 1, 0})

	r2 := t1
	vecops.Mul(r2, r, r)

	sinR := t2
	vecops.Muls(sinR, r2, precSinPoly[0])
	vecops.Adds(sinR, sinR, precSinPoly[1])
	for _, c := range precSinPoly[2:] {
		vecops.MulAdds(sinR, r2, sinR, c)
	}
	vecops.MulAdds(sinR, r2, sinR, 1)
	vecops.Mul(sinR, r, sinR)

	cosR := t3
	vecops.Muls(cosR, r2, precCosPoly[0])
	vecops.Adds(cosR, cosR, precCosPoly[1])
	for _, c := range precCosPoly[2:] {
		vecops.MulAdds(cosR, r2, cosR, c)
	}
	vecops.MulAdds(cosR, r2, cosR, 1)

	// With m = n2+1: useCos = m - 2*floor(m/2) and
	// sign = 4*floor(m/4) - 2*floor(m/2) + 1.
	m := t4
	vecops.Adds(m, n2, 1)
	half := src
	vecops.Muls(half, m, 0.5)
	vecops.Floor(half, half)
	vecops.Muls(half, half, -2)
	sign := t1
	vecops.Muls(sign, m, 0.25)
	vecops.Floor(sign, sign)
	vecops.Muls(sign, sign, 4)
	vecops.Add(sign, sign, half)
	vecops.Adds(sign, sign, 1)

	useCos := m
	vecops.Add(useCos, m, half)
	vecops.Mul(dst, cosR, useCos)
	useSin := useCos
	vecops.Muls(useSin, useCos, -1)
	vecops.Adds(useSin, useSin, 1)
	vecops.Mul(sinR, sinR, useSin)
	vecops.Add(dst, sinR, dst)
	vecops.Mul(dst, dst, sign)
}
