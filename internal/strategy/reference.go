package strategy

import "github.com/samcharles93/cosine/internal/vecops"

const twoPi float32 = 2 * 3.14159265358979

// Taylor step factors: term_i = term_{i-1} * r² * -1/(i(i-1)).
var taylorSteps = [...]float32{
	-1.0 / (4 * 3),
	-1.0 / (6 * 5),
	-1.0 / (8 * 7),
	-1.0 / (10 * 9),
	-1.0 / (12 * 11),
	-1.0 / (14 * 13),
}

type reference struct {
	tile int
	k    []float32
	term []float32
}

func newReference(tile int) *reference {
	b := newBuffers(tile, 2)
	return &reference{tile: tile, k: b[0], term: b[1]}
}

func (s *reference) Kind() Kind     { return Reference }
func (s *reference) TileElems() int { return s.tile }

func (s *reference) Compute(dst, src []float32) {
	n := checkTile(dst, src, s.tile)
	k, term := s.k[:n], s.term[:n]

	// r = x - rint(x/2π)*2π lands in roughly [-π, π].
	vecops.Muls(k, src, 1/twoPi)
	vecops.RoundEven(k, k)
	vecops.Muls(term, k, twoPi)
	r := dst
	vecops.Sub(r, src, term)

	r2 := src
	vecops.Mul(r2, r, r)

	res := dst
	vecops.Muls(term, r2, -1.0/2)
	vecops.Adds(res, term, 1)
	for _, c := range taylorSteps {
		vecops.Mul(term, r2, term)
		vecops.Muls(term, term, c)
		vecops.Add(res, res, term)
	}
}
