// Package trails counts single-bit linear trails through PRESENT.
//
// A single-bit mask can only move through an S-box along one of the
// approximations whose input and output masks both have weight one. Chaining
// those approximations through the permutation layer yields a 64x64 graph
// over state bits; powers of its adjacency matrix count the trails that
// contribute to the correlation of a mask after r rounds.
package trails

import (
	"math/bits"

	"gonum.org/v1/gonum/mat"

	"linc/present"
)

// StateBits is the width of the PRESENT state.
const StateBits = 64

// LAT returns the linear approximation table of a 4-bit S-box:
// LAT[a][b] = #{x : a.x == b.S(x)} - 8.
func LAT(sbox [16]uint8) [16][16]int {
	var lat [16][16]int
	for b := 0; b < 16; b++ {
		var f [16]int
		for x := 0; x < 16; x++ {
			if bits.OnesCount8(uint8(b)&sbox[x])%2 == 0 {
				f[x] = 1
			} else {
				f[x] = -1
			}
		}
		walsh(&f)
		for a := 0; a < 16; a++ {
			lat[a][b] = f[a] / 2
		}
	}
	return lat
}

// walsh is the in-place fast Walsh-Hadamard transform.
func walsh(f *[16]int) {
	for h := 1; h < 16; h <<= 1 {
		for i := 0; i < 16; i += h << 1 {
			for j := i; j < i+h; j++ {
				x, y := f[j], f[j+h]
				f[j], f[j+h] = x+y, x-y
			}
		}
	}
}

// Approximation is an S-box approximation with single-bit masks.
type Approximation struct {
	In, Out uint8
	Bias    int
}

// Correlation returns the correlation of the approximation over the S-box.
func (a Approximation) Correlation() float64 {
	return float64(a.Bias) / 8
}

// OneBitApproximations lists the approximations of lat whose input and output
// masks both have weight one and whose bias is nonzero, ordered by input
// then output mask.
func OneBitApproximations(lat [16][16]int) []Approximation {
	var out []Approximation
	for _, a := range []uint8{1, 2, 4, 8} {
		for _, b := range []uint8{1, 2, 4, 8} {
			if lat[a][b] != 0 {
				out = append(out, Approximation{In: a, Out: b, Bias: lat[a][b]})
			}
		}
	}
	return out
}

// Graph returns the adjacency matrix of one-round single-bit trails:
// entry (i, j) is 1 when state bit i can reach state bit j through the
// S-box layer and the permutation.
func Graph() *mat.Dense {
	approx := OneBitApproximations(LAT(present.SboxTable))
	g := mat.NewDense(StateBits, StateBits, nil)
	for i := 0; i < StateBits; i++ {
		for _, a := range approx {
			if a.In != 1<<uint(i%4) {
				continue
			}
			out := bits.TrailingZeros8(a.Out) + (i/4)*4
			g.Set(i, present.PermuteIndex(out), 1)
		}
	}
	return g
}

// Matrix returns Graph raised to the given number of rounds.
func Matrix(rounds int) *mat.Dense {
	var m mat.Dense
	m.Pow(Graph(), rounds)
	return &m
}

// CountBetween counts the single-bit trails from input bit in to output bit
// out over the given number of rounds.
func CountBetween(in, out, rounds int) float64 {
	return Matrix(rounds).At(in, out)
}

// Count returns the largest number of single-bit trails between any pair of
// state bits over the given number of rounds. Known values are taken from
// KnownCounts.
func Count(rounds int) float64 {
	if rounds >= 0 && rounds < len(KnownCounts) {
		return KnownCounts[rounds]
	}
	return mat.Max(Matrix(rounds))
}

// KnownCounts[r] is the maximum single-bit trail count after r rounds.
var KnownCounts = [...]float64{
	1,
	1, 1, 1, 3, 9, 27, 72, 192, 512, 1344,
	3528, 9261, 24255, 63525, 166375, 435600, 1140480, 2985984, 7817472, 20466576,
	53582633, 140281323, 367261713, 961504803, 2517252696, 6590254272, 17253512704, 45170283840, 118257341400, 309601747125,
	810547899975,
}
