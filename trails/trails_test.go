package trails

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"linc/present"
)

func TestLAT(t *testing.T) {
	lat := LAT(present.SboxTable)
	require.Equal(t, 8, lat[0][0])
	for a := 1; a < 16; a++ {
		require.Zerof(t, lat[a][0], "row %d", a)
		require.Zerof(t, lat[0][a], "column %d", a)
	}
	// PRESENT's best approximations have bias 4 (correlation 1/2).
	for a := 1; a < 16; a++ {
		for b := 1; b < 16; b++ {
			require.LessOrEqual(t, lat[a][b], 4)
			require.GreaterOrEqual(t, lat[a][b], -4)
		}
	}
}

func TestLATAgainstCounting(t *testing.T) {
	lat := LAT(present.SboxTable)
	parity := func(v uint8) int {
		n := 0
		for ; v != 0; v &= v - 1 {
			n++
		}
		return n & 1
	}
	for a := uint8(0); a < 16; a++ {
		for b := uint8(0); b < 16; b++ {
			agree := 0
			for x := uint8(0); x < 16; x++ {
				if parity(a&x) == parity(b&present.SboxTable[x]) {
					agree++
				}
			}
			require.Equalf(t, agree-8, lat[a][b], "LAT[%x][%x]", a, b)
		}
	}
}

func TestOneBitApproximations(t *testing.T) {
	got := OneBitApproximations(LAT(present.SboxTable))
	want := []Approximation{
		{In: 2, Out: 2, Bias: 2},
		{In: 2, Out: 4, Bias: -2},
		{In: 2, Out: 8, Bias: 2},
		{In: 4, Out: 2, Bias: -2},
		{In: 4, Out: 4, Bias: -2},
		{In: 4, Out: 8, Bias: -2},
		{In: 8, Out: 2, Bias: 2},
		{In: 8, Out: 8, Bias: -2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("approximations mismatch (-want +got):\n%s", diff)
	}
	require.InDelta(t, 0.25, got[0].Correlation(), 1e-12)
}

func TestGraph(t *testing.T) {
	g := Graph()
	r, c := g.Dims()
	require.Equal(t, StateBits, r)
	require.Equal(t, StateBits, c)

	// Bit 0 is the low bit of its nibble, which has no biased one-bit
	// approximation.
	require.Zero(t, mat.Sum(g.RowView(0)))
	require.Equal(t, 3.0, mat.Sum(g.RowView(1)))
	require.Equal(t, 2.0, mat.Sum(g.RowView(3)))
}

func TestCountMatchesGraph(t *testing.T) {
	g := Graph()
	m := mat.DenseCopyOf(g)
	for r := 1; r < len(KnownCounts); r++ {
		require.Equalf(t, KnownCounts[r], mat.Max(m), "rounds %d", r)
		var next mat.Dense
		next.Mul(m, g)
		m = &next
	}
}

func TestCountBetween(t *testing.T) {
	require.Equal(t, 1.0, CountBetween(21, 21, 0))
	require.Equal(t, 0.0, CountBetween(21, 22, 0))
	require.Equal(t, 3.0, CountBetween(21, 21, 4))
	require.Equal(t, 192.0, CountBetween(21, 21, 8))
	require.Equal(t, 0.0, CountBetween(0, 0, 3))
}

func TestCount(t *testing.T) {
	require.Equal(t, 1.0, Count(0))
	require.Equal(t, 27.0, Count(6))
	require.Equal(t, mat.Max(Matrix(40)), Count(40))
}
