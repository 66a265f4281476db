package bitslice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomMatrix(r *rand.Rand) [64]uint64 {
	var m [64]uint64
	for i := range m {
		m[i] = r.Uint64()
	}
	return m
}

func TestTransposeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		m := randomMatrix(r)
		var once, twice [64]uint64
		Transpose(once[:], m[:], 64, 64)
		Transpose(twice[:], once[:], 64, 64)
		require.Equal(t, m, twice, "trial %d", trial)
	}
}

func TestTransposeDefinition(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	m := randomMatrix(r)
	var out [64]uint64
	Transpose(out[:], m[:], 64, 64)
	for j := 0; j < 64; j++ {
		for i := 0; i < 64; i++ {
			want := (m[i] >> uint(j)) & 1
			got := (out[j] >> uint(i)) & 1
			if got != want {
				t.Fatalf("out[%d] bit %d = %d, want %d", j, i, got, want)
			}
		}
	}
}

func TestTransposeNarrow(t *testing.T) {
	// 8 words of input, 4 output lanes: only the low nibble of each input matters.
	src := []uint64{0x1, 0x2, 0x4, 0x8, 0xF, 0x0, 0x3, 0xC}
	dst := make([]uint64, 4)
	Transpose(dst, src, 4, 8)
	require.Equal(t, []uint64{0x51, 0x52, 0x94, 0x98}, dst)
}

func TestTransposeRejectsWidths(t *testing.T) {
	src := make([]uint64, 65)
	dst := make([]uint64, 65)
	require.Panics(t, func() { Transpose(dst, src, 64, 65) })
	require.Panics(t, func() { Transpose(dst, src, 65, 64) })
	require.Panics(t, func() { Transpose(dst, src, 0, 64) })
	require.Panics(t, func() { Transpose(dst, src, 64, 0) })
	require.Panics(t, func() { Transpose(dst[:3], src, 4, 8) })
	require.NotPanics(t, func() { Transpose(dst, src, 1, 64) })
}

func TestTranspose64MatchesTranspose(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		m := randomMatrix(r)
		var want [64]uint64
		Transpose(want[:], m[:], 64, 64)
		got := m
		Transpose64(&got)
		require.Equal(t, want, got)
		Transpose64(&got)
		require.Equal(t, m, got)
	}
}

func TestMirror64(t *testing.T) {
	require.Equal(t, uint64(0), Mirror64(0))
	require.Equal(t, uint64(0x8000000000000000), Mirror64(1))
	require.Equal(t, uint64(1), Mirror64(0x8000000000000000))
	require.Equal(t, uint64(0xF000000000000000), Mirror64(0xF))

	r := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		x := r.Uint64()
		if Mirror64(Mirror64(x)) != x {
			t.Fatalf("Mirror64 not an involution for %#x", x)
		}
	}
}

func TestBroadcastCollect(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	lanes := make([]uint64, Lanes)
	for i := 0; i < 100; i++ {
		w := r.Uint64()
		Broadcast(lanes, w)
		for j, l := range lanes {
			if l != 0 && l != ^uint64(0) {
				t.Fatalf("lane %d = %#x, want all zeros or all ones", j, l)
			}
		}
		require.Equal(t, w, Collect(lanes))
	}
}

func TestLoadStore(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	words := randomMatrix(r)

	var lanes, back [64]uint64
	Load(&lanes, &words)

	// lane i holds state bit 63-i of every instance
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			want := (words[j] >> uint(63-i)) & 1
			got := (lanes[i] >> uint(j)) & 1
			if got != want {
				t.Fatalf("lane %d instance %d = %d, want %d", i, j, got, want)
			}
		}
	}

	Store(&back, &lanes)
	require.Equal(t, words, back)
}
