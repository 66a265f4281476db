// Package bitslice converts between ordinary 64-bit words and the bit-sliced
// lane representation used by the PRESENT engine.
//
// A Lane-State holds 64 cipher instances: lane i carries one bit position of
// every instance, bit j of lane i belonging to instance j. The engine processes
// the state in reverse significance order, so lane i holds state bit 63-i;
// Load and Store apply the mirroring on the way in and out.
package bitslice

import (
	"fmt"
	"math/bits"
)

// Lanes is the number of parallel instances and the number of lanes per state.
const Lanes = 64

// Transpose writes outWidth words to dst such that bit i of dst[j] equals bit j
// of src[i], for i < inWidth. Both widths must lie in 1..64 and fit their
// slices; Transpose panics otherwise.
func Transpose(dst, src []uint64, outWidth, inWidth int) {
	if outWidth < 1 || outWidth > Lanes || inWidth < 1 || inWidth > Lanes {
		panic(fmt.Sprintf("bitslice: transpose widths %dx%d outside 1..%d", outWidth, inWidth, Lanes))
	}
	_ = dst[outWidth-1]
	_ = src[inWidth-1]
	for j := 0; j < outWidth; j++ {
		var w uint64
		for i := 0; i < inWidth; i++ {
			w |= ((src[i] >> uint(j)) & 1) << uint(i)
		}
		dst[j] = w
	}
}

// Transpose64 is the square 64×64 case of Transpose, done in place with the
// recursive block swap. It is its own inverse.
func Transpose64(m *[64]uint64) {
	j := 32
	mask := uint64(0x00000000FFFFFFFF)
	for j != 0 {
		for k := 0; k < 64; k = (k + j + 1) &^ j {
			t := ((m[k] >> uint(j)) ^ m[k+j]) & mask
			m[k] ^= t << uint(j)
			m[k+j] ^= t
		}
		j >>= 1
		mask ^= mask << uint(j)
	}
}

// Mirror64 reverses the bit order of x.
func Mirror64(x uint64) uint64 {
	return bits.Reverse64(x)
}

// Broadcast sets lane i of dst to all ones when bit i of w is set and to zero
// otherwise, i.e. it replicates one value across all 64 instances.
func Broadcast(dst []uint64, w uint64) {
	_ = dst[Lanes-1]
	for i := 0; i < Lanes; i++ {
		dst[i] = -((w >> uint(i)) & 1)
	}
}

// Collect is the inverse of Broadcast for lane 0: it gathers bit 0 of every
// lane into one word.
func Collect(src []uint64) uint64 {
	_ = src[Lanes-1]
	var w uint64
	for i := 0; i < Lanes; i++ {
		w |= (src[i] & 1) << uint(i)
	}
	return w
}

// Load converts 64 natural words into a Lane-State.
func Load(dst *[64]uint64, words *[64]uint64) {
	for i, w := range words {
		dst[i] = Mirror64(w)
	}
	Transpose64(dst)
}

// Store converts a Lane-State back into 64 natural words.
func Store(dst *[64]uint64, lanes *[64]uint64) {
	*dst = *lanes
	Transpose64(dst)
	for i, w := range dst {
		dst[i] = Mirror64(w)
	}
}
