package present

import "fmt"

// MasterKey is an 80-bit PRESENT key: High holds key bits 79..16 and Low
// bits 15..0.
type MasterKey struct {
	High uint64
	Low  uint16
}

func (k MasterKey) String() string {
	return fmt.Sprintf("%016x%04x", k.High, k.Low)
}

// KeySchedule expands an 80-bit key into rounds+1 round keys. Each round the
// register is rotated left by 61, its top nibble passes through the S-box and
// the round counter is added into bits 19..15.
func KeySchedule(key MasterKey, rounds int) []uint64 {
	keys := make([]uint64, rounds+1)
	high, low := key.High, uint64(key.Low)
	for r := 0; r <= rounds; r++ {
		keys[r] = high

		t := high
		high = (high << 61) | (low << 45) | (t >> 19)
		low = (t >> 3) & 0xffff

		high = (high & 0x0fffffffffffffff) | uint64(SboxTable[high>>60])<<60

		counter := uint64(r + 1)
		low ^= (counter & 1) << 15
		high ^= counter >> 1
	}
	return keys
}

// Reference is the straightforward word-oriented PRESENT implementation.
type Reference struct {
	Keys []uint64
}

// NewReference returns the reference cipher for key reduced to rounds rounds.
func NewReference(key MasterKey, rounds int) *Reference {
	return &Reference{Keys: KeySchedule(key, rounds)}
}

// Rounds returns the number of rounds the cipher was keyed for.
func (c *Reference) Rounds() int {
	return len(c.Keys) - 1
}

// Encrypt encrypts one block.
func (c *Reference) Encrypt(p uint64) uint64 {
	rounds := c.Rounds()
	s := p
	for r := 0; r < rounds; r++ {
		s ^= c.Keys[r]
		s = SubstituteWord(s)
		s = PermuteWord(s)
	}
	return s ^ c.Keys[rounds]
}

// Decrypt inverts Encrypt.
func (c *Reference) Decrypt(x uint64) uint64 {
	rounds := c.Rounds()
	s := x ^ c.Keys[rounds]
	for r := rounds - 1; r >= 0; r-- {
		s = inversePermuteWord(s)
		s = inverseSubstituteWord(s)
		s ^= c.Keys[r]
	}
	return s
}

// SubstituteWord applies the S-box to each of the 16 nibbles of s.
func SubstituteWord(s uint64) uint64 {
	var out uint64
	for i := 0; i < 64; i += 4 {
		out |= uint64(SboxTable[(s>>uint(i))&0xf]) << uint(i)
	}
	return out
}

func inverseSubstituteWord(s uint64) uint64 {
	var out uint64
	for i := 0; i < 64; i += 4 {
		out |= uint64(SboxInverse[(s>>uint(i))&0xf]) << uint(i)
	}
	return out
}

// PermuteIndex returns where the permutation layer moves state bit i.
func PermuteIndex(i int) int {
	return 16*(i%4) + i/4
}

// PermuteWord applies the bit permutation layer.
func PermuteWord(s uint64) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		out |= ((s >> uint(i)) & 1) << uint(PermuteIndex(i))
	}
	return out
}

func inversePermuteWord(s uint64) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		out |= ((s >> uint(PermuteIndex(i))) & 1) << uint(i)
	}
	return out
}
