package present

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"linc/bitslice"
	"linc/rng"
)

// RoundKeys is bit-sliced round-key material: one 64-lane block per round
// plus the final whitening block.
type RoundKeys struct {
	Rounds int
	Lanes  []uint64
}

// NewRoundKeys allocates zeroed key material for the given round count.
func NewRoundKeys(rounds int) *RoundKeys {
	return &RoundKeys{Rounds: rounds, Lanes: make([]uint64, (rounds+1)*64)}
}

// Block returns the lanes of round key r.
func (k *RoundKeys) Block(r int) []uint64 {
	return k.Lanes[r*64 : (r+1)*64]
}

// SetRoundKey stores the 64-bit round key w as block r, shared by all 64
// instances.
func (k *RoundKeys) SetRoundKey(r int, w uint64) {
	bitslice.Broadcast(k.Block(r), bitslice.Mirror64(w))
}

// RoundKey reads back block r as a 64-bit round key of instance 0.
func (k *RoundKeys) RoundKey(r int) uint64 {
	return bitslice.Mirror64(bitslice.Collect(k.Block(r)))
}

// FromSchedule lays out the word round keys of a schedule.
func FromSchedule(keys []uint64) *RoundKeys {
	rk := NewRoundKeys(len(keys) - 1)
	for r, w := range keys {
		rk.SetRoundKey(r, w)
	}
	return rk
}

func (k *RoundKeys) resize(rounds int) {
	n := (rounds + 1) * 64
	if cap(k.Lanes) < n {
		k.Lanes = make([]uint64, n)
	}
	k.Lanes = k.Lanes[:n]
	k.Rounds = rounds
}

// Strategy selects how the round keys of one sampled key are produced.
type Strategy int

const (
	// Independent draws every round key independently.
	Independent Strategy = iota
	// Constant draws a single round key and uses it in every round.
	Constant
	// ReferenceSchedule draws an 80-bit master key and expands it with the
	// PRESENT key schedule.
	ReferenceSchedule
)

var strategyNames = map[Strategy]string{
	Independent:       "independent",
	Constant:          "constant",
	ReferenceSchedule: "schedule",
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Independent, Constant, ReferenceSchedule}
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name back to its value.
func ParseStrategy(name string) (Strategy, error) {
	s, ok := lo.Invert(strategyNames)[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key strategy %q (want one of %s)",
			name, strings.Join(lo.Map(Strategies(), func(s Strategy, _ int) string { return s.String() }), ", "))
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, fmt.Errorf("invalid key strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Generate fills dst with fresh round keys for the given round count, reusing
// its storage. Every 64-bit round key comes straight from src.
func (s Strategy) Generate(rounds int, src rng.Source, dst *RoundKeys) {
	dst.resize(rounds)
	switch s {
	case Independent:
		for r := 0; r <= rounds; r++ {
			dst.SetRoundKey(r, src.Uint64())
		}
	case Constant:
		dst.SetRoundKey(0, src.Uint64())
		first := dst.Block(0)
		for r := 1; r <= rounds; r++ {
			copy(dst.Block(r), first)
		}
	case ReferenceSchedule:
		key := MasterKey{High: src.Uint64(), Low: uint16(src.Uint64())}
		for r, w := range KeySchedule(key, rounds) {
			dst.SetRoundKey(r, w)
		}
	default:
		panic(fmt.Sprintf("present: unknown key strategy %d", int(s)))
	}
}
