// Package rng provides the per-worker random sources of an experiment.
//
// A run has one master seed. Every worker derives its own stream from it with
// the keyed blake2b PRNG of lattigo, so a run can be replayed from the seed
// while workers never share generator state.
package rng

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"

	"github.com/tuneinsight/lattigo/v5/utils/sampling"
)

// SeedSize is the size in bytes of generated seeds.
const SeedSize = 32

// MaxSeedSize is the longest accepted seed. A stream is keyed with the seed
// followed by its 8-byte index, and blake2b keys hold at most 64 bytes.
const MaxSeedSize = 64 - 8

// Source is a stream of uniform 64-bit values. Sources are not safe for
// concurrent use; each worker owns one.
type Source interface {
	Uint64() uint64
}

// Seed is the master seed of a run.
type Seed []byte

// NewSeed draws a fresh seed from the system entropy source.
func NewSeed() (Seed, error) {
	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("rng: creating entropy source: %w", err)
	}
	s := make(Seed, SeedSize)
	if _, err := prng.Read(s); err != nil {
		return nil, fmt.Errorf("rng: reading entropy: %w", err)
	}
	return s, nil
}

// ParseSeed decodes a hex encoded seed. An empty string yields a fresh seed.
func ParseSeed(s string) (Seed, error) {
	if s == "" {
		return NewSeed()
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("rng: invalid seed %q: %w", s, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("rng: empty seed")
	}
	if len(b) > MaxSeedSize {
		return nil, fmt.Errorf("rng: seed is %d bytes, at most %d allowed", len(b), MaxSeedSize)
	}
	return Seed(b), nil
}

func (s Seed) String() string {
	return hex.EncodeToString(s)
}

// Stream returns the independent source for the given stream index.
// The same seed and index always produce the same sequence.
func (s Seed) Stream(index int) (Source, error) {
	key := make([]byte, len(s)+8)
	copy(key, s)
	binary.BigEndian.PutUint64(key[len(s):], uint64(index))

	prng, err := sampling.NewKeyedPRNG(key)
	if err != nil {
		return nil, fmt.Errorf("rng: keying stream %d: %w", index, err)
	}
	var chachaSeed [32]byte
	if _, err := prng.Read(chachaSeed[:]); err != nil {
		return nil, fmt.Errorf("rng: deriving stream %d: %w", index, err)
	}
	return rand.NewChaCha8(chachaSeed), nil
}
