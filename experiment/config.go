package experiment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"linc/bitslice"
	"linc/present"
	"linc/rng"
	"linc/utils"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// DefaultPrecision is the number of decimals correlations are rounded to.
const DefaultPrecision = 5

// Mask selects one input bit and one output bit of the cipher state. Bit 0 is
// the least significant bit.
type Mask struct {
	Input  int `yaml:"input"`
	Output int `yaml:"output"`
}

// ParseMask reads a mask written as "in:out", or a single index used for both.
func ParseMask(s string) (Mask, error) {
	in, out, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		out = in
	}
	i, err := strconv.Atoi(in)
	if err != nil {
		return Mask{}, fmt.Errorf("mask %q: %w", s, err)
	}
	o, err := strconv.Atoi(out)
	if err != nil {
		return Mask{}, fmt.Errorf("mask %q: %w", s, err)
	}
	return Mask{Input: i, Output: o}, nil
}

func (m Mask) String() string {
	return fmt.Sprintf("%d:%d", m.Input, m.Output)
}

// lanes returns the lanes holding the masked bits; the engine keeps state
// bit b in lane 63-b.
func (m Mask) lanes() (in, out int) {
	return bitslice.Lanes - 1 - m.Input, bitslice.Lanes - 1 - m.Output
}

// Config describes one experiment run.
type Config struct {
	// Keys is the number of keys sampled per strategy.
	Keys int `yaml:"keys"`
	// Plaintexts is the number of plaintexts encrypted under each key. It is
	// rounded up to a multiple of 64.
	Plaintexts int `yaml:"plaintexts"`
	Workers    int `yaml:"workers"`
	Rounds     int `yaml:"rounds"`

	Masks      []Mask             `yaml:"masks"`
	Strategies []present.Strategy `yaml:"strategies"`

	// Precision is the number of decimals correlations are rounded to before
	// they are counted.
	Precision int `yaml:"precision"`
	// Seed is the hex encoded master seed. A fresh one is drawn when empty.
	Seed string `yaml:"seed,omitempty"`
	// ProgressEvery logs worker progress every that many keys; 0 disables it.
	ProgressEvery int `yaml:"progressEvery,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate rejects configurations the harness cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return invalid("worker count must be positive, got %d", c.Workers)
	case c.Keys <= 0:
		return invalid("key count must be positive, got %d", c.Keys)
	case c.Plaintexts <= 0:
		return invalid("plaintext count must be positive, got %d", c.Plaintexts)
	case c.Rounds < 0 || c.Rounds > present.MaxRounds:
		return invalid("rounds must be in 0..%d, got %d", present.MaxRounds, c.Rounds)
	case len(c.Masks) == 0:
		return invalid("no mask given")
	case len(c.Strategies) == 0:
		return invalid("no key strategy given")
	case c.Precision < 1 || c.Precision > 15:
		return invalid("precision must be in 1..15, got %d", c.Precision)
	case c.ProgressEvery < 0:
		return invalid("progress interval must not be negative")
	}
	for _, m := range c.Masks {
		if m.Input < 0 || m.Input >= bitslice.Lanes || m.Output < 0 || m.Output >= bitslice.Lanes {
			return invalid("mask %s is outside the 64-bit state", m)
		}
	}
	for _, s := range c.Strategies {
		if _, err := s.MarshalText(); err != nil {
			return invalid("%v", err)
		}
	}
	if c.Seed != "" {
		if _, err := rng.ParseSeed(c.Seed); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

// KeysPerWorker is the number of keys each worker evaluates per strategy.
func (c *Config) KeysPerWorker() int {
	return (c.Keys + c.Workers - 1) / c.Workers
}

// Batches is the number of 64-plaintext batches encrypted under each key.
func (c *Config) Batches() int {
	return (c.Plaintexts + bitslice.Lanes - 1) / bitslice.Lanes
}

// PlaintextsPerKey is Plaintexts rounded up to the batch size.
func (c *Config) PlaintextsPerKey() int {
	return c.Batches() * bitslice.Lanes
}

// FromFile converts a loaded file configuration into a validated Config.
// Every error wraps ErrInvalidConfig.
func FromFile(fc *utils.FileConfig) (Config, error) {
	cfg := Config{
		Keys:          fc.Keys,
		Plaintexts:    fc.Plaintexts,
		Workers:       fc.Workers,
		Rounds:        fc.Rounds,
		Precision:     fc.Precision,
		Seed:          strings.TrimPrefix(fc.Seed, "0x"),
		ProgressEvery: fc.ProgressEvery,
	}
	for _, s := range fc.Masks {
		m, err := ParseMask(s)
		if err != nil {
			return cfg, invalid("%v", err)
		}
		cfg.Masks = append(cfg.Masks, m)
	}
	for _, s := range fc.Strategies {
		st, err := present.ParseStrategy(s)
		if err != nil {
			return cfg, invalid("%v", err)
		}
		cfg.Strategies = append(cfg.Strategies, st)
	}
	return cfg, cfg.Validate()
}
