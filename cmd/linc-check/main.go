// linc-check: self checks of the bit-sliced PRESENT engine against the
// reference implementation and published test vectors.
//
// Usage:
//
//	linc-check --trials=1000 --seed=00ff
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/integrii/flaggy"
	"golang.org/x/sys/cpu"

	"linc/bitslice"
	"linc/present"
	"linc/rng"
	"linc/utils"
)

type check struct {
	name string
	run  func() error
}

func main() {
	var (
		trials  = 256
		seedHex string
	)
	flaggy.SetName("linc-check")
	flaggy.SetDescription("Verify the bit-sliced PRESENT engine")
	flaggy.Int(&trials, "t", "trials", "Random cross-validation batches")
	flaggy.String(&seedHex, "", "seed", "Hex seed for the random checks")
	flaggy.Parse()

	seed, err := rng.ParseSeed(seedHex)
	if err != nil {
		log.Fatal(err.Error())
	}
	src, err := seed.Stream(0)
	if err != nil {
		log.Fatal(err.Error())
	}

	fmt.Fprintf(utils.Output, "%s/%s, %d CPUs, POPCNT: %v\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), cpu.X86.HasPOPCNT)
	fmt.Fprintf(utils.Output, "seed %s\n\n", seed)

	checks := []check{
		{"sbox circuit", checkSbox},
		{"transpose", func() error { return checkTranspose(src, trials) }},
		{"known answers", checkKnownAnswers},
		{"bit-sliced vs reference", func() error { return checkCrossValidation(src, trials) }},
	}
	failed := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			failed++
			fmt.Fprintf(utils.Output, "FAIL  %s: %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(utils.Output, "ok    %s\n", c.name)
	}
	if failed > 0 {
		fmt.Fprintf(utils.Output, "\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
}

func checkSbox() error {
	lane := func(v uint8, bit uint) uint64 { return -uint64((v >> bit) & 1) }
	for v := uint8(0); v < 16; v++ {
		y0, y1, y2, y3 := present.Sbox(lane(v, 0), lane(v, 1), lane(v, 2), lane(v, 3))
		want := present.SboxTable[v]
		if y0 != lane(want, 0) || y1 != lane(want, 1) || y2 != lane(want, 2) || y3 != lane(want, 3) {
			return fmt.Errorf("input %x", v)
		}
	}
	return nil
}

func checkTranspose(src rng.Source, trials int) error {
	for t := 0; t < trials; t++ {
		var m, once [64]uint64
		for i := range m {
			m[i] = src.Uint64()
		}
		once = m
		bitslice.Transpose64(&once)
		var slow [64]uint64
		bitslice.Transpose(slow[:], m[:], 64, 64)
		if once != slow {
			return fmt.Errorf("trial %d: in-place transpose differs", t)
		}
		bitslice.Transpose64(&once)
		if once != m {
			return fmt.Errorf("trial %d: transpose is not an involution", t)
		}
	}
	return nil
}

func checkKnownAnswers() error {
	ones := present.MasterKey{High: ^uint64(0), Low: 0xffff}
	vectors := []struct {
		key   present.MasterKey
		plain uint64
		want  uint64
	}{
		{present.MasterKey{}, 0, 0x5579c1387b228445},
		{ones, 0, 0xe72c46c0f5945049},
		{present.MasterKey{}, ^uint64(0), 0xa112ffc72f68417b},
		{ones, ^uint64(0), 0x3333dcd3213210d2},
	}
	var e present.Engine
	for _, v := range vectors {
		ref := present.NewReference(v.key, present.MaxRounds)
		if got := ref.Encrypt(v.plain); got != v.want {
			return fmt.Errorf("reference key %s plaintext %016x: got %016x want %016x", v.key, v.plain, got, v.want)
		}
		var words [64]uint64
		for i := range words {
			words[i] = v.plain
		}
		got := encrypt(&e, &words, present.FromSchedule(ref.Keys))
		for i, c := range got {
			if c != v.want {
				return fmt.Errorf("bit-sliced key %s instance %d: got %016x want %016x", v.key, i, c, v.want)
			}
		}
	}
	return nil
}

func checkCrossValidation(src rng.Source, trials int) error {
	var e present.Engine
	for t := 0; t < trials; t++ {
		rounds := t % (present.MaxRounds + 1)
		ref := present.NewReference(present.MasterKey{High: src.Uint64(), Low: uint16(src.Uint64())}, rounds)
		var words [64]uint64
		for i := range words {
			words[i] = src.Uint64()
		}
		got := encrypt(&e, &words, present.FromSchedule(ref.Keys))
		for i, p := range words {
			c := got[i]
			if want := ref.Encrypt(p); c != want {
				return fmt.Errorf("trial %d rounds %d instance %d: got %016x want %016x", t, rounds, i, c, want)
			}
			if back := ref.Decrypt(c); back != p {
				return fmt.Errorf("trial %d rounds %d: decryption gave %016x want %016x", t, rounds, back, p)
			}
		}
	}
	return nil
}

func encrypt(e *present.Engine, words *[64]uint64, rk *present.RoundKeys) [64]uint64 {
	var x present.State
	bitslice.Load((*[64]uint64)(&x), words)
	e.Encrypt(&x, rk)
	var out [64]uint64
	bitslice.Store(&out, (*[64]uint64)(&x))
	return out
}
