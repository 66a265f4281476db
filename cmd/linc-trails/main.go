// linc-trails: single-bit linear trails of PRESENT and the correlation
// variances they predict.
//
// Usage:
//
//	linc-trails --rounds=31 --mask=21:21 --lat
package main

import (
	"fmt"
	"log"

	"github.com/integrii/flaggy"

	"linc/experiment"
	"linc/present"
	"linc/stats"
	"linc/trails"
	"linc/utils"
)

func main() {
	var (
		rounds  = present.MaxRounds
		mask    string
		showLAT bool
	)
	flaggy.SetName("linc-trails")
	flaggy.SetDescription("Count single-bit linear trails through PRESENT")
	flaggy.Int(&rounds, "r", "rounds", "Largest round count to tabulate")
	flaggy.String(&mask, "m", "mask", "Also count trails for this in:out mask")
	flaggy.Bool(&showLAT, "l", "lat", "Print the linear approximation table of the S-box")
	flaggy.Parse()

	if rounds < 0 {
		log.Fatalf("rounds must not be negative, got %d", rounds)
	}
	var m *experiment.Mask
	if mask != "" {
		parsed, err := experiment.ParseMask(mask)
		if err != nil {
			log.Fatal(err.Error())
		}
		if parsed.Input < 0 || parsed.Input >= trails.StateBits || parsed.Output < 0 || parsed.Output >= trails.StateBits {
			log.Fatalf("mask %s is outside the 64-bit state", parsed)
		}
		m = &parsed
	}

	lat := trails.LAT(present.SboxTable)
	if showLAT {
		fmt.Fprintln(utils.Output, "Linear approximation table (#agree - 8):")
		fmt.Fprint(utils.Output, "     ")
		for b := 0; b < 16; b++ {
			fmt.Fprintf(utils.Output, "%3x", b)
		}
		fmt.Fprintln(utils.Output)
		for a := 0; a < 16; a++ {
			fmt.Fprintf(utils.Output, "  %x: ", a)
			for b := 0; b < 16; b++ {
				fmt.Fprintf(utils.Output, "%3d", lat[a][b])
			}
			fmt.Fprintln(utils.Output)
		}
		fmt.Fprintln(utils.Output)
	}

	fmt.Fprintln(utils.Output, "One-bit approximations (in -> out, correlation):")
	for _, a := range trails.OneBitApproximations(lat) {
		fmt.Fprintf(utils.Output, "  %x -> %x  %+.3f\n", a.In, a.Out, a.Correlation())
	}

	fmt.Fprintln(utils.Output, "\nRounds  max trails          variance")
	for r := 1; r <= rounds; r++ {
		count := trails.Count(r)
		fmt.Fprintf(utils.Output, "%6d  %16.0f  %.6e", r, count, stats.TheoreticalVariance(r, count))
		if m != nil {
			c := trails.CountBetween(m.Input, m.Output, r)
			fmt.Fprintf(utils.Output, "   mask %s: %.0f trails, variance %.6e", m, c, stats.TheoreticalVariance(r, c))
		}
		fmt.Fprintln(utils.Output)
	}
}
