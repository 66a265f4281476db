package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for the phases of a run
type TimingStats struct {
	TotalTime    time.Duration
	SetupTime    time.Duration
	SamplingTime time.Duration
	MergeTime    time.Duration
	WriteTime    time.Duration
}

// Phase runs fn and adds its duration to *d.
func Phase(d *time.Duration, fn func() error) error {
	start := time.Now()
	err := fn()
	*d += time.Since(start)
	return err
}

func share(part, total time.Duration) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, keys, plaintexts int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Keys evaluated: %d\n", keys)
	if keys > 0 {
		fmt.Fprintf(Output, "Average time per key: %v\n", stats.SamplingTime/time.Duration(keys))
		if plaintexts > 0 {
			perBlock := DurationUS(stats.SamplingTime) / (float64(keys) * float64(plaintexts))
			fmt.Fprintf(Output, "Average time per encryption: %.4fµs\n", perBlock)
		}
	}
	fmt.Fprintln(Output, "\nBreakdown by phase:")
	fmt.Fprintf(Output, "  Setup: %v (%.1f%%)\n", stats.SetupTime, share(stats.SetupTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Sampling: %v (%.1f%%)\n", stats.SamplingTime, share(stats.SamplingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Merge: %v (%.1f%%)\n", stats.MergeTime, share(stats.MergeTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Write: %v (%.1f%%)\n", stats.WriteTime, share(stats.WriteTime, stats.TotalTime))
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
