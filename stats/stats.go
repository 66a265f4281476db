// Package stats aggregates correlation samples into histograms and summarises
// them against the theoretical estimate.
package stats

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"linc/trails"
)

// Histogram maps a rounded correlation value to the number of keys that
// produced it.
type Histogram map[float64]uint64

// Entry is one histogram bucket.
type Entry struct {
	Value float64
	Count uint64
}

// Add records one occurrence of v.
func (h Histogram) Add(v float64) {
	h[v]++
}

// Total returns the sum of all counts.
func (h Histogram) Total() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// Entries returns the buckets in increasing value order.
func (h Histogram) Entries() []Entry {
	values := lo.Keys(h)
	slices.Sort(values)
	return lo.Map(values, func(v float64, _ int) Entry {
		return Entry{Value: v, Count: h[v]}
	})
}

// Merge sums the counts of identical values across hs into a new histogram.
// The inputs are left untouched and the result does not depend on their order.
func Merge(hs ...Histogram) Histogram {
	out := make(Histogram)
	for _, h := range hs {
		for v, c := range h {
			out[v] += c
		}
	}
	return out
}

func (h Histogram) columns() (values, weights []float64) {
	entries := h.Entries()
	values = make([]float64, len(entries))
	weights = make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
		weights[i] = float64(e.Count)
	}
	return values, weights
}

// WeightedMean returns the count-weighted mean of the bucket values, or NaN
// for an empty histogram.
func WeightedMean(h Histogram) float64 {
	if len(h) == 0 {
		return math.NaN()
	}
	values, weights := h.columns()
	return stat.Mean(values, weights)
}

// WeightedVariance returns the count-weighted population variance of the
// bucket values, or NaN for an empty histogram.
func WeightedVariance(h Histogram) float64 {
	if len(h) == 0 {
		return math.NaN()
	}
	values, weights := h.columns()
	_, v := stat.PopMeanVariance(values, weights)
	return v
}

// Summary is the pair written to the summary artifact.
type Summary struct {
	Mean float64 `yaml:"mean"`
	Var  float64 `yaml:"var"`
	Keys uint64  `yaml:"keys,omitempty"`
}

// Summarize computes the empirical summary of h.
func Summarize(h Histogram) Summary {
	return Summary{
		Mean: WeightedMean(h),
		Var:  WeightedVariance(h),
		Keys: h.Total(),
	}
}

// TheoreticalVariance is 2^(-4*rounds) times the number of contributing trails.
func TheoreticalVariance(rounds int, trailCount float64) float64 {
	return math.Ldexp(trailCount, -4*rounds)
}

// Estimate is the theoretical summary for a single-bit mask: the correlation
// is centred on zero with variance given by the maximal trail count.
func Estimate(rounds int) Summary {
	return Summary{Mean: 0, Var: TheoreticalVariance(rounds, trails.Count(rounds))}
}

// Correlation converts an agreement count into a correlation
// 2*agree/total - 1 rounded to precision decimals.
func Correlation(agree, total uint64, precision int) float64 {
	c := 2*float64(agree)/float64(total) - 1
	scale := math.Pow(10, float64(precision))
	return math.Round(c*scale) / scale
}

// KolmogorovSmirnov returns the largest distance between the empirical CDF of
// h and the normal distribution N(0, variance). A zero variance compares
// against the point mass at zero.
func KolmogorovSmirnov(h Histogram, variance float64) float64 {
	total := float64(h.Total())
	if total == 0 {
		return math.NaN()
	}
	cdf := func(x float64) float64 {
		if x >= 0 {
			return 1
		}
		return 0
	}
	if variance > 0 {
		cdf = distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance)}.CDF
	}

	var d, seen float64
	for _, e := range h.Entries() {
		ref := cdf(e.Value)
		below := seen / total
		seen += float64(e.Count)
		above := seen / total
		// The empirical CDF jumps at e.Value; check both sides of the step.
		if x := math.Abs(ref - above); x > d {
			d = x
		}
		if variance > 0 {
			if x := math.Abs(ref - below); x > d {
				d = x
			}
		} else if x := math.Abs(cdf(math.Nextafter(e.Value, math.Inf(-1))) - below); x > d {
			d = x
		}
	}
	return d
}
