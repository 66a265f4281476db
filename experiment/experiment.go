// Package experiment samples the correlation of single-bit masks through
// reduced-round PRESENT over many random keys.
//
// Run splits the keys between a fixed pool of workers. Each worker owns its
// random stream, cipher engine and histograms; the histograms are merged once
// every worker has returned.
package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"linc/present"
	"linc/rng"
	"linc/stats"
)

// Distribution is the merged outcome for one strategy and one mask.
type Distribution struct {
	Strategy    present.Strategy
	Mask        Mask
	Histogram   stats.Histogram
	Empirical   stats.Summary
	Theoretical stats.Summary
	// KS is the Kolmogorov-Smirnov distance between the empirical
	// distribution and the normal law of the theoretical estimate.
	KS float64
}

// Result is a completed run.
type Result struct {
	ID            string
	Config        Config
	Seed          rng.Seed
	Distributions []Distribution

	Sampling time.Duration
	Merging  time.Duration
}

// Option configures Run.
type Option func(*runner)

type runner struct {
	log     *logrus.Entry
	metrics *Metrics
}

// WithLogger sets the logger used for run milestones and worker progress.
func WithLogger(log *logrus.Entry) Option {
	return func(r *runner) { r.log = log }
}

// WithMetrics records progress on m.
func WithMetrics(m *Metrics) Option {
	return func(r *runner) { r.metrics = m }
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.Out = io.Discard
	return logrus.NewEntry(l)
}

// Run validates cfg, evaluates every strategy and mask on
// KeysPerWorker()*Workers keys, and merges the per-worker histograms.
// If any worker fails or ctx is cancelled no result is returned.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = discardLogger()
	}

	seed, err := rng.ParseSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := r.log.WithField("run", id)
	log.WithFields(logrus.Fields{
		"rounds":     cfg.Rounds,
		"keys":       cfg.KeysPerWorker() * cfg.Workers,
		"plaintexts": cfg.PlaintextsPerKey(),
		"workers":    cfg.Workers,
		"masks":      len(cfg.Masks),
		"strategies": len(cfg.Strategies),
	}).Info("starting experiment")

	start := time.Now()
	workers := make([]*worker, cfg.Workers)
	for i := range workers {
		src, err := seed.Stream(i)
		if err != nil {
			return nil, err
		}
		workers[i] = newWorker(i, &cfg, src, log, r.metrics)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, w := range workers {
		g.Go(func() error {
			if err := w.run(gctx); err != nil {
				return fmt.Errorf("worker %d: %w", w.id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("experiment aborted")
		return nil, err
	}
	sampling := time.Since(start)

	start = time.Now()
	res := &Result{ID: id, Config: cfg, Seed: seed, Sampling: sampling}
	res.Config.Seed = seed.String()
	estimate := stats.Estimate(cfg.Rounds)
	for s, strategy := range cfg.Strategies {
		for m, mask := range cfg.Masks {
			parts := make([]stats.Histogram, len(workers))
			for i, w := range workers {
				parts[i] = w.hists[s][m]
			}
			h := stats.Merge(parts...)
			res.Distributions = append(res.Distributions, Distribution{
				Strategy:    strategy,
				Mask:        mask,
				Histogram:   h,
				Empirical:   stats.Summarize(h),
				Theoretical: estimate,
				KS:          stats.KolmogorovSmirnov(h, estimate.Var),
			})
		}
	}
	res.Merging = time.Since(start)

	log.WithFields(logrus.Fields{
		"sampling": sampling,
		"merging":  res.Merging,
	}).Info("experiment finished")
	return res, nil
}
