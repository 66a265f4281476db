package experiment

import (
	"context"
	"math/bits"

	"github.com/sirupsen/logrus"

	"linc/present"
	"linc/rng"
	"linc/stats"
)

// worker runs the sampling loop for its share of the keys. Everything it
// touches is owned by it until run returns.
type worker struct {
	id      int
	cfg     *Config
	src     rng.Source
	log     *logrus.Entry
	metrics *Metrics

	engine present.Engine
	keys   present.RoundKeys
	state  present.State
	agree  []uint64

	// hists[s][m] is the histogram of strategy s and mask m.
	hists [][]stats.Histogram
}

func newWorker(id int, cfg *Config, src rng.Source, log *logrus.Entry, metrics *Metrics) *worker {
	hists := make([][]stats.Histogram, len(cfg.Strategies))
	for s := range hists {
		hists[s] = make([]stats.Histogram, len(cfg.Masks))
		for m := range hists[s] {
			hists[s][m] = make(stats.Histogram)
		}
	}
	return &worker{
		id:      id,
		cfg:     cfg,
		src:     src,
		log:     log.WithField("worker", id),
		metrics: metrics,
		agree:   make([]uint64, len(cfg.Masks)),
		hists:   hists,
	}
}

// run evaluates KeysPerWorker keys for every strategy. Cancellation is only
// observed between keys.
func (w *worker) run(ctx context.Context) error {
	w.metrics.workerStarted()
	defer w.metrics.workerStopped()

	perWorker := w.cfg.KeysPerWorker()
	total := uint64(w.cfg.PlaintextsPerKey())
	for s, strategy := range w.cfg.Strategies {
		name := strategy.String()
		for k := 0; k < perWorker; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			strategy.Generate(w.cfg.Rounds, w.src, &w.keys)
			w.sampleKey()
			for m, a := range w.agree {
				w.hists[s][m].Add(stats.Correlation(a, total, w.cfg.Precision))
			}
			w.metrics.keyDone(name, int(total))

			if every := w.cfg.ProgressEvery; every > 0 && (k+1)%every == 0 {
				w.log.WithFields(logrus.Fields{
					"strategy": name,
					"keys":     k + 1,
					"of":       perWorker,
				}).Debug("progress")
			}
		}
	}
	return nil
}

// sampleKey encrypts all plaintext batches under the current round keys and
// leaves the agreement count of every mask in w.agree.
func (w *worker) sampleKey() {
	clear(w.agree)
	var plain present.State
	for b := w.cfg.Batches(); b > 0; b-- {
		// Uniform lanes are 64 uniform plaintexts.
		for i := range w.state {
			w.state[i] = w.src.Uint64()
		}
		plain = w.state
		w.engine.Encrypt(&w.state, &w.keys)
		for m, mask := range w.cfg.Masks {
			in, out := mask.lanes()
			w.agree[m] += uint64(bits.OnesCount64(^(plain[in] ^ w.state[out])))
		}
	}
}
