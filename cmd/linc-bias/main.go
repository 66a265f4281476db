// linc-bias: Monte-Carlo distribution of single-bit linear correlations
// through reduced-round PRESENT.
//
// Usage:
//
//	linc-bias --rounds=5 --keys=4096 --plaintexts=65536 --mask=21:21 --strategy=independent
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"linc/experiment"
	"linc/report"
	"linc/utils"
)

var version = "unversioned"

func main() {
	fc, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err.Error())
	}
	if opts.printConfig {
		out, err := fc.Dump()
		if err != nil {
			log.Fatal(err.Error())
		}
		fmt.Print(out)
		os.Exit(0)
	}
	utils.Verbose = !opts.quiet

	logger, err := utils.NewLogger("linc-bias", fc.Debug, fc.LogFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	if err := run(fc, logger, opts.plotWidth, opts.plotHeight); err != nil {
		newErr := errors.Wrap(err, 0)
		stackTrace := newErr.ErrorStack()
		logger.Error(stackTrace)
		log.Fatalf("linc-bias failed: %v", err)
	}
}

type options struct {
	configPath  string
	printConfig bool
	quiet       bool
	plotWidth   int
	plotHeight  int
	masks       []string
	strategies  []string
}

// newParser binds the command line onto fc and o. Flags left off the command
// line keep whatever value fc already holds.
func newParser(fc *utils.FileConfig, o *options) *flaggy.Parser {
	p := flaggy.NewParser("linc-bias")
	p.Description = "Sample the correlation of single-bit masks through reduced-round PRESENT"
	p.Version = fmt.Sprintf("%s\nOS: %s\nArch: %s", version, runtime.GOOS, runtime.GOARCH)

	p.String(&o.configPath, "c", "config", "Config file (default: XDG config dir)")
	p.Bool(&o.printConfig, "", "print-config", "Print the effective config and exit")
	p.Int(&fc.Keys, "k", "keys", "Number of keys per strategy")
	p.Int(&fc.Plaintexts, "p", "plaintexts", "Number of plaintexts per key (rounded up to 64)")
	p.Int(&fc.Workers, "w", "workers", "Number of workers")
	p.Int(&fc.Rounds, "r", "rounds", "Number of rounds")
	p.StringSlice(&o.masks, "m", "mask", "Mask as in:out bit indices (repeatable)")
	p.StringSlice(&o.strategies, "s", "strategy", "Key strategy: independent, constant, schedule (repeatable)")
	p.Int(&fc.Precision, "", "precision", "Decimals kept of every correlation")
	p.String(&fc.Seed, "", "seed", "Hex master seed (random when empty)")
	p.String(&fc.Output, "o", "output", "Output directory")
	p.Int(&fc.ProgressEvery, "", "progress", "Log worker progress every N keys")
	p.Bool(&fc.Debug, "d", "debug", "Debug logging (--debug=false turns it off)")
	p.String(&fc.LogFile, "", "log-file", "Write logs as JSON to this file")
	p.String(&fc.MetricsAddr, "", "metrics-addr", "Serve Prometheus metrics on this address")
	p.Bool(&o.quiet, "q", "quiet", "Only write artifacts")
	p.Int(&o.plotWidth, "", "plot-width", "Width of the histogram plot")
	p.Int(&o.plotHeight, "", "plot-height", "Height of the histogram plot (0 disables it)")
	return p
}

// parseFlags loads the config file named on the command line and applies the
// remaining flags on top of it. The first pass only finds the config file.
func parseFlags(args []string) (*utils.FileConfig, *options, error) {
	var scratch utils.FileConfig
	first := &options{}
	if err := newParser(&scratch, first).ParseArgs(args); err != nil {
		return nil, nil, err
	}

	fc, err := utils.LoadConfig(first.configPath)
	if err != nil {
		return nil, nil, err
	}
	o := &options{plotWidth: 60, plotHeight: 12}
	if err := newParser(fc, o).ParseArgs(args); err != nil {
		return nil, nil, err
	}
	// Repeatable flags append, so they are collected apart and replace the
	// file's lists only when given.
	if err := fc.Override(utils.FileConfig{Masks: o.masks, Strategies: o.strategies}); err != nil {
		return nil, nil, err
	}
	return fc, o, nil
}

func run(fc *utils.FileConfig, logger *logrus.Entry, plotWidth, plotHeight int) error {
	stats := &utils.TimingStats{}
	totalStart := time.Now()

	var cfg experiment.Config
	opts := []experiment.Option{experiment.WithLogger(logger)}
	err := utils.Phase(&stats.SetupTime, func() error {
		var err error
		if cfg, err = experiment.FromFile(fc); err != nil {
			return err
		}
		if fc.MetricsAddr != "" {
			reg := prometheus.NewRegistry()
			opts = append(opts, experiment.WithMetrics(experiment.NewMetrics(reg)))
			serveMetrics(fc.MetricsAddr, reg, logger)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if utils.Verbose {
		fmt.Fprintf(utils.Output, "\nConfiguration:\n")
		fmt.Fprintf(utils.Output, "  Rounds:      %d\n", cfg.Rounds)
		fmt.Fprintf(utils.Output, "  Keys:        %d (%d per worker)\n", cfg.KeysPerWorker()*cfg.Workers, cfg.KeysPerWorker())
		fmt.Fprintf(utils.Output, "  Plaintexts:  %d per key\n", cfg.PlaintextsPerKey())
		fmt.Fprintf(utils.Output, "  Workers:     %d\n", cfg.Workers)
		fmt.Fprintf(utils.Output, "  Masks:       %v\n", cfg.Masks)
		fmt.Fprintf(utils.Output, "  Strategies:  %v\n", cfg.Strategies)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := experiment.Run(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	stats.SamplingTime = res.Sampling
	stats.MergeTime = res.Merging

	var written []string
	err = utils.Phase(&stats.WriteTime, func() error {
		var err error
		written, err = report.Save(fc.Output, res)
		return err
	})
	if err != nil {
		return err
	}
	logger.WithField("files", len(written)).Info("artifacts written")
	stats.TotalTime = time.Since(totalStart)

	if !utils.Verbose {
		return nil
	}
	fmt.Fprintf(utils.Output, "\nRun %s (seed %s)\n", res.ID, res.Seed)
	for _, d := range res.Distributions {
		fmt.Fprintf(utils.Output, "\n%s\n", report.Name(d))
		fmt.Fprintf(utils.Output, "  empirical   mean %.6g  var %.6g  (%d keys)\n", d.Empirical.Mean, d.Empirical.Var, d.Empirical.Keys)
		fmt.Fprintf(utils.Output, "  theoretical mean %.6g  var %.6g\n", d.Theoretical.Mean, d.Theoretical.Var)
		fmt.Fprintf(utils.Output, "  KS distance %.4f\n", d.KS)
		if plotHeight > 0 {
			fmt.Fprintln(utils.Output, report.Plot(d.Histogram, plotWidth, plotHeight, report.Name(d)))
		}
	}
	fmt.Fprintf(utils.Output, "\nArtifacts in %s\n", fc.Output)
	utils.PrintTimingStats(stats, cfg.KeysPerWorker()*cfg.Workers*len(cfg.Strategies), cfg.PlaintextsPerKey())
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()
	logger.WithField("addr", addr).Info("serving metrics")
}
