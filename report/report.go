// Package report writes experiment results to disk and to the terminal.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jesseduffield/asciigraph"
	"github.com/jesseduffield/yaml"
	"github.com/samber/lo"

	"linc/experiment"
	"linc/stats"
)

// WriteHistogram writes one "value count" line per bucket in increasing value
// order.
func WriteHistogram(w io.Writer, h stats.Histogram) error {
	bw := bufio.NewWriter(w)
	for _, e := range h.Entries() {
		if _, err := fmt.Fprintf(bw, "%.16g %d\n", e.Value, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSummary writes the mean and variance of a distribution.
func WriteSummary(w io.Writer, s stats.Summary) error {
	_, err := fmt.Fprintf(w, "mean %.16g\nvar  %.16g\n", s.Mean, s.Var)
	return err
}

// Name is the file name stem of a distribution: <strategy>_<in>_<out>.
func Name(d experiment.Distribution) string {
	return fmt.Sprintf("%s_%d_%d", d.Strategy, d.Mask.Input, d.Mask.Output)
}

// Manifest is written as run.yml next to the data files.
type Manifest struct {
	ID       string            `yaml:"id"`
	Seed     string            `yaml:"seed"`
	Created  string            `yaml:"created"`
	Sampling string            `yaml:"sampling"`
	Config   experiment.Config `yaml:"config"`
	Results  []ManifestEntry   `yaml:"results"`
}

// ManifestEntry summarises one distribution in the manifest.
type ManifestEntry struct {
	Name        string        `yaml:"name"`
	Histogram   string        `yaml:"histogram"`
	Empirical   stats.Summary `yaml:"empirical"`
	Theoretical stats.Summary `yaml:"theoretical"`
	KS          float64       `yaml:"ks"`
}

// Save writes every artifact of res into dir, creating it if needed:
// histo_<name>.dat and data_<name> per distribution, data_est with the
// theoretical summary and run.yml. It returns the paths written.
func Save(dir string, res *experiment.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	manifest := Manifest{
		ID:       res.ID,
		Seed:     res.Seed.String(),
		Created:  time.Now().UTC().Format(time.RFC3339),
		Sampling: res.Sampling.String(),
		Config:   res.Config,
	}
	for _, d := range res.Distributions {
		name := Name(d)
		histo := "histo_" + name + ".dat"
		if err := write(histo, func(w io.Writer) error { return WriteHistogram(w, d.Histogram) }); err != nil {
			return written, err
		}
		if err := write("data_"+name, func(w io.Writer) error { return WriteSummary(w, d.Empirical) }); err != nil {
			return written, err
		}
		manifest.Results = append(manifest.Results, ManifestEntry{
			Name:        name,
			Histogram:   histo,
			Empirical:   d.Empirical,
			Theoretical: d.Theoretical,
			KS:          d.KS,
		})
	}
	if len(res.Distributions) > 0 {
		est := res.Distributions[0].Theoretical
		if err := write("data_est", func(w io.Writer) error { return WriteSummary(w, est) }); err != nil {
			return written, err
		}
	}

	err := write("run.yml", func(w io.Writer) error {
		out, err := yaml.Marshal(manifest)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
	return written, err
}

// LoadManifest reads back a run.yml.
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// Plot sketches the bucket counts of h, ordered by value.
func Plot(h stats.Histogram, width, height int, caption string) string {
	entries := h.Entries()
	if len(entries) == 0 {
		return ""
	}
	series := lo.Map(entries, func(e stats.Entry, _ int) float64 { return float64(e.Count) })
	if len(series) == 1 {
		// asciigraph needs two points to draw a line.
		series = append(series, series[0])
	}
	return asciigraph.Plot(
		series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Min(0),
		asciigraph.Caption(fmt.Sprintf("%s [%g, %g]", caption, entries[0].Value, entries[len(entries)-1].Value)),
	)
}
