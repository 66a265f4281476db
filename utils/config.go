package utils

import (
	"fmt"
	"os"
	"runtime"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/imdario/mergo"
	"github.com/jesseduffield/yaml"
)

// ConfigFileName is looked up in the XDG config directories when no config
// file is given explicitly.
const ConfigFileName = "config.yml"

// FileConfig holds the user-configurable options of the linc tools. Fields are
// read from YAML in camelCase on top of GetDefaultConfig, so a key present in
// the file wins even when its value is zero.
type FileConfig struct {
	Keys       int      `yaml:"keys"`
	Plaintexts int      `yaml:"plaintexts"`
	Workers    int      `yaml:"workers"`
	Rounds     int      `yaml:"rounds"`
	Masks      []string `yaml:"masks,omitempty"`
	Strategies []string `yaml:"strategies,omitempty"`
	Precision  int      `yaml:"precision"`
	Seed       string   `yaml:"seed,omitempty"`

	// Output is the directory artifacts are written to.
	Output string `yaml:"output,omitempty"`
	// ProgressEvery logs worker progress every that many keys.
	ProgressEvery int `yaml:"progressEvery,omitempty"`

	Debug       bool   `yaml:"debug,omitempty"`
	LogFile     string `yaml:"logFile,omitempty"`
	MetricsAddr string `yaml:"metricsAddr,omitempty"`
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() FileConfig {
	return FileConfig{
		Keys:       1 << 10,
		Plaintexts: 1 << 16,
		Workers:    runtime.NumCPU(),
		Rounds:     4,
		Masks:      []string{"21:21"},
		Strategies: []string{"independent", "constant"},
		Precision:  5,
		Output:     "results",
	}
}

// FindConfigFile returns the config file in the XDG config directories, or ""
// when there is none.
func FindConfigFile() string {
	return xdg.New("linc", "linc").QueryConfig(ConfigFileName)
}

// LoadConfig reads path, or the XDG config file when path is empty, over the
// defaults. A missing XDG file is not an error.
func LoadConfig(path string) (*FileConfig, error) {
	cfg := GetDefaultConfig()
	if path == "" {
		path = FindConfigFile()
	}
	if path == "" {
		return &cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Override replaces every field of c for which flags holds a non-zero value.
// A zero cannot be expressed this way, so options where zero is meaningful
// (counts, rounds, booleans) must be set on c directly.
func (c *FileConfig) Override(flags FileConfig) error {
	return mergo.Merge(c, flags, mergo.WithOverride)
}

// Dump renders c as YAML.
func (c *FileConfig) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
