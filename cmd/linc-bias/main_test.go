package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"linc/experiment"
	"linc/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), utils.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "rounds: 5\ndebug: true\nmasks: [\"1:1\"]\nkeys: 7\n")

	fc, opts, err := parseFlags([]string{"--config=" + path, "--rounds=0", "--debug=false", "--mask=3:4"})
	require.NoError(t, err)
	require.Equal(t, 0, fc.Rounds)
	require.False(t, fc.Debug)
	require.Equal(t, []string{"3:4"}, fc.Masks)
	require.Equal(t, 7, fc.Keys)
	require.Equal(t, utils.GetDefaultConfig().Strategies, fc.Strategies)
	require.Equal(t, 60, opts.plotWidth)
	require.Equal(t, 12, opts.plotHeight)

	cfg, err := experiment.FromFile(fc)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Rounds)
}

func TestParseFlagsKeepsFile(t *testing.T) {
	path := writeConfig(t, "rounds: 5\ndebug: true\nmasks: [\"1:1\", \"2:2\"]\n")

	fc, _, err := parseFlags([]string{"--config=" + path, "--plot-height=0"})
	require.NoError(t, err)
	require.Equal(t, 5, fc.Rounds)
	require.True(t, fc.Debug)
	require.Equal(t, []string{"1:1", "2:2"}, fc.Masks)
}

func TestParseFlagsZeroWorkers(t *testing.T) {
	path := writeConfig(t, "workers: 4\n")

	fc, _, err := parseFlags([]string{"--config=" + path, "--workers=0"})
	require.NoError(t, err)
	require.Equal(t, 0, fc.Workers)

	_, err = experiment.FromFile(fc)
	require.ErrorIs(t, err, experiment.ErrInvalidConfig)
}

func TestParseFlagsMissingConfig(t *testing.T) {
	_, _, err := parseFlags([]string{"--config=" + filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
}
