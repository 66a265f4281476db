package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := writeConfig(t, "keys: 100\nrounds: 6\nmasks:\n  - \"3:40\"\n  - \"21\"\nstrategies: [schedule]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := GetDefaultConfig()
	require.Equal(t, 100, cfg.Keys)
	require.Equal(t, 6, cfg.Rounds)
	require.Equal(t, []string{"3:40", "21"}, cfg.Masks)
	require.Equal(t, []string{"schedule"}, cfg.Strategies)
	require.Equal(t, def.Plaintexts, cfg.Plaintexts)
	require.Equal(t, def.Workers, cfg.Workers)
	require.Equal(t, def.Precision, cfg.Precision)
	require.Equal(t, def.Output, cfg.Output)
}

func TestLoadConfigKeepsExplicitZeros(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "rounds: 0\nworkers: 0\nkeys: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Rounds)
	require.Equal(t, 0, cfg.Workers)
	require.Equal(t, 0, cfg.Keys)
	require.Equal(t, GetDefaultConfig().Plaintexts, cfg.Plaintexts)
}

func TestLoadConfigDebugOff(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "debug: true\n"))
	require.NoError(t, err)
	require.True(t, cfg.Debug)

	cfg, err = LoadConfig(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)
	require.False(t, cfg.Debug)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "keys: [1, 2\n"))
	require.Error(t, err)
}

func TestOverride(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Override(FileConfig{Masks: []string{"1:2"}, Output: "elsewhere"}))
	require.Equal(t, []string{"1:2"}, cfg.Masks)
	require.Equal(t, "elsewhere", cfg.Output)
	require.Equal(t, GetDefaultConfig().Strategies, cfg.Strategies)
	require.Equal(t, GetDefaultConfig().Keys, cfg.Keys)
}

func TestDump(t *testing.T) {
	fc := GetDefaultConfig()
	fc.Rounds = 0
	out, err := fc.Dump()
	require.NoError(t, err)
	require.Contains(t, out, "masks:")
	require.Contains(t, out, "21:21")
	require.Contains(t, out, "rounds: 0")
}

func TestNewLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "linc.log")
	log, err := NewLogger("linc-test", false, logFile)
	require.NoError(t, err)
	log.Info("hello")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(content), `"msg":"hello"`)
	require.Contains(t, string(content), `"tool":"linc-test"`)

	_, err = NewLogger("linc-test", true, filepath.Join(t.TempDir(), "no", "such", "dir.log"))
	require.Error(t, err)
}
