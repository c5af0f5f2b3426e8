package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "treedelta", configBaseName)
	assert.Equal(t, "treedelta.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "TREEDELTA", envPrefix)
	assert.Equal(t, "match.min_anchor_size", minAnchorSizeKey)
	assert.Equal(t, "display.format", formatKey)
	assert.Equal(t, "diff.parallel", diffParallelKey)
	assert.Equal(t, ".treedelta.log", defaultLogFilename)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "run.log")

	configureLogger(logPath, false)
	slog.Debug("hidden")
	slog.Info("shown", "pairs", 3)

	configureLogger(logPath, true)
	slog.Debug("verbose")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(contents), "hidden")
	assert.Contains(t, string(contents), "msg=shown pairs=3")
	assert.Contains(t, string(contents), "msg=verbose")
}

func TestNewReportSpill(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spill")
	viper.Set(diffSpillDirKey, dir)
	t.Cleanup(func() { viper.Set(diffSpillDirKey, defaultDiffSpillDir) })

	spill, err := newReportSpill()
	require.NoError(t, err)

	require.NoError(t, spill.Append(m.Report{Name: "a.go", Status: m.StatusModified}))
	assert.Equal(t, uint64(1), spill.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, spill.Close())
}
