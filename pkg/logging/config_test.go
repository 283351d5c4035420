package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvrecon/csvrecon/pkg/logging"
)

func restoreGlobalLevel(t *testing.T) {
	t.Helper()
	level := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestNewLoggerFromConfigWritesToFile(t *testing.T) {
	restoreGlobalLevel(t)
	path := filepath.Join(t.TempDir(), "run.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "debug",
		Format: "json",
		Output: path,
	})
	logger.Info().Str("pair", "orders.csv").Msg("reconciling")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "reconciling")
	assert.Contains(t, string(content), `"pair":"orders.csv"`)
	assert.Contains(t, string(content), `"level":"info"`)
}

func TestNewLoggerFromConfigFiltersLevels(t *testing.T) {
	restoreGlobalLevel(t)
	path := filepath.Join(t.TempDir(), "run.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
	})
	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	output := string(content)
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestNewLoggerFromConfigConsoleFormat(t *testing.T) {
	restoreGlobalLevel(t)
	path := filepath.Join(t.TempDir(), "run.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   "info",
		Format:  "console",
		Output:  path,
		NoColor: true,
	})
	logger.Info().Str("key", "value").Msg("console test")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "console test")
	assert.Contains(t, string(content), "INF", "console format uses short level names")
}

func TestNewLoggerFromConfigNilUsesDefaults(t *testing.T) {
	restoreGlobalLevel(t)
	logger := logging.NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	restoreGlobalLevel(t)
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "bogus",
		Format: "json",
		Output: "discard",
	})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
