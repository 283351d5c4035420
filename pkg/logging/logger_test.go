package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/csvrecon/csvrecon/pkg/logging"
)

func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	original := *logging.Default()
	t.Cleanup(func() {
		logging.SetDefault(original)
	})
}

func TestSetDefaultRoutesGlobalEvents(t *testing.T) {
	restoreDefaultLogger(t)
	restoreGlobalLevel(t)

	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warn message")
	logging.Error().Msg("error message")

	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Msg("json test")

	assert.Contains(t, buf.String(), "json test")
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	logger = logging.NewJSON(&buf)
	logger.Info().Msg("json again")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestNewConsole(t *testing.T) {
	logger := logging.NewConsole()
	logger.Info().Msg("console smoke test")
}

func TestLevelAndWithLevel(t *testing.T) {
	restoreDefaultLogger(t)

	var buf bytes.Buffer
	logging.SetDefault(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger := logging.Level(zerolog.WarnLevel)
	logger.Info().Msg("filtered")
	logger.Warn().Msg("kept")
	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "kept")

	buf.Reset()
	logging.WithLevel(zerolog.InfoLevel).Msg("dynamic level")
	assert.Contains(t, buf.String(), "dynamic level")
}

func TestErrAndWith(t *testing.T) {
	restoreDefaultLogger(t)

	var buf bytes.Buffer
	logging.SetDefault(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logging.Err(assert.AnError).Msg("error test")
	assert.Contains(t, buf.String(), assert.AnError.Error())

	buf.Reset()
	child := logging.With().Str("component", "engine").Logger()
	child.Info().Msg("with context")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithPair(ctx, "orders.csv")
	ctx = logging.WithFile(ctx, "left/orders.csv")

	logging.FromContext(ctx).Info().Msg("test message")

	assert.True(t, testLogger.Contains("orders.csv"))
	assert.True(t, testLogger.Contains("left/orders.csv"))
	assert.True(t, testLogger.Contains("test message"))
}

func TestTestLoggerCapture(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Msg("message 2")

	assert.True(t, tl.Contains("message 1"))
	assert.True(t, tl.Contains("message 2"))
	assert.Len(t, tl.Lines(), 2)
}
