package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

type stubApp struct {
	opts *reconcile.Options
}

func (s *stubApp) Options() (*reconcile.Options, error) { return s.opts, nil }

func (s *stubApp) Logger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testOptions(t *testing.T) *reconcile.Options {
	t.Helper()
	opts := reconcile.DefaultOptions()
	opts.Rule = matchkey.DefaultRule("Id")
	opts.LeftDir = t.TempDir()
	opts.RightDir = t.TempDir()
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	opts.TempDir = t.TempDir()
	return opts
}

func execute(t *testing.T, ctx context.Context, opts *reconcile.Options) error {
	t.Helper()
	cmd := NewCommand(&stubApp{opts: opts})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	return cmd.ExecuteContext(ctx)
}

func TestRunCommandWritesOutput(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.LeftDir, "accounts.csv", "Id,Name\n1,Alice\n2,Bob\n")
	writeFile(t, opts.RightDir, "accounts.csv", "Id,Name\n2,Bob\n3,Carol\n")

	require.NoError(t, execute(t, context.Background(), opts))

	_, err := os.Stat(filepath.Join(opts.OutputDir, constants.SummaryFileName))
	assert.NoError(t, err, "global summary is written")
}

func TestRunCommandReportsPairFailure(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.LeftDir, "accounts.csv", "Id,Name\n1,Alice\n")

	err := execute(t, context.Background(), opts)
	assert.ErrorIs(t, err, errors.ErrPairFailed)
}

func TestRunCommandCanceled(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.LeftDir, "accounts.csv", "Id,Name\n1,Alice\n")
	writeFile(t, opts.RightDir, "accounts.csv", "Id,Name\n1,Alice\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := execute(t, ctx, opts)
	assert.ErrorIs(t, err, errors.ErrCanceled)
}
