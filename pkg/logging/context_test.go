package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/csvrecon/csvrecon/pkg/logging"
)

func bufferContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)
	return logging.WithLogger(context.Background(), &logger), buf
}

func TestFieldHelpersAnnotateContextLogger(t *testing.T) {
	tests := []struct {
		name  string
		apply func(context.Context) context.Context
		want  string
	}{
		{
			name:  "pair",
			apply: func(ctx context.Context) context.Context { return logging.WithPair(ctx, "orders.csv") },
			want:  `"pair":"orders.csv"`,
		},
		{
			name:  "file",
			apply: func(ctx context.Context) context.Context { return logging.WithFile(ctx, "left/orders.csv") },
			want:  `"file":"left/orders.csv"`,
		},
		{
			name:  "strategy",
			apply: func(ctx context.Context) context.Context { return logging.WithStrategy(ctx, "chunked") },
			want:  `"strategy":"chunked"`,
		},
		{
			name:  "operation",
			apply: func(ctx context.Context) context.Context { return logging.WithOperation(ctx, "reconcile") },
			want:  `"operation":"reconcile"`,
		},
		{
			name:  "error",
			apply: func(ctx context.Context) context.Context { return logging.WithError(ctx, assert.AnError) },
			want:  assert.AnError.Error(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, buf := bufferContext(t)
			ctx = tc.apply(ctx)
			logging.FromContext(ctx).Info().Msg("annotated")
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestWithFieldsAddsTypedFields(t *testing.T) {
	ctx, buf := bufferContext(t)
	ctx = logging.WithFields(ctx, map[string]any{
		"chunk":     3,
		"temp_path": "/tmp/work",
	})

	logging.FromContext(ctx).Info().Msg("fields")

	assert.Contains(t, buf.String(), `"chunk":3`)
	assert.Contains(t, buf.String(), `"temp_path":"/tmp/work"`)
}

func TestFieldHelpersChain(t *testing.T) {
	ctx, buf := bufferContext(t)
	ctx = logging.WithPair(ctx, "orders.csv")
	ctx = logging.WithStrategy(ctx, "streaming")
	ctx = logging.WithFile(ctx, "right/orders.csv")

	logging.FromContext(ctx).Info().Msg("chained")

	output := buf.String()
	assert.Contains(t, output, `"pair":"orders.csv"`)
	assert.Contains(t, output, `"strategy":"streaming"`)
	assert.Contains(t, output, `"file":"right/orders.csv"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, logging.FromContext(context.Background()))
	assert.NotNil(t, logging.FromContext(nil)) //nolint:staticcheck // fallback path
	assert.Equal(t, logging.FromContext(context.Background()), logging.Ctx(context.Background()))
}
