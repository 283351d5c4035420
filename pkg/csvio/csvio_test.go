package csvio_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/record"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", "Id,Name\n1,Alice\n2,Bob\n")

	records, err := csvio.ReadAll(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].Get("Id"))
	assert.Equal(t, "Alice", records[0].Get("Name"))
	assert.Equal(t, "people.csv", records[0].SourceFile)
	assert.Equal(t, 2, records[0].LineNumber)
	assert.Equal(t, 3, records[1].LineNumber)
}

func TestReadAllMissingFile(t *testing.T) {
	_, err := csvio.ReadAll(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), csvio.DefaultOptions())
	assert.Error(t, err)
}

func TestScannerStreams(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "A,B\nx,y\nz,w\n")

	scanner, err := csvio.Open(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	defer scanner.Close()

	assert.Equal(t, []string{"A", "B"}, scanner.Header())

	var values []string
	for scanner.Next() {
		values = append(values, scanner.Record().Get("A"))
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"x", "z"}, values)
	assert.NoError(t, scanner.Close())
	assert.NoError(t, scanner.Close()) // idempotent
}

func TestScannerCancellation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "A\n1\n2\n3\n")

	ctx, cancel := context.WithCancel(context.Background())
	scanner, err := csvio.Open(ctx, path, csvio.DefaultOptions())
	require.NoError(t, err)
	defer scanner.Close()

	cancel()
	assert.False(t, scanner.Next())
	assert.ErrorIs(t, scanner.Err(), context.Canceled)
}

func TestScannerCancellationCheckedAtInterval(t *testing.T) {
	total := constants.CancellationCheckInterval + 8
	var b strings.Builder
	b.WriteString("A\n")
	for i := 0; i < total; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", b.String())

	ctx, cancel := context.WithCancel(context.Background())
	scanner, err := csvio.Open(ctx, path, csvio.DefaultOptions())
	require.NoError(t, err)
	defer scanner.Close()

	require.True(t, scanner.Next())
	cancel()

	read := 1
	for scanner.Next() {
		read++
	}
	assert.ErrorIs(t, scanner.Err(), context.Canceled)
	assert.Equal(t, constants.CancellationCheckInterval, read,
		"cancellation takes effect at the next interval check")
}

func TestNoHeaderUsesPositionalColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "1,Alice\n2,Bob\n")

	opts := csvio.Options{Delimiter: ',', HasHeader: false}
	records, err := csvio.ReadAll(context.Background(), path, opts)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].Get("column_1"))
	assert.Equal(t, "Alice", records[0].Get("column_2"))
	assert.Equal(t, 1, records[0].LineNumber)
}

func TestCustomDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "Id;Name\n1;Alice\n")

	opts := csvio.Options{Delimiter: ';', HasHeader: true}
	records, err := csvio.ReadAll(context.Background(), path, opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].Get("Name"))
}

func TestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "")

	records, err := csvio.ReadAll(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRowWiderThanHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "wide.csv", "A,B\n1,2,3\n")

	records, err := csvio.ReadAll(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "3", records[0].Get("column_3"))
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"plain", []string{"A", "B"}, []string{"A", "B"}},
		{"blank cells", []string{"", "B", " "}, []string{"column_1", "B", "column_3"}},
		{"duplicates", []string{"Id", "Id", "Id"}, []string{"Id", "Id_2", "Id_3"}},
		{"trims whitespace", []string{" Id ", "Name"}, []string{"Id", "Name"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, csvio.NormalizeHeader(tc.in))
		})
	}
}

func TestWriteAllSortedUnionHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	a := record.New("x.csv", 1)
	a.Set("B", "1")
	a.Set("A", "2")
	b := record.New("x.csv", 2)
	b.Set("C", "3")

	require.NoError(t, csvio.WriteAll(path, []*record.Record{a, b}, ','))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B,C\n2,1,\n,,3\n", string(content))
}

func TestStreamWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	writer, err := csvio.NewStreamWriter(path, ',', []string{"Id", "Name"})
	require.NoError(t, err)

	rec := record.New("x.csv", 1)
	rec.Set("Id", "1")
	rec.Set("Name", "Alice")
	require.NoError(t, writer.WriteOne(rec))
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close()) // idempotent

	records, err := csvio.ReadAll(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].Get("Name"))
}

func TestStreamWriterHeaderlessKeepsCellOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	writer, err := csvio.NewStreamWriter(path, ',', nil)
	require.NoError(t, err)

	rec := record.New("x.csv", 1)
	for i := 1; i <= 11; i++ {
		rec.Set(fmt.Sprintf("column_%d", i), fmt.Sprintf("v%d", i))
	}
	require.NoError(t, writer.WriteOne(rec))
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1,v2,v3,v4,v5,v6,v7,v8,v9,v10,v11\n", string(content),
		"no header row, cells in numeric column order")
}

func TestStreamWriterAppendsUndeclaredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	writer, err := csvio.NewStreamWriter(path, ',', []string{"Id", "Name"})
	require.NoError(t, err)

	rec := record.New("x.csv", 1)
	rec.Set("Id", "1")
	rec.Set("Name", "Alice")
	rec.Set("column_3", "extra")
	require.NoError(t, writer.WriteOne(rec))
	require.NoError(t, writer.Close())

	records, err := csvio.ReadAll(context.Background(), path, csvio.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "extra", records[0].Get("column_3"),
		"fields beyond the declared columns are appended, not dropped")
}
