package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csvrecon/csvrecon/pkg/record"
)

func TestGetAbsentColumn(t *testing.T) {
	rec := record.New("a.csv", 1)
	rec.Set("Id", "1")

	assert.Equal(t, "1", rec.Get("Id"))
	assert.Equal(t, "", rec.Get("Missing"))
	assert.False(t, rec.Has("Missing"))
}

func TestClone(t *testing.T) {
	rec := record.New("a.csv", 3)
	rec.Set("Id", "1")

	clone := rec.Clone()
	clone.Set("Id", "2")

	assert.Equal(t, "1", rec.Get("Id"))
	assert.Equal(t, "2", clone.Get("Id"))
	assert.Equal(t, "a.csv", clone.SourceFile)
	assert.Equal(t, 3, clone.LineNumber)
}

func TestMergeConflictingColumn(t *testing.T) {
	left := record.New("left.csv", 2)
	left.Set("Id", "1")
	left.Set("Amount", "10")

	right := record.New("right.csv", 5)
	right.Set("Id", "1")
	right.Set("Amount", "20")

	merged := record.Merge(left, right)

	assert.Equal(t, map[string]string{
		"Id":       "1",
		"Amount":   "10",
		"Amount_B": "20",
	}, merged.Fields)
	assert.Equal(t, "left.csv + right.csv", merged.SourceFile)
	assert.Equal(t, 2, merged.LineNumber)
}

func TestMergeNewAndIdenticalColumns(t *testing.T) {
	left := record.New("left.csv", 1)
	left.Set("Id", "1")
	left.Set("Name", "Jo")

	right := record.New("right.csv", 1)
	right.Set("Id", "1")
	right.Set("City", "Oslo")

	merged := record.Merge(left, right)

	// Identical Id collapses, new City is added.
	assert.Equal(t, map[string]string{
		"Id":   "1",
		"Name": "Jo",
		"City": "Oslo",
	}, merged.Fields)
}

func TestColumnUnion(t *testing.T) {
	a := record.New("a.csv", 1)
	a.Set("B", "1")
	a.Set("A", "2")
	b := record.New("a.csv", 2)
	b.Set("C", "3")

	assert.Equal(t, []string{"A", "B", "C"}, record.ColumnUnion([]*record.Record{a, b}))
	assert.Empty(t, record.ColumnUnion(nil))
}
