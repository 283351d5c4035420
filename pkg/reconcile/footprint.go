package reconcile

import (
	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// EstimateFootprint approximates a record's in-memory size in bytes: the
// string bytes of every field name and value plus fixed per-field and
// per-record overheads for map housekeeping and headers.
func EstimateFootprint(rec *record.Record) int64 {
	size := int64(constants.RecordOverheadBytes)
	for name, value := range rec.Fields {
		size += int64(len(name) + len(value) + constants.FieldOverheadBytes)
	}
	return size
}

// chunk is one bounded slice of the left side, indexed by matching key with
// first-seen key order preserved.
type chunk struct {
	byKey map[string]*record.Record
	order []string
}

func newChunk() *chunk {
	return &chunk{byKey: make(map[string]*record.Record)}
}

func (c *chunk) insert(key string, rec *record.Record) {
	if _, dup := c.byKey[key]; !dup {
		c.order = append(c.order, key)
	}
	c.byKey[key] = rec
}

func (c *chunk) empty() bool {
	return len(c.order) == 0
}
