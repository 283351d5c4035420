package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

func TestResult(t *testing.T) {
	result := &reconcile.Result{
		Pairs: []*reconcile.FileComparison{
			{
				Label:          "accounts",
				TotalLeft:      3,
				TotalRight:     3,
				MatchedCount:   2,
				OnlyLeftCount:  1,
				OnlyRightCount: 1,
				Duration:       12 * time.Millisecond,
			},
			{
				Label:  "broken",
				Errors: []string{"left file not found: x"},
			},
		},
		TotalDuration: 20 * time.Millisecond,
	}

	out := Result(result)
	assert.Contains(t, out, "accounts")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "1/2 ok")
}

func TestPairs(t *testing.T) {
	out := Pairs([]pairing.Pair{
		{Label: "a", LeftPath: "/l/a.csv", RightPath: "/r/a.csv"},
		{Label: "b", LeftPath: "/l/b.csv"},
	})
	assert.Contains(t, out, "/l/a.csv")
	assert.Contains(t, out, "(missing)")
}
