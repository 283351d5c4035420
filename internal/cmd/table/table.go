// Package table renders pairing plans and reconciliation results as console
// tables.
package table

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

// Result renders per-pair reconciliation outcomes with a totals footer.
func Result(result *reconcile.Result) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"Pair", "Left", "Right", "Matched", "Only Left", "Only Right", "Status", "Duration"})
	tw.SetColumnConfigs(numericColumns(2, 3, 4, 5, 6, 8))

	for _, comp := range result.Pairs {
		status := "ok"
		if !comp.Success() {
			status = "failed"
		}
		tw.AppendRow(table.Row{
			comp.Label,
			comp.TotalLeft,
			comp.TotalRight,
			comp.MatchedCount,
			comp.OnlyLeftCount,
			comp.OnlyRightCount,
			status,
			comp.Duration.Round(time.Millisecond),
		})
	}

	tw.AppendFooter(table.Row{
		"TOTAL",
		result.TotalLeft(),
		result.TotalRight(),
		result.TotalMatched(),
		result.TotalOnlyLeft(),
		result.TotalOnlyRight(),
		fmt.Sprintf("%d/%d ok", result.SuccessfulCount(), len(result.Pairs)),
		result.TotalDuration.Round(time.Millisecond),
	})

	return tw.Render()
}

// Pairs renders the pairing plan a directory combination produces.
func Pairs(pairs []pairing.Pair) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"Label", "Left", "Right"})

	for _, pair := range pairs {
		tw.AppendRow(table.Row{pair.Label, orMissing(pair.LeftPath), orMissing(pair.RightPath)})
	}

	return tw.Render()
}

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// Keep footer cells like "3/4 ok" as written instead of uppercasing.
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

// numericColumns right-aligns the given one-based columns, keeping their
// headers left-aligned like the rest of the table.
func numericColumns(numbers ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		configs = append(configs, table.ColumnConfig{
			Number:      n,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	return configs
}

func orMissing(path string) string {
	if path == "" {
		return "(missing)"
	}
	return path
}
