// Package report turns reconciliation results into their final on-disk
// form: per-pair output files under the output directory, a per-pair JSON
// summary, and a global JSON summary. Temp files produced by the streaming
// strategies are moved here and their working directories removed.
package report

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

// PairSummary is the JSON shape of one pair's outcome.
type PairSummary struct {
	Label          string   `json:"label"`
	ExistsLeft     bool     `json:"existsLeft"`
	ExistsRight    bool     `json:"existsRight"`
	TotalLeft      int      `json:"totalLeft"`
	TotalRight     int      `json:"totalRight"`
	MatchedCount   int      `json:"matchedCount"`
	OnlyLeftCount  int      `json:"onlyLeftCount"`
	OnlyRightCount int      `json:"onlyRightCount"`
	DurationMS     int64    `json:"durationMs"`
	Success        bool     `json:"success"`
	Errors         []string `json:"errors"`
}

// Summary is the JSON shape of the whole run.
type Summary struct {
	GeneratedAt    time.Time     `json:"generatedAt"`
	TotalLeft      int           `json:"totalLeft"`
	TotalRight     int           `json:"totalRight"`
	TotalMatched   int           `json:"totalMatched"`
	TotalOnlyLeft  int           `json:"totalOnlyLeft"`
	TotalOnlyRight int           `json:"totalOnlyRight"`
	Successful     int           `json:"successfulPairs"`
	Failed         int           `json:"failedPairs"`
	MissingLeft    int           `json:"missingLeftFiles"`
	MissingRight   int           `json:"missingRightFiles"`
	DurationMS     int64         `json:"durationMs"`
	Success        bool          `json:"success"`
	Pairs          []PairSummary `json:"pairs"`
}

// Generator writes reconciliation output under a single output directory.
type Generator struct {
	outputDir string
	delimiter rune
}

// NewGenerator creates a report generator.
func NewGenerator(outputDir string, delimiter rune) *Generator {
	return &Generator{outputDir: outputDir, delimiter: delimiter}
}

// Write finalizes every pair's output and writes the global summary.
// Per-pair failures are logged and recorded on the pair; only a failure to
// write the global summary is returned.
func (g *Generator) Write(ctx context.Context, result *reconcile.Result) error {
	for _, comp := range result.Pairs {
		if err := g.writePair(ctx, comp); err != nil {
			logging.FromContext(ctx).Error().
				Err(err).
				Str("pair", comp.Label).
				Msg("Failed to write pair output")
			comp.AddError(err)
		}
	}
	return g.writeGlobalSummary(result)
}

// writePair materializes one pair's partition files and its summary.json in
// <outputDir>/<label>/.
func (g *Generator) writePair(ctx context.Context, comp *reconcile.FileComparison) error {
	dir := filepath.Join(g.outputDir, comp.Label)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	if comp.TempDir != "" {
		if err := g.collectTempOutputs(ctx, comp, dir); err != nil {
			return err
		}
	} else if comp.Matched != nil || comp.OnlyLeft != nil || comp.OnlyRight != nil {
		if err := g.writeRetained(comp, dir); err != nil {
			return err
		}
	}

	return writeJSON(filepath.Join(dir, constants.SummaryFileName), summarizePair(comp))
}

// collectTempOutputs moves the pair's temp partition files into the final
// directory and removes the temp dir. A plain copy is used so the move works
// across filesystems.
func (g *Generator) collectTempOutputs(ctx context.Context, comp *reconcile.FileComparison, dir string) error {
	moves := []struct {
		src  *string
		name string
	}{
		{&comp.MatchedPath, constants.MatchedFileName},
		{&comp.OnlyLeftPath, constants.OnlyLeftFileName},
		{&comp.OnlyRightPath, constants.OnlyRightFileName},
	}
	for _, m := range moves {
		if *m.src == "" {
			continue
		}
		dst := filepath.Join(dir, m.name)
		if err := copyFile(*m.src, dst); err != nil {
			return err
		}
		*m.src = dst
	}

	if err := os.RemoveAll(comp.TempDir); err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("dir", comp.TempDir).
			Msg("Failed to remove temp dir")
	}
	comp.TempDir = ""
	return nil
}

// writeRetained writes the in-memory partitions of a record-retaining run.
func (g *Generator) writeRetained(comp *reconcile.FileComparison, dir string) error {
	comp.MatchedPath = filepath.Join(dir, constants.MatchedFileName)
	if err := csvio.WriteAll(comp.MatchedPath, comp.Matched, g.delimiter); err != nil {
		return err
	}
	comp.OnlyLeftPath = filepath.Join(dir, constants.OnlyLeftFileName)
	if err := csvio.WriteAll(comp.OnlyLeftPath, comp.OnlyLeft, g.delimiter); err != nil {
		return err
	}
	comp.OnlyRightPath = filepath.Join(dir, constants.OnlyRightFileName)
	return csvio.WriteAll(comp.OnlyRightPath, comp.OnlyRight, g.delimiter)
}

func (g *Generator) writeGlobalSummary(result *reconcile.Result) error {
	if err := os.MkdirAll(g.outputDir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", g.outputDir, err)
	}
	return writeJSON(filepath.Join(g.outputDir, constants.SummaryFileName), Summarize(result))
}

// Summarize converts a result into its JSON summary shape.
func Summarize(result *reconcile.Result) Summary {
	pairs := make([]PairSummary, 0, len(result.Pairs))
	for _, comp := range result.Pairs {
		pairs = append(pairs, summarizePair(comp))
	}
	return Summary{
		GeneratedAt:    time.Now().UTC(),
		TotalLeft:      result.TotalLeft(),
		TotalRight:     result.TotalRight(),
		TotalMatched:   result.TotalMatched(),
		TotalOnlyLeft:  result.TotalOnlyLeft(),
		TotalOnlyRight: result.TotalOnlyRight(),
		Successful:     result.SuccessfulCount(),
		Failed:         result.FailedCount(),
		MissingLeft:    result.MissingLeft(),
		MissingRight:   result.MissingRight(),
		DurationMS:     result.TotalDuration.Milliseconds(),
		Success:        result.Success(),
		Pairs:          pairs,
	}
}

func summarizePair(comp *reconcile.FileComparison) PairSummary {
	errs := comp.Errors
	if errs == nil {
		errs = []string{}
	}
	return PairSummary{
		Label:          comp.Label,
		ExistsLeft:     comp.ExistsLeft,
		ExistsRight:    comp.ExistsRight,
		TotalLeft:      comp.TotalLeft,
		TotalRight:     comp.TotalRight,
		MatchedCount:   comp.MatchedCount,
		OnlyLeftCount:  comp.OnlyLeftCount,
		OnlyRightCount: comp.OnlyRightCount,
		DurationMS:     comp.Duration.Milliseconds(),
		Success:        comp.Success(),
		Errors:         errs,
	}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapIO("write", dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.WrapIO("close", dst, err)
	}
	return nil
}
