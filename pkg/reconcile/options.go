// Package reconcile implements the reconciliation engine: given a pair of
// delimited files and a matching rule, it partitions records into three sets
// (present in both, only in the left source, only in the right source).
//
// Three interchangeable strategies implement the same contract: an in-memory
// join for small files, a streaming join that writes its output to temporary
// files, and a chunked join that bounds memory by processing the left side
// in fixed-size windows. All three produce identical partitions for the same
// inputs; they are optimization variants, not behavior variants.
package reconcile

import (
	"os"
	"runtime"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
)

const bytesPerMB = 1024 * 1024

// Options is the configuration value object consumed by the engine and
// exposed to the CLI front end.
type Options struct {
	// LeftDir and RightDir are the two source directories.
	LeftDir  string
	RightDir string

	// OutputDir receives the per-pair output files and JSON summaries.
	OutputDir string

	// Rule is the matching rule used to derive join keys.
	Rule matchkey.Rule

	// Mode is the file-pairing policy.
	Mode pairing.Mode

	// Concurrency caps the number of pairs reconciled in parallel.
	// Zero means the available processor count.
	Concurrency int

	// Delimiter separates fields in both input and output files.
	Delimiter rune

	// HasHeader treats the first row of each input file as column names.
	HasHeader bool

	// MemoryCeilingMB is the explicit memory ceiling for strategy
	// selection. Zero means auto (twice the chunk size).
	MemoryCeilingMB int

	// ChunkSizeMB bounds the estimated footprint of a single left-side
	// chunk in the chunked strategy.
	ChunkSizeMB int

	// StreamingOutput writes partition output incrementally to temp files
	// instead of retaining records in memory.
	StreamingOutput bool

	// RetainRecords keeps the partitioned records on the comparison
	// result when the in-memory strategy runs.
	RetainRecords bool

	// Extension filters the files considered during pairing.
	Extension string

	// TempDir is the root for per-pair temporary working directories.
	TempDir string
}

// DefaultOptions returns options with every documented default applied.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       constants.DefaultOutputDir,
		Mode:            pairing.OneToOne,
		Concurrency:     runtime.NumCPU(),
		Delimiter:       constants.DefaultDelimiter,
		HasHeader:       true,
		MemoryCeilingMB: 0,
		ChunkSizeMB:     constants.DefaultChunkSizeMB,
		StreamingOutput: true,
		RetainRecords:   false,
		Extension:       constants.DefaultExtension,
		TempDir:         os.TempDir(),
	}
}

// Validate checks every configuration invariant and reports one error per
// violation, joined. Validation failures are fatal: they are raised before
// any processing starts.
func (o *Options) Validate() error {
	var errs []error

	if o.LeftDir == "" {
		errs = append(errs, errors.NewValidationError("leftDir", o.LeftDir, "left directory is required"))
	} else if info, err := os.Stat(o.LeftDir); err != nil || !info.IsDir() {
		errs = append(errs, errors.NewValidationError("leftDir", o.LeftDir, "left directory does not exist"))
	}

	if o.RightDir == "" {
		errs = append(errs, errors.NewValidationError("rightDir", o.RightDir, "right directory is required"))
	} else if info, err := os.Stat(o.RightDir); err != nil || !info.IsDir() {
		errs = append(errs, errors.NewValidationError("rightDir", o.RightDir, "right directory does not exist"))
	}

	if err := o.Rule.Validate(); err != nil {
		errs = append(errs, err)
	}

	if o.ChunkSizeMB <= 0 {
		errs = append(errs, errors.NewValidationError("chunkSizeMB", o.ChunkSizeMB, "chunk size must be positive"))
	}

	if o.MemoryCeilingMB < 0 {
		errs = append(errs, errors.NewValidationError("memoryCeilingMB", o.MemoryCeilingMB, "memory ceiling must not be negative"))
	}

	if o.Concurrency < 0 {
		errs = append(errs, errors.NewValidationError("concurrency", o.Concurrency, "concurrency must not be negative"))
	}

	if o.Delimiter == 0 {
		errs = append(errs, errors.NewValidationError("delimiter", o.Delimiter, "delimiter is required"))
	}

	return errors.Join(errs...)
}

// ReadOptions returns the reader options derived from the configuration.
func (o *Options) ReadOptions() csvio.Options {
	return csvio.Options{Delimiter: o.Delimiter, HasHeader: o.HasHeader}
}

// ChunkSizeBytes returns the chunk size in bytes.
func (o *Options) ChunkSizeBytes() int64 {
	return int64(o.ChunkSizeMB) * bytesPerMB
}

// ThresholdBytes returns the combined-input-size threshold above which the
// chunked strategy is selected: the configured memory ceiling or twice the
// chunk size, whichever is larger.
func (o *Options) ThresholdBytes() int64 {
	ceiling := int64(o.MemoryCeilingMB) * bytesPerMB
	if twice := 2 * o.ChunkSizeBytes(); twice > ceiling {
		return twice
	}
	return ceiling
}
