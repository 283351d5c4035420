// Package constants provides shared constants used throughout the csvrecon codebase.
// This includes defaults, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

// Reconciliation defaults
const (
	// DefaultDelimiter is the field delimiter used when none is configured
	DefaultDelimiter = ','

	// KeyDelimiter joins normalized field values into a composite matching key.
	// No escaping is applied; a field value containing the delimiter can in
	// principle collide with a different field-value combination.
	KeyDelimiter = "|"

	// ConflictSuffix is appended to a column name when both sides of a matched
	// record carry the same column with different values
	ConflictSuffix = "_B"

	// DefaultExtension is the file extension matched when pairing directories
	DefaultExtension = ".csv"

	// DefaultOutputDir is the directory reconciliation outputs are written to
	DefaultOutputDir = "Output"

	// DefaultChunkSizeMB is the default chunk size for the chunked strategy
	DefaultChunkSizeMB = 1024

	// MergedSourceSeparator joins the two source file names of a merged record
	MergedSourceSeparator = " + "
)

// Footprint estimation constants. A buffered record's in-memory cost is
// approximated as the sum of its field name and value byte lengths plus
// these overheads. Go strings are byte-addressed, so a 1x multiplier is used.
const (
	// RecordOverheadBytes is the fixed per-record overhead estimate
	RecordOverheadBytes = 96

	// FieldOverheadBytes is the fixed per-field overhead estimate
	// (map entry plus two string headers)
	FieldOverheadBytes = 48
)

// Output file names written per pair under the output directory
const (
	// MatchedFileName holds records present in both sides
	MatchedFileName = "matched.csv"

	// OnlyLeftFileName holds records present only in the left source
	OnlyLeftFileName = "only-in-left.csv"

	// OnlyRightFileName holds records present only in the right source
	OnlyRightFileName = "only-in-right.csv"

	// SummaryFileName holds the JSON summary (per pair and global)
	SummaryFileName = "summary.json"

	// TempDirPrefix prefixes per-pair temporary working directories
	TempDirPrefix = "csvrecon"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// WriteBufferSize is the buffer size for streamed partition writers
	WriteBufferSize = 4096

	// CancellationCheckInterval is how many rows are processed between
	// context cancellation checks in streaming loops
	CancellationCheckInterval = 256
)
