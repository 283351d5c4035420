// Package pairing discovers the file pairs to reconcile across two source
// directories. Discovery is non-recursive and deterministic: file lists are
// sorted lexicographically before pairing, so the same directories always
// yield the same pairs in the same order.
package pairing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/csvrecon/csvrecon/pkg/errors"
)

// Mode selects the policy for associating files across the two directories.
type Mode string

const (
	// OneToOne pairs files by base name, case-insensitively. Every file
	// from either side appears in exactly one pair; files without a
	// counterpart get a one-sided pair.
	OneToOne Mode = "one-to-one"

	// AllAgainstAll pairs every left file with every right file.
	AllAgainstAll Mode = "all-against-all"
)

// ParseMode parses a mode name. Unrecognized names are a validation error.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case OneToOne, "":
		return OneToOne, nil
	case AllAgainstAll:
		return AllAgainstAll, nil
	default:
		return "", errors.NewValidationError("pairingMode", s, "must be one-to-one or all-against-all")
	}
}

// Pair is one reconciliation unit: a labeled pair of file paths.
// An empty path means that side is missing; by construction no pair has
// both paths empty.
type Pair struct {
	Label     string
	LeftPath  string
	RightPath string
}

// Build discovers files in both directories and produces the pairs to
// reconcile under the given mode. Only immediate children with the given
// extension (e.g. ".csv", matched case-insensitively) are considered.
func Build(leftDir, rightDir string, mode Mode, ext string) ([]Pair, error) {
	leftFiles, err := listFiles(leftDir, ext)
	if err != nil {
		return nil, err
	}
	rightFiles, err := listFiles(rightDir, ext)
	if err != nil {
		return nil, err
	}

	switch mode {
	case AllAgainstAll:
		return crossProduct(leftFiles, rightFiles), nil
	default:
		return oneToOne(leftFiles, rightFiles), nil
	}
}

// listFiles returns the sorted full paths of matching immediate files.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// oneToOne pairs files by case-insensitive base name. Matched right-side
// entries are consumed from the lookup; leftovers of both sides become
// one-sided pairs, so every file appears in exactly one pair.
func oneToOne(leftFiles, rightFiles []string) []Pair {
	rightByName := make(map[string]string, len(rightFiles))
	for _, path := range rightFiles {
		rightByName[strings.ToLower(filepath.Base(path))] = path
	}

	pairs := make([]Pair, 0, len(leftFiles)+len(rightFiles))
	for _, leftPath := range leftFiles {
		name := strings.ToLower(filepath.Base(leftPath))
		pair := Pair{Label: filepath.Base(leftPath), LeftPath: leftPath}
		if rightPath, ok := rightByName[name]; ok {
			pair.RightPath = rightPath
			delete(rightByName, name)
		}
		pairs = append(pairs, pair)
	}

	// Remaining right files had no left counterpart.
	leftovers := make([]string, 0, len(rightByName))
	for _, path := range rightByName {
		leftovers = append(leftovers, path)
	}
	sort.Strings(leftovers)
	for _, rightPath := range leftovers {
		pairs = append(pairs, Pair{Label: filepath.Base(rightPath), RightPath: rightPath})
	}

	return pairs
}

// crossProduct pairs every left file with every right file.
func crossProduct(leftFiles, rightFiles []string) []Pair {
	pairs := make([]Pair, 0, len(leftFiles)*len(rightFiles))
	for _, leftPath := range leftFiles {
		base := strings.TrimSuffix(filepath.Base(leftPath), filepath.Ext(leftPath))
		for _, rightPath := range rightFiles {
			pairs = append(pairs, Pair{
				Label:     base + "_vs_" + filepath.Base(rightPath),
				LeftPath:  leftPath,
				RightPath: rightPath,
			})
		}
	}
	return pairs
}
