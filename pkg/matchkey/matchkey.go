// Package matchkey builds normalized composite matching keys from records.
// A matching rule names the fields that participate in the key and how their
// values are normalized; the generated key is the join key for every
// downstream reconciliation strategy, so generation must be deterministic:
// the same record and rule always produce the same key.
package matchkey

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// Rule describes how a matching key is derived from a record.
// Field order is significant: [A,B] and [B,A] generate different keys
// unless the values happen to be equal.
type Rule struct {
	// Fields are the column names that form the composite key, in order.
	Fields []string

	// CaseSensitive disables case folding when true. Folding uses a
	// locale-invariant Unicode case mapping.
	CaseSensitive bool

	// Trim strips leading and trailing whitespace from each value.
	Trim bool
}

// DefaultRule returns a rule over the given fields with the default
// normalization: case-insensitive, trimmed.
func DefaultRule(fields ...string) Rule {
	return Rule{Fields: fields, CaseSensitive: false, Trim: true}
}

// Validate checks the rule's invariants. A rule must name at least one field
// and no field entry may be blank. Violations surface at configuration time,
// never at match time.
func (r Rule) Validate() error {
	if len(r.Fields) == 0 {
		return errors.NewValidationError("fields", r.Fields, "matching rule must contain at least one field")
	}
	for _, f := range r.Fields {
		if strings.TrimSpace(f) == "" {
			return errors.NewValidationError("fields", r.Fields, "matching rule field entries must not be blank")
		}
	}
	return nil
}

// Generator produces matching keys for a validated rule.
type Generator struct {
	rule   Rule
	folder cases.Caser
}

// NewGenerator validates the rule and returns a key generator for it.
func NewGenerator(rule Rule) (*Generator, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		rule:   rule,
		folder: cases.Fold(),
	}, nil
}

// Rule returns the rule the generator was built from.
func (g *Generator) Rule() Rule {
	return g.rule
}

// Key derives the matching key for a record. A field absent from the record
// contributes an empty string, never an error. A single-field rule returns
// the normalized value directly; multi-field rules join the normalized
// values with the key delimiter. No escaping is applied, so a value that
// contains the delimiter can collide with a different value combination.
func (g *Generator) Key(rec *record.Record) string {
	if len(g.rule.Fields) == 1 {
		return g.Normalize(rec.Get(g.rule.Fields[0]))
	}
	parts := make([]string, len(g.rule.Fields))
	for i, field := range g.rule.Fields {
		parts[i] = g.Normalize(rec.Get(field))
	}
	return strings.Join(parts, constants.KeyDelimiter)
}

// Normalize applies the rule's trim and case-folding settings to a value.
func (g *Generator) Normalize(value string) string {
	if g.rule.Trim {
		value = strings.TrimSpace(value)
	}
	if !g.rule.CaseSensitive {
		value = g.folder.String(value)
	}
	return value
}
