// Package rules loads named matching-rule presets from YAML files, so a
// reconciliation run can reference a rule by name instead of repeating its
// field list on the command line.
package rules

import (
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
)

// Preset is one named matching rule in a preset file.
type Preset struct {
	Name          string   `yaml:"name"`
	Fields        []string `yaml:"fields"`
	CaseSensitive bool     `yaml:"caseSensitive"`
	// Trim defaults to true when omitted.
	Trim *bool `yaml:"trim"`
}

// Rule converts the preset to an engine matching rule.
func (p Preset) Rule() matchkey.Rule {
	trim := true
	if p.Trim != nil {
		trim = *p.Trim
	}
	return matchkey.Rule{
		Fields:        p.Fields,
		CaseSensitive: p.CaseSensitive,
		Trim:          trim,
	}
}

// Set is a collection of presets indexed by name.
type Set struct {
	presets map[string]Preset
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Load reads and parses a preset file. A missing file is reported as a
// not-found error so callers can distinguish it from an unreadable one.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingFileError("rule", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return set, nil
}

// Parse parses preset YAML. Every preset must have a unique non-empty name,
// at least one field, and a valid resulting rule.
func Parse(data []byte) (*Set, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	set := &Set{presets: make(map[string]Preset, len(file.Presets))}
	for _, preset := range file.Presets {
		name := strings.TrimSpace(preset.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", preset.Name, "preset name is required")
		}
		if _, dup := set.presets[name]; dup {
			return nil, errors.NewValidationError("name", name, "duplicate preset name")
		}
		if err := preset.Rule().Validate(); err != nil {
			return nil, errors.WrapValidation(name, err)
		}
		preset.Name = name
		set.presets[name] = preset
	}
	return set, nil
}

// Rule returns the matching rule for a preset name.
func (s *Set) Rule(name string) (matchkey.Rule, error) {
	preset, ok := s.presets[name]
	if !ok {
		return matchkey.Rule{}, errors.NewValidationError("preset", name,
			"unknown preset (available: "+strings.Join(s.Names(), ", ")+")")
	}
	return preset.Rule(), nil
}

// Names returns the preset names sorted lexicographically.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of presets.
func (s *Set) Len() int {
	return len(s.presets)
}
