package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvrecon/csvrecon/pkg/errors"
)

const presetYAML = `presets:
  - name: by-id
    fields: [Id]
  - name: by-person
    fields: [FirstName, LastName]
    caseSensitive: true
    trim: false
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(presetYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"by-id", "by-person"}, set.Names())

	rule, err := set.Rule("by-id")
	require.NoError(t, err)
	assert.Equal(t, []string{"Id"}, rule.Fields)
	assert.False(t, rule.CaseSensitive)
	assert.True(t, rule.Trim, "trim defaults to true when omitted")

	rule, err = set.Rule("by-person")
	require.NoError(t, err)
	assert.Equal(t, []string{"FirstName", "LastName"}, rule.Fields)
	assert.True(t, rule.CaseSensitive)
	assert.False(t, rule.Trim)
}

func TestParseRejectsBadPresets(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "presets:\n  - fields: [Id]\n",
			want: "preset name is required",
		},
		{
			name: "duplicate name",
			yaml: "presets:\n  - name: a\n    fields: [Id]\n  - name: a\n    fields: [Id]\n",
			want: "duplicate preset name",
		},
		{
			name: "no fields",
			yaml: "presets:\n  - name: a\n",
			want: "at least one field",
		},
		{
			name: "invalid yaml",
			yaml: "presets: [",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestRuleUnknownPreset(t *testing.T) {
	set, err := Parse([]byte(presetYAML))
	require.NoError(t, err)

	_, err = set.Rule("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
	assert.Contains(t, err.Error(), "by-id")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(presetYAML), 0o644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "rule file not found")
}
