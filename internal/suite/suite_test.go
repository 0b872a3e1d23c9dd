package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	s, err := Load("testdata/suites/arithmetic.yaml")
	require.NoError(t, err)

	assert.Equal(t, "arithmetic", s.Group)
	assert.Equal(t, "Integer arithmetic and error kinds", s.Description)
	assert.Equal(t, "testdata/suites/arithmetic.yaml", s.Path)
	require.Len(t, s.Units, 5)
	assert.Equal(t, "addition", s.Units[0].Name)
	assert.Len(t, s.Units[0].Assertions, 2)
	assert.Equal(t, "two plus two", s.Units[0].Assertions[0].Message)
	assert.Equal(t, "with negatives", s.Units[0].Assertions[1].Testing)
	assert.False(t, s.Units[3].IsTest(), "helper is a plain definition")
	assert.Equal(t, []string{"addition", "strings"}, s.Units[4].Run)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/suites/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
group: g
unit:
  - name: a
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing group",
			content: "units:\n  - name: a\n",
			wantErr: "group is required",
		},
		{
			name:    "no units",
			content: "group: g\n",
			wantErr: "units list is required",
		},
		{
			name:    "unnamed unit",
			content: "group: g\nunits:\n  - assertions:\n      - is: true\n",
			wantErr: "units[0]: name is required",
		},
		{
			name:    "duplicate unit",
			content: "group: g\nunits:\n  - name: a\n  - name: a\n",
			wantErr: `duplicate unit name "a"`,
		},
		{
			name:    "empty assertion",
			content: "group: g\nunits:\n  - name: a\n    assertions:\n      - message: hi\n",
			wantErr: "one of is or testing is required",
		},
		{
			name:    "is and testing",
			content: "group: g\nunits:\n  - name: a\n    assertions:\n      - is: true\n        testing: ctx\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "testing without nested",
			content: "group: g\nunits:\n  - name: a\n    assertions:\n      - testing: ctx\n",
			wantErr: "testing requires nested assertions",
		},
		{
			name:    "nested invalid",
			content: "group: g\nunits:\n  - name: a\n    assertions:\n      - testing: ctx\n        assertions:\n          - message: x\n",
			wantErr: "units[0].assertions[0].assertions[0]",
		},
		{
			name:    "unknown run target",
			content: "group: g\nunits:\n  - name: a\n    run: [b]\n",
			wantErr: `run references unknown unit "b"`,
		},
		{
			name:    "run plain definition",
			content: "group: g\nunits:\n  - name: a\n    run: [b]\n  - name: b\n",
			wantErr: `run references plain definition "b"`,
		},
		{
			name:    "run cycle",
			content: "group: g\nunits:\n  - name: a\n    run: [b]\n  - name: b\n    run: [a]\n",
			wantErr: "run cycle: a -> b -> a",
		},
		{
			name:    "unknown order entry",
			content: "group: g\norder: [z]\nunits:\n  - name: a\n    assertions:\n      - is: true\n",
			wantErr: `order[0]: unknown unit "z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPaths_Directory(t *testing.T) {
	dir := t.TempDir()
	writeSuite(t, dir, "b.yaml", "group: beta\nunits:\n  - name: x\n    assertions:\n      - is: true\n")
	writeSuite(t, dir, "a.yml", "group: alpha\nunits:\n  - name: x\n    assertions:\n      - is: true\n")
	writeSuite(t, dir, "notes.txt", "not a suite")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	suites, err := LoadPaths(dir)
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "alpha", suites[0].Group)
	assert.Equal(t, "beta", suites[1].Group)
}

func TestLoadPaths_DuplicateGroup(t *testing.T) {
	dir := t.TempDir()
	content := "group: same\nunits:\n  - name: x\n    assertions:\n      - is: true\n"
	a := writeSuite(t, dir, "a.yaml", content)
	b := writeSuite(t, dir, "b.yaml", content)

	_, err := LoadPaths(a, b)
	require.ErrorIs(t, err, ErrDuplicateGroup)
}

func TestLoadPaths_MissingPath(t *testing.T) {
	_, err := LoadPaths(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat")
}
