package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitrun/internal/testutil"
)

const passingSuite = `group: math
units:
  - name: addition
    assertions:
      - is: ["=", 4, ["+", 2, 2]]
`

const failingSuite = `group: broken
units:
  - name: a-fails
    assertions:
      - is: ["=", 5, ["+", 2, 2]]
        message: "off by one"
  - name: b-errors
    assertions:
      - is: ["=", 1, ["/", 1, 0]]
`

func writeSuiteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func executeTest(t *testing.T, root *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts := &TestOptions{
		RootOptions:    root,
		RunIDGenerator: testutil.NewFixedRunIDGenerator("cli-run"),
	}
	cmd := newTestCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "math.yaml", passingSuite)

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Testing math")
	assert.Contains(t, out, "Ran 1 tests containing 1 assertions.")
	assert.Contains(t, out, "0 failures, 0 errors.")
}

func TestTestCommandFailures(t *testing.T) {
	dir := t.TempDir()
	path := writeSuiteFile(t, dir, "broken.yaml", failingSuite)

	out, err := executeTest(t, &RootOptions{Format: "text"}, "--no-color", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "1 failures, 1 errors", err.Error())

	assert.Contains(t, out, "FAIL in (a-fails) (broken.yaml:5)")
	assert.Contains(t, out, "off by one")
	assert.Contains(t, out, "expected: (= 5 (+ 2 2))")
	assert.Contains(t, out, "  actual: (not (= 5 4))")
	assert.Contains(t, out, "ERROR in (b-errors) (broken.yaml:9)")
	assert.NotContains(t, out, "\x1b[")
}

func TestTestCommandFailFast(t *testing.T) {
	dir := t.TempDir()
	path := writeSuiteFile(t, dir, "broken.yaml", failingSuite)

	out, err := executeTest(t, &RootOptions{Format: "text"}, "--fail-fast", path)
	require.Error(t, err)
	assert.Equal(t, "1 failures, 0 errors", err.Error())
	assert.NotContains(t, out, "ERROR in")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "math.yaml", passingSuite)

	out, err := executeTest(t, &RootOptions{Format: "json"}, dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	for _, line := range lines {
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		assert.Equal(t, "cli-run", ev["run_id"])
	}
	assert.Contains(t, lines[0], `"kind":"begin-group"`)
	assert.Contains(t, lines[2], `"kind":"pass"`)
	assert.Equal(t, `{"counts":{"error":0,"fail":0,"pass":1,"units":1},"kind":"summary","run_id":"cli-run"}`, lines[5])
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"}, "/nonexistent/suites")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load suites")
}

func TestTestCommandCompileError(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "bad.yaml", `group: bad
units:
  - name: a
    assertions:
      - is: ["instance?", "widget", 1]
`)

	_, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown type "widget"`)
}

func TestTestCommandVerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "math.yaml", passingSuite)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newTestCommand(&TestOptions{RootOptions: &RootOptions{Format: "json", Verbose: true}})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "run completed")
	assert.Contains(t, errOut.String(), "assertion pass")
	assert.NotContains(t, out.String(), "run completed")
}
