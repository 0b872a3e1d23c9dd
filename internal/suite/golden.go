package suite

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/assert/cmpassert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/report"
	"github.com/roach88/unitrun/internal/runner"
	"github.com/roach88/unitrun/internal/testutil"
)

// RunWithGolden runs a suite and compares its JSON event stream against a
// golden file. The golden file is stored in testdata/golden/{s.Group}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/suite -update
//
// The run uses a fixed run ID so the stream is byte-stable.
func RunWithGolden(t *testing.T, s *Suite) error {
	t.Helper()

	stream, err := RunJSON(s)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Group, stream)
	return nil
}

// RunJSON runs suites with a fresh dispatcher (built-ins plus equal?) and
// returns the canonical JSON event stream.
func RunJSON(suites ...*Suite) ([]byte, error) {
	d := assert.NewDispatcher()
	if err := cmpassert.Register(d); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	jr := report.NewJSON(&buf)
	e := env.New(
		env.WithReporter(jr),
		env.WithRunIDGenerator(testutil.NewFixedRunIDGenerator("")),
	)
	if _, err := Run(e, d, runner.New(), suites...); err != nil {
		return nil, err
	}
	if err := jr.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
