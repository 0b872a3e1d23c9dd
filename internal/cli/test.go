package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/assert/cmpassert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/event"
	"github.com/roach88/unitrun/internal/report"
	"github.com/roach88/unitrun/internal/runner"
	"github.com/roach88/unitrun/internal/suite"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	FailFast     bool   // stop after the first fail or error
	NoColor      bool   // disable ANSI color in text output
	OTLPEndpoint string // export run spans to this OTLP/gRPC endpoint
	OTLPInsecure bool   // plaintext OTLP connection

	// RunIDGenerator allows overriding run ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator env.RunIDGenerator
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}
	return newTestCommand(opts)
}

func newTestCommand(opts *TestOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <path>...",
		Short: "Run test suites",
		Long: `Run YAML test suites.

Each path is a suite file or a directory of .yaml/.yml suites. Groups run in
id order and units within a group run in name order. Text output follows the
clojure.test format; --format json emits one canonical JSON event per line.

Exit codes:
  0 - All assertions passed
  1 - One or more assertions failed or errored
  2 - Command error (invalid paths, invalid suites, aborted run)

Examples:
  unitrun test ./suites
  unitrun test ./suites/math.yaml --fail-fast
  unitrun test ./suites --format json
  unitrun test ./suites --otlp-endpoint localhost:4317 --otlp-insecure`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop after the first failure or error")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.OTLPEndpoint, "otlp-endpoint", "", "export run spans to an OTLP/gRPC endpoint")
	cmd.Flags().BoolVar(&opts.OTLPInsecure, "otlp-insecure", false, "use a plaintext OTLP connection")

	return cmd
}

// newDispatcher returns a dispatcher with the built-in tags and equal?.
func newDispatcher() (*assert.Dispatcher, error) {
	d := assert.NewDispatcher()
	if err := cmpassert.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

func runTests(ctx context.Context, opts *TestOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	suites, err := suite.LoadPaths(paths...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suites", err)
	}
	logger.Debug("suites loaded", "count", len(suites))

	d, err := newDispatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register assertion tags", err)
	}

	r := runner.New(runner.WithLogger(logger))
	units, err := suite.Units(d, r, suites...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile suites", err)
	}

	out := cmd.OutOrStdout()
	primary, flush := newReporter(opts, out)
	reporters := report.Tee{primary}
	if opts.Verbose {
		reporters = append(reporters, report.NewSlog(logger))
	}
	if opts.OTLPEndpoint != "" {
		tel, err := newTelemetry(ctx, opts.OTLPEndpoint, opts.OTLPInsecure, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start trace export", err)
		}
		defer tel.shutdown()
		reporters = append(reporters, tel.reporter)
	}

	envOpts := []env.Option{
		env.WithReporter(reporters),
		env.WithFailFast(opts.FailFast),
	}
	if opts.RunIDGenerator != nil {
		envOpts = append(envOpts, env.WithRunIDGenerator(opts.RunIDGenerator))
	}
	e := env.New(envOpts...)

	final, err := runAll(r, e, units, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "run aborted", err)
	}
	if err := flush(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write results", err)
	}

	counts := final.Counts()
	if !event.IsSuccessful(counts) {
		return NewExitError(ExitFailure, fmt.Sprintf("%d failures, %d errors", counts.Fail, counts.Error))
	}
	return nil
}

// newReporter selects the output reporter. flush reports write errors.
func newReporter(opts *TestOptions, w io.Writer) (event.Reporter, func() error) {
	if opts.Format == "json" {
		jr := report.NewJSON(w)
		return jr, jr.Err
	}
	var textOpts []report.TextOption
	if opts.NoColor {
		textOpts = append(textOpts, report.WithColor(false))
	}
	return report.NewText(w, textOpts...), func() error { return nil }
}

// runAll runs units and converts a panic that escaped the runner, such as a
// failing fixture or ordering hook, into an error.
func runAll(r *runner.Runner, e env.Env, units []runner.Unit, logger *slog.Logger) (final env.Env, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("run aborted", "panic", rec)
			err = fmt.Errorf("panic outside test units: %v", rec)
		}
	}()
	return r.RunAll(e, units), nil
}
