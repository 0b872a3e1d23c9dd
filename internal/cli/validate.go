package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/unitrun/internal/runner"
	"github.com/roach88/unitrun/internal/suite"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Suites []SuiteSummary  `json:"suites"`
	Errors []ValidateError `json:"errors,omitempty"`
}

// SuiteSummary describes one valid suite.
type SuiteSummary struct {
	Path  string `json:"path"`
	Group string `json:"group"`
	Units int    `json:"units"`
}

// ValidateError describes one invalid suite file.
type ValidateError struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate suites without running them",
		Long: `Validate YAML test suites without running them.

Checks the suite schema, run and order references, and that every form
compiles against the registered assertion tags.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	var files []string
	for _, p := range paths {
		found, err := suite.Files(p)
		if err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid path", err)
		}
		files = append(files, found...)
	}
	formatter.VerboseLog("Found %d suite file(s)", len(files))

	d, err := newDispatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register assertion tags", err)
	}
	r := runner.New()

	result := ValidationResult{Valid: true, Suites: []SuiteSummary{}}
	groups := make(map[string]string)
	for _, f := range files {
		formatter.VerboseLog("Validating suite: %s", f)
		s, err := suite.Load(f)
		if err != nil {
			result.addError(ErrCodeLoad, f, err)
			continue
		}
		if prev, dup := groups[s.Group]; dup {
			result.addError(ErrCodeDuplicate, f, fmt.Errorf("%w %q, also in %s", suite.ErrDuplicateGroup, s.Group, prev))
			continue
		}
		groups[s.Group] = f

		units, err := suite.Units(d, r, s)
		if err != nil {
			result.addError(ErrCodeCompile, f, err)
			continue
		}
		result.Suites = append(result.Suites, SuiteSummary{Path: f, Group: s.Group, Units: countTests(units)})
	}

	if err := outputValidate(formatter, result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func (r *ValidationResult) addError(code, path string, err error) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidateError{Code: code, Path: path, Message: err.Error()})
}

// countTests counts units with a body, excluding ordering hooks.
func countTests(units []runner.Unit) int {
	n := 0
	for _, u := range units {
		if u.Body != nil && !u.Hook {
			n++
		}
	}
	return n
}

func outputValidate(f *OutputFormatter, result ValidationResult) error {
	if f.Format == "json" {
		if result.Valid {
			return f.Success(result)
		}
		return f.Error(ErrCodeGeneric, "validation failed", result)
	}

	for _, s := range result.Suites {
		fmt.Fprintf(f.Writer, "✓ %s (%s, %d units)\n", s.Path, s.Group, s.Units)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(f.Writer, "✗ %s\n  [%s] %s\n", e.Path, e.Code, e.Message)
	}
	if result.Valid {
		fmt.Fprintln(f.Writer, "All suites valid.")
	}
	return nil
}
