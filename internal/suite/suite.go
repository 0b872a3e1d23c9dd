package suite

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateGroup is returned when two loaded suites declare the same group.
var ErrDuplicateGroup = errors.New("duplicate group")

// Suite is one YAML suite file: the units of a single group.
type Suite struct {
	// Group is the owning group id of every unit in the suite.
	Group string `yaml:"group"`

	// Description explains what the suite covers.
	Description string `yaml:"description,omitempty"`

	// Order, when set, installs an ordering hook that runs the named units
	// in this order. Fixtures are not applied to a hooked group.
	Order []string `yaml:"order,omitempty"`

	// Units are the suite's test units and plain definitions.
	Units []UnitSpec `yaml:"units"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`
}

// UnitSpec is one unit of a suite.
type UnitSpec struct {
	// Name uniquely identifies the unit within its suite.
	Name string `yaml:"name"`

	// Assertions are run in order.
	Assertions []AssertionSpec `yaml:"assertions,omitempty"`

	// Run names sibling units invoked after the assertions, nested under
	// this unit.
	Run []string `yaml:"run,omitempty"`
}

// IsTest reports whether the unit has a test body.
func (u UnitSpec) IsTest() bool {
	return len(u.Assertions) > 0 || len(u.Run) > 0
}

// AssertionSpec is either an "is" form or a "testing" context with nested
// assertions.
type AssertionSpec struct {
	// Is holds the form. The node keeps its line for event locations.
	Is yaml.Node `yaml:"is,omitempty"`

	// Message is attached to the reported event.
	Message string `yaml:"message,omitempty"`

	// Testing is a nesting context description.
	Testing string `yaml:"testing,omitempty"`

	// Assertions are nested under Testing.
	Assertions []AssertionSpec `yaml:"assertions,omitempty"`
}

func (a AssertionSpec) hasForm() bool {
	return a.Is.Kind != 0
}

// Load reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a suite document.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&s); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}

// LoadPaths loads every suite named by paths. A directory contributes its
// .yaml and .yml files (not recursive) in name order. Group ids must be
// unique across all loaded suites.
func LoadPaths(paths ...string) ([]*Suite, error) {
	var files []string
	for _, p := range paths {
		found, err := Files(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	suites := make([]*Suite, 0, len(files))
	groups := make(map[string]string)
	for _, f := range files {
		s, err := Load(f)
		if err != nil {
			return nil, err
		}
		if prev, dup := groups[s.Group]; dup {
			return nil, fmt.Errorf("%w %q in %s and %s", ErrDuplicateGroup, s.Group, prev, f)
		}
		groups[s.Group] = f
		suites = append(suites, s)
	}
	return suites, nil
}

// Files returns the suite files for path: path itself, or the .yaml and .yml
// files of a directory in name order.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Group == "" {
		return fmt.Errorf("group is required")
	}

	if len(s.Units) == 0 {
		return fmt.Errorf("units list is required and must be non-empty")
	}

	names := make(map[string]UnitSpec, len(s.Units))
	for i, u := range s.Units {
		if u.Name == "" {
			return fmt.Errorf("units[%d]: name is required", i)
		}
		if _, dup := names[u.Name]; dup {
			return fmt.Errorf("units[%d]: duplicate unit name %q", i, u.Name)
		}
		names[u.Name] = u
	}

	for i, u := range s.Units {
		for j, a := range u.Assertions {
			if err := validateAssertion(fmt.Sprintf("units[%d].assertions[%d]", i, j), a); err != nil {
				return err
			}
		}
		for _, ref := range u.Run {
			target, ok := names[ref]
			if !ok {
				return fmt.Errorf("units[%d]: run references unknown unit %q", i, ref)
			}
			if !target.IsTest() {
				return fmt.Errorf("units[%d]: run references plain definition %q", i, ref)
			}
		}
	}

	if path := findRunCycle(s.Units); path != nil {
		return fmt.Errorf("run cycle: %s", strings.Join(path, " -> "))
	}

	for i, name := range s.Order {
		target, ok := names[name]
		if !ok {
			return fmt.Errorf("order[%d]: unknown unit %q", i, name)
		}
		if !target.IsTest() {
			return fmt.Errorf("order[%d]: %q is a plain definition", i, name)
		}
	}

	return nil
}

// validateAssertion validates one assertion item and its nested items.
func validateAssertion(at string, a AssertionSpec) error {
	switch {
	case a.hasForm() && a.Testing != "":
		return fmt.Errorf("%s: is and testing are mutually exclusive", at)
	case a.hasForm():
		if len(a.Assertions) > 0 {
			return fmt.Errorf("%s: assertions are only allowed under testing", at)
		}
		return nil
	case a.Testing != "":
		if len(a.Assertions) == 0 {
			return fmt.Errorf("%s: testing requires nested assertions", at)
		}
		if a.Message != "" {
			return fmt.Errorf("%s: message is only allowed with is", at)
		}
		for i, nested := range a.Assertions {
			if err := validateAssertion(fmt.Sprintf("%s.assertions[%d]", at, i), nested); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: one of is or testing is required", at)
	}
}

// findRunCycle returns the first cycle among run references, or nil.
func findRunCycle(units []UnitSpec) []string {
	runs := make(map[string][]string, len(units))
	for _, u := range units {
		runs[u.Name] = u.Run
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(units))
	var stack []string
	var visit func(name string) []string
	visit = func(name string) []string {
		switch state[name] {
		case visiting:
			start := slices.Index(stack, name)
			return append(slices.Clone(stack[start:]), name)
		case done:
			return nil
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, next := range runs[name] {
			if cycle := visit(next); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, u := range units {
		if cycle := visit(u.Name); cycle != nil {
			return cycle
		}
	}
	return nil
}
