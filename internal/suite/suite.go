package suite

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/luadsl"
	"github.com/roach88/casebook/internal/scenario"
)

// Suite is a parsed manifest.
type Suite struct {
	Name    string                `yaml:"name" json:"name"`
	Scripts []string              `yaml:"scripts" json:"scripts"`
	Filter  string                `yaml:"filter,omitempty" json:"filter,omitempty"`
	Globals map[string]any        `yaml:"globals,omitempty" json:"globals,omitempty"`
	Expect  []harness.Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Dir is the manifest's directory; script paths resolve against it.
	Dir string `yaml:"-" json:"-"`
}

// Load reads a manifest, choosing the format by file extension.
func Load(path string) (*Suite, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	default:
		return nil, fmt.Errorf("unsupported manifest type %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Validate checks required fields, the filter pattern and expectations.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Scripts) == 0 {
		return errors.New("scripts list is required and must be non-empty")
	}
	for i, script := range s.Scripts {
		if script == "" {
			return fmt.Errorf("scripts[%d]: path is empty", i)
		}
	}
	if s.Filter != "" {
		if _, err := path.Match(s.Filter, ""); err != nil {
			return fmt.Errorf("filter %q: %w", s.Filter, err)
		}
	}
	for i, e := range s.Expect {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("expect[%d]: %w", i, err)
		}
	}
	return nil
}

// ScriptPaths returns script paths resolved against the manifest directory.
func (s *Suite) ScriptPaths() []string {
	out := make([]string, len(s.Scripts))
	for i, p := range s.Scripts {
		if filepath.IsAbs(p) || s.Dir == "" {
			out[i] = p
		} else {
			out[i] = filepath.Join(s.Dir, p)
		}
	}
	return out
}

// Match reports whether a scenario name passes the filter. An empty
// filter matches everything.
func (s *Suite) Match(name string) bool {
	if s.Filter == "" {
		return true
	}
	ok, _ := path.Match(s.Filter, name)
	return ok
}

// Built is a suite whose scripts have been loaded and sealed.
type Built struct {
	Suite     *Suite
	Runtime   *luadsl.Runtime
	Scenarios []*scenario.Scenario
}

// Build loads every script into a fresh Lua runtime, exposing Globals as
// the global table "suite", seals it and applies the filter. An
// additional filter (e.g. from the command line) narrows the result
// further.
func (s *Suite) Build(extraFilter string, opts ...luadsl.Option) (*Built, error) {
	if extraFilter != "" {
		if _, err := path.Match(extraFilter, ""); err != nil {
			return nil, fmt.Errorf("filter %q: %w", extraFilter, err)
		}
	}
	rt := luadsl.New(opts...)
	globals := s.Globals
	if globals == nil {
		globals = map[string]any{}
	}
	rt.SetGlobal("suite", globals)

	for _, p := range s.ScriptPaths() {
		if err := rt.LoadFile(p); err != nil {
			return nil, fmt.Errorf("suite %s: %w", s.Name, err)
		}
	}
	all, err := rt.Seal()
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}

	var selected []*scenario.Scenario
	for _, sc := range all {
		if !s.Match(sc.Name()) {
			continue
		}
		if extraFilter != "" {
			// The pattern was checked above.
			if ok, _ := path.Match(extraFilter, sc.Name()); !ok {
				continue
			}
		}
		selected = append(selected, sc)
	}
	return &Built{Suite: s, Runtime: rt, Scenarios: selected}, nil
}
