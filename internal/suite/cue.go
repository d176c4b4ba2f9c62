package suite

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema closes the manifest so unknown fields are rejected, like the
// YAML loader does.
const schema = `
#Suite: {
	name:     string & !=""
	scripts:  [string, ...string]
	filter?:  string
	globals?: {...}
	expect?: [...{
		type:    "trace_contains" | "trace_order" | "outcome_count"
		title?:  string
		status?: "registered" | "passed" | "failed"
		titles?: [...string]
		count?:  int & >=0
	}]
}
`

// LoadCUE reads a CUE manifest.
func LoadCUE(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	s, err := ParseCUE(path, data)
	if err != nil {
		return nil, err
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// ParseCUE compiles src, unifies it with the manifest schema and decodes
// it. filename is used in error positions only.
func ParseCUE(filename string, src []byte) (*Suite, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Suite"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("suite schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %w", err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	var s Suite
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	s.Name = name

	if err := v.LookupPath(cue.ParsePath("scripts")).Decode(&s.Scripts); err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}
	if f := v.LookupPath(cue.ParsePath("filter")); f.Exists() {
		if s.Filter, err = f.String(); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}
	if g := v.LookupPath(cue.ParsePath("globals")); g.Exists() {
		if err := g.Decode(&s.Globals); err != nil {
			return nil, fmt.Errorf("globals: %w", err)
		}
	}
	if e := v.LookupPath(cue.ParsePath("expect")); e.Exists() {
		if err := e.Decode(&s.Expect); err != nil {
			return nil, fmt.Errorf("expect: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}
