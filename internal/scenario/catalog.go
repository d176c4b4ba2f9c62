package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/casebook/internal/ir"
)

// Step is the scenario logic executed once per invocation.
type Step interface {
	Run(ctx context.Context, params ir.Record, shared any) error
}

// StepFunc adapts a function to Step.
type StepFunc func(ctx context.Context, params ir.Record, shared any) error

func (f StepFunc) Run(ctx context.Context, params ir.Record, shared any) error {
	return f(ctx, params, shared)
}

// Scenario is a sealed, read-only scenario definition.
type Scenario struct {
	name string
	step Step
	desc Descriptor
}

func (s *Scenario) Name() string { return s.name }
func (s *Scenario) Step() Step   { return s.step }

// Descriptor returns a copy of the sealed descriptor.
func (s *Scenario) Descriptor() Descriptor { return s.desc.clone() }

// Shared returns the scenario's shared context by reference.
func (s *Scenario) Shared() any { return s.desc.Shared }

// Resolve expands the parameter source into records and applies the
// transform, if any. Transform errors are returned unchanged.
func (s *Scenario) Resolve() ([]ir.Record, error) {
	recs, err := s.desc.Source.Resolve()
	if err != nil {
		return nil, err
	}
	if s.desc.Transform == nil {
		return recs, nil
	}
	return s.desc.Transform(recs)
}

// Define annotates and seals a single scenario in one call.
func Define(name string, step Step, anns ...Annotation) (*Scenario, error) {
	c := NewCatalog()
	if err := c.Annotate(name, anns...); err != nil {
		return nil, err
	}
	if err := c.Bind(name, step); err != nil {
		return nil, err
	}
	scs, err := c.Seal()
	if err != nil {
		return nil, err
	}
	return scs[0], nil
}

type draft struct {
	desc Descriptor
	step Step
}

// Catalog accumulates annotations applied to scenarios by name and
// freezes them with Seal. Annotations for one name may be spread over
// any number of Annotate calls. The zero value is ready to use.
//
// A Catalog is meant to be populated from a single goroutine during
// setup; it is not safe for concurrent use.
type Catalog struct {
	order  []string
	drafts map[string]*draft
	sealed bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{drafts: make(map[string]*draft)}
}

func (c *Catalog) draft(name string) *draft {
	if c.drafts == nil {
		c.drafts = make(map[string]*draft)
	}
	d, ok := c.drafts[name]
	if !ok {
		d = &draft{}
		c.drafts[name] = d
		c.order = append(c.order, name)
	}
	return d
}

// Annotate applies anns to the named scenario, creating it on first use.
// On error the scenario keeps the state it had before the failing
// annotation.
func (c *Catalog) Annotate(name string, anns ...Annotation) error {
	if c.sealed {
		return ErrSealed
	}
	if name == "" {
		return invalid("name", "scenario name is required")
	}
	d := c.draft(name)
	for _, ann := range anns {
		next, err := Apply(d.desc, ann)
		if err != nil {
			return withScenario(err, name)
		}
		d.desc = next
	}
	return nil
}

// Bind attaches the step executed for every invocation of name.
func (c *Catalog) Bind(name string, step Step) error {
	if c.sealed {
		return ErrSealed
	}
	if name == "" {
		return invalid("name", "scenario name is required")
	}
	if step == nil {
		return &ValidationError{Annotation: "step", Scenario: name, Message: "step is required"}
	}
	c.draft(name).step = step
	return nil
}

// Descriptor returns a copy of the current draft for name.
func (c *Catalog) Descriptor(name string) (Descriptor, bool) {
	d, ok := c.drafts[name]
	if !ok {
		return Descriptor{}, false
	}
	return d.desc.clone(), true
}

// Names returns scenario names in first-declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Seal validates every draft and freezes the catalog. Scenarios are
// returned in first-declaration order. All problems are reported
// together; the catalog stays open if any are found.
func (c *Catalog) Seal() ([]*Scenario, error) {
	if c.sealed {
		return nil, ErrSealed
	}
	var errs []error
	out := make([]*Scenario, 0, len(c.order))
	for _, name := range c.order {
		d := c.drafts[name]
		if d.desc.Title == "" {
			errs = append(errs, &ValidationError{Annotation: "title", Scenario: name, Message: MsgTitleRequired})
		}
		if d.step == nil {
			errs = append(errs, &ValidationError{Annotation: "step", Scenario: name, Message: "step is required"})
		}
		out = append(out, &Scenario{name: name, step: d.step, desc: d.desc.clone()})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	c.sealed = true
	return out, nil
}

func withScenario(err error, name string) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Scenario == "" {
		cp := *ve
		cp.Scenario = name
		return &cp
	}
	return fmt.Errorf("scenario %q: %w", name, err)
}
