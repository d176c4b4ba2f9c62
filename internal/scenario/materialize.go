package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/title"
)

// Registrar is the host harness's registration primitive.
type Registrar interface {
	Register(title string, fn func(ctx context.Context) error)
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(title string, fn func(ctx context.Context) error)

func (f RegistrarFunc) Register(title string, fn func(ctx context.Context) error) {
	f(title, fn)
}

// Invocation is one concrete execution unit: a scenario bound to one
// parameter record.
type Invocation struct {
	// ID is content-addressed over scenario name, index and params.
	ID       string
	Index    int
	Title    string
	Params   ir.Record
	Hooks    *HookContext
	Scenario *Scenario
}

// Spec returns the RunSpec handed to the runner for inv.
func (inv Invocation) Spec() RunSpec {
	return RunSpec{
		Key:          inv.Scenario.Name(),
		InitialProps: Props{Children: nil},
		Step:         inv.Scenario.Step(),
	}
}

// Materializer expands scenarios into invocations and registers them.
type Materializer struct {
	runner Runner
	logger *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger used to report registrations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Materializer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMaterializer returns a Materializer that executes invocations with
// runner. A nil runner means SequentialRunner.
func NewMaterializer(runner Runner, opts ...Option) *Materializer {
	if runner == nil {
		runner = SequentialRunner{}
	}
	m := &Materializer{
		runner: runner,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Invocations builds every invocation of sc without registering any.
// Substitution errors from the title template are returned unchanged.
func (m *Materializer) Invocations(sc *Scenario) ([]Invocation, error) {
	records, err := sc.Resolve()
	if err != nil {
		return nil, err
	}
	md := sc.desc.Metadata()
	out := make([]Invocation, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			rec = ir.Record{}
		}
		substituted, err := title.Compile(sc.desc.Title, rec)
		if err != nil {
			return nil, err
		}
		encoded, err := title.Encode(substituted, md)
		if err != nil {
			return nil, fmt.Errorf("scenario %q invocation %d: encode title: %w", sc.name, i, err)
		}
		id, err := ir.InvocationID(sc.name, i, rec)
		if err != nil {
			return nil, fmt.Errorf("scenario %q invocation %d: %w", sc.name, i, err)
		}
		out = append(out, Invocation{
			ID:       id,
			Index:    i,
			Title:    encoded,
			Params:   rec,
			Hooks:    composeHooks(sc, encoded, rec),
			Scenario: sc,
		})
	}
	return out, nil
}

// Materialize registers one harness entry per resolved record of sc and
// returns how many were registered. Nothing is registered if any
// invocation fails to build.
func (m *Materializer) Materialize(sc *Scenario, reg Registrar) (int, error) {
	invs, err := m.Invocations(sc)
	if err != nil {
		return 0, err
	}
	return m.Register(invs, reg), nil
}

// Register hands already built invocations to reg in order.
func (m *Materializer) Register(invs []Invocation, reg Registrar) int {
	for _, inv := range invs {
		reg.Register(inv.Title, m.callback(inv))
		m.logger.Info("invocation registered",
			"scenario", inv.Scenario.name,
			"index", inv.Index,
			"id", inv.ID,
			"title", inv.Title)
	}
	return len(invs)
}

// MaterializeAll materializes scenarios in order. It stops at the first
// scenario that fails to build; scenarios before it stay registered.
func (m *Materializer) MaterializeAll(scs []*Scenario, reg Registrar) (int, error) {
	total := 0
	for _, sc := range scs {
		n, err := m.Materialize(sc, reg)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (m *Materializer) callback(inv Invocation) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		spec := inv.Spec()
		err := m.runner.Run(ctx, spec, inv.Hooks)
		if err == nil {
			return nil
		}
		if hf := soleHookFailure(err); hf != nil {
			return hf
		}
		return &RunnerFailure{Key: spec.Key, Title: inv.Title, Err: err}
	}
}

// soleHookFailure returns the HookFailure err consists of, looking
// through joins that hold a single error. A join that also carries a
// step error is not a hook failure alone.
func soleHookFailure(err error) *HookFailure {
	for {
		switch e := err.(type) {
		case *HookFailure:
			return e
		case interface{ Unwrap() []error }:
			errs := e.Unwrap()
			if len(errs) != 1 {
				return nil
			}
			err = errs[0]
		default:
			return nil
		}
	}
}
