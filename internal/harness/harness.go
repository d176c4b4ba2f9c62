package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/casebook/internal/scenario"
	"github.com/roach88/casebook/internal/testutil"
)

type entry struct {
	title string
	fn    func(ctx context.Context) error
}

// Harness collects invocations registered by a scenario.Materializer and
// executes them sequentially.
//
// Registration and Execute are meant to be driven from one goroutine.
// Each Execute closes the current run; the next Register starts a new
// one with its own run ID and seq numbers.
type Harness struct {
	clock   *testutil.DeterministicClock
	ids     IDGenerator
	logger  *slog.Logger
	entries []entry
	result  *Result
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used to report outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithIDGenerator overrides the run ID generator. Tests pass a fixed one
// to keep golden files stable.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *Harness) {
		if g != nil {
			h.ids = g
		}
	}
}

// New returns an empty harness. The first run's ID is generated on the
// first Register or RunID call.
func New(opts ...Option) *Harness {
	h := &Harness{
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// current returns the open run, starting one if the last was executed.
func (h *Harness) current() *Result {
	if h.result == nil {
		h.clock = testutil.NewDeterministicClock()
		h.result = NewResult(h.ids.Generate())
	}
	return h.result
}

var _ scenario.Registrar = (*Harness)(nil)

// Register records an invocation. It does not run it.
func (h *Harness) Register(title string, fn func(ctx context.Context) error) {
	h.entries = append(h.entries, entry{title: title, fn: fn})
	result := h.current()
	result.AddRegistrationTrace(title, h.clock.Next())
}

// Titles returns registered titles in registration order.
func (h *Harness) Titles() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.title
	}
	return out
}

// RunID returns the ID of the current run.
func (h *Harness) RunID() string { return h.current().RunID }

// Execute runs every registered invocation once, in order, and returns
// the run's result. A failing
// invocation does not stop the others. Once ctx is done, the remaining
// invocations fail with the context's error without being called.
func (h *Harness) Execute(ctx context.Context) *Result {
	result := h.current()
	for _, e := range h.entries {
		err := ctx.Err()
		if err == nil {
			err = e.fn(ctx)
		}
		result.AddOutcomeTrace(e.title, err, h.clock.Next())
		if err != nil {
			result.AddError(fmt.Sprintf("%s: %v", e.title, err))
			h.logger.Info("invocation failed", "run", result.RunID, "title", e.title, "error", err)
			continue
		}
		h.logger.Info("invocation passed", "run", result.RunID, "title", e.title)
	}
	h.entries = nil
	h.result = nil
	return result
}

// Run materializes scenarios into a new harness and executes them.
// Build errors (substitution, transform) abort before anything runs.
// A nil materializer uses scenario.SequentialRunner.
func Run(ctx context.Context, m *scenario.Materializer, scs []*scenario.Scenario, opts ...Option) (*Result, error) {
	if m == nil {
		m = scenario.NewMaterializer(nil)
	}
	h := New(opts...)
	if _, err := m.MaterializeAll(scs, h); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	return h.Execute(ctx), nil
}

// RunInvocations registers invocations built earlier (for example to
// store them alongside the result) and executes them.
func RunInvocations(ctx context.Context, m *scenario.Materializer, invs []scenario.Invocation, opts ...Option) *Result {
	if m == nil {
		m = scenario.NewMaterializer(nil)
	}
	h := New(opts...)
	m.Register(invs, h)
	return h.Execute(ctx)
}
