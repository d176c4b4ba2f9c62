package harness

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/scenario"
	"github.com/roach88/casebook/internal/testutil"
)

// sendScenario fails the row with n == 2.
func sendScenario(t *testing.T, anns ...scenario.Annotation) *scenario.Scenario {
	t.Helper()
	step := scenario.StepFunc(func(_ context.Context, p ir.Record, _ any) error {
		if p["n"] == int64(2) {
			return errors.New("rejected")
		}
		return nil
	})
	base := []scenario.Annotation{
		scenario.Title("send {{.n}}"),
		scenario.ExamplesOf("n\n1\n2"),
	}
	sc, err := scenario.Define("send", step, append(base, anns...)...)
	require.NoError(t, err)
	return sc
}

func TestHarness_RegisterDoesNotRun(t *testing.T) {
	h := New(WithIDGenerator(testutil.NewFixedIDGenerator("run-1")))
	called := false
	h.Register("a", func(context.Context) error { called = true; return nil })

	assert.False(t, called)
	assert.Equal(t, []string{"a"}, h.Titles())
	assert.Equal(t, "run-1", h.RunID())
}

func TestHarness_ExecuteRecordsOutcomes(t *testing.T) {
	sc := sendScenario(t)
	result, err := Run(context.Background(), nil, []*scenario.Scenario{sc},
		WithIDGenerator(testutil.NewFixedIDGenerator("run-1")))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Trace, 4)

	want := []TraceEvent{
		{Type: EventRegistered, Title: "send 1", Seq: 1},
		{Type: EventRegistered, Title: "send 2", Seq: 2},
		{Type: EventPassed, Title: "send 1", Seq: 3},
		{Type: EventFailed, Title: "send 2", Error: "runner failed for send: rejected", Seq: 4},
	}
	assert.Equal(t, want, result.Trace)
	assert.Equal(t, []string{"send 2: runner failed for send: rejected"}, result.Errors)
	assert.Len(t, result.Outcomes(), 2)
}

func TestHarness_ExecuteStartsNewRun(t *testing.T) {
	h := New(WithIDGenerator(testutil.NewFixedIDGenerator("run-1", "run-2")))
	h.Register("a", func(context.Context) error { return errors.New("boom") })
	first := h.Execute(context.Background())

	h.Register("b", func(context.Context) error { return nil })
	second := h.Execute(context.Background())

	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, 1, first.Failed)
	assert.Len(t, first.Trace, 2)

	assert.Equal(t, "run-2", second.RunID)
	assert.True(t, second.Pass)
	assert.Equal(t, 1, second.Passed)
	assert.Zero(t, second.Failed)
	assert.Empty(t, second.Errors)
	assert.Equal(t, []TraceEvent{
		{Type: EventRegistered, Title: "b", Seq: 1},
		{Type: EventPassed, Title: "b", Seq: 2},
	}, second.Trace)
}

func TestHarness_ExecuteIsDeterministic(t *testing.T) {
	run := func() *Result {
		result, err := Run(context.Background(), nil, []*scenario.Scenario{sendScenario(t)},
			WithIDGenerator(testutil.NewFixedIDGenerator("run-1")))
		require.NoError(t, err)
		return result
	}
	assert.Equal(t, run(), run())
}

func TestHarness_CancelledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New()
	calls := 0
	h.Register("first", func(context.Context) error { calls++; cancel(); return nil })
	h.Register("second", func(context.Context) error { calls++; return nil })

	result := h.Execute(ctx)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, context.Canceled.Error(), result.Trace[3].Error)
}

func TestHarness_HookFailureFailsInvocation(t *testing.T) {
	sc := sendScenario(t, scenario.BeforeEach(func(context.Context, ir.Record, any, *scenario.Scenario) error {
		return errors.New("no session")
	}))
	result, err := Run(context.Background(), nil, []*scenario.Scenario{sc})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Failed)
	assert.Contains(t, result.Errors[0], "beforeEach hook from scenario failed: no session")
}

func TestHarness_MaterializeErrorAbortsRun(t *testing.T) {
	sc, err := scenario.Define("s", scenario.StepFunc(func(context.Context, ir.Record, any) error { return nil }),
		scenario.Title("{{.nope}}"))
	require.NoError(t, err)

	_, err = Run(context.Background(), nil, []*scenario.Scenario{sc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "materialize")
}

func TestHarness_LogsOutcomes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	_, err := Run(context.Background(), nil, []*scenario.Scenario{sendScenario(t)}, WithLogger(logger))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "invocation passed")
	assert.Contains(t, buf.String(), "invocation failed")
}

func TestRunInvocations(t *testing.T) {
	m := scenario.NewMaterializer(nil)
	invs, err := m.Invocations(sendScenario(t))
	require.NoError(t, err)

	result := RunInvocations(context.Background(), m, invs, WithIDGenerator(testutil.NewFixedIDGenerator("run-1")))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Trace, 4)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
