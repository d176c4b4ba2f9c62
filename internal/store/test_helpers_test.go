package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/scenario"
)

var errFailed = errors.New("rejected")

// createTestStore opens a file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestInvocations materializes a two-row send scenario.
func createTestInvocations(t *testing.T) []scenario.Invocation {
	t.Helper()
	step := scenario.StepFunc(func(context.Context, ir.Record, any) error { return nil })
	sc, err := scenario.Define("send", step,
		scenario.Title("send {{.n}} to {{.to}}"),
		scenario.ExamplesOf("n | to\n1 | us\n2 | uk"),
	)
	if err != nil {
		t.Fatalf("Define() failed: %v", err)
	}
	invs, err := scenario.NewMaterializer(nil).Invocations(sc)
	if err != nil {
		t.Fatalf("Invocations() failed: %v", err)
	}
	return invs
}

// createTestResult builds a result where the second invocation failed.
func createTestResult(runID string, invs []scenario.Invocation) *harness.Result {
	res := harness.NewResult(runID)
	seq := int64(0)
	for _, inv := range invs {
		seq++
		res.AddRegistrationTrace(inv.Title, seq)
	}
	for i, inv := range invs {
		seq++
		var err error
		if i == 1 {
			err = errFailed
		}
		res.AddOutcomeTrace(inv.Title, err, seq)
	}
	res.AddError("send 2 to uk: rejected")
	return res
}
