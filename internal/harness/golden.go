package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/casebook/internal/ir"
)

// Snapshot is the golden-file form of a run: the suite name, run ID and
// the full trace, serialized as canonical JSON.
type Snapshot struct {
	Suite string       `json:"suite"`
	RunID string       `json:"run_id"`
	Trace []TraceEvent `json:"trace"`
}

func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"type":  ev.Type,
			"title": ev.Title,
			"seq":   ev.Seq,
		}
		if ev.Error != "" {
			m["error"] = ev.Error
		}
		trace[i] = m
	}
	return map[string]any{
		"suite":  s.Suite,
		"run_id": s.RunID,
		"trace":  trace,
	}
}

// MarshalSnapshot renders result as canonical snapshot JSON.
func MarshalSnapshot(suite string, result *Result) ([]byte, error) {
	snap := Snapshot{Suite: suite, RunID: result.RunID, Trace: result.Trace}
	return ir.MarshalCanonical(snap.toCanonicalMap())
}

// AssertGolden compares result's trace against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./... -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
