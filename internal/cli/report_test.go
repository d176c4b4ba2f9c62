package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/casebook/internal/store"
)

func TestReport_LatestAndByID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	run := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDGenerator: fixedIDs("run-a"),
	})
	_, err := execute(t, run, filepath.Join("testdata", "fail.yaml"), "--db", db)
	require.Error(t, err)

	run = newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDGenerator: fixedIDs("run-b"),
	})
	_, err = execute(t, run, filepath.Join("testdata", "pass.yaml"), "--db", db)
	require.NoError(t, err)

	out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-b (shop): PASS")

	out, err = execute(t, NewReportCommand(&RootOptions{Format: "json"}), "--db", db, "run-a")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   store.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "billing", resp.Data.Run.Suite)
	assert.False(t, resp.Data.Run.Pass)
	require.Len(t, resp.Data.Invocations, 4)
	assert.Equal(t, "charge", resp.Data.Invocations[3].Scenario)
	assert.Len(t, resp.Data.Trace, 8)
}

func TestReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no database flag", nil, ErrCodeGeneric},
		{"missing database", []string{"--db", filepath.Join(t.TempDir(), "none.db")}, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestReport_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db)
	require.Error(t, err)
	assert.Contains(t, out, "no runs recorded")
}

func TestReport_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeStore)
}

func TestReport_StatusFilter(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	_, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "fail.yaml"), "--db", db)
	require.Error(t, err)

	out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db, "--status", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ charge 2")
	assert.NotContains(t, out, "✓")

	_, err = execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db, "--status", "skipped")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
