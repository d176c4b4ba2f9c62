package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/testutil"
)

func fixedIDs(ids ...string) *testutil.FixedIDGenerator {
	return testutil.NewFixedIDGenerator(ids...)
}

// testRunCommand returns a run command with deterministic run IDs.
func testRunCommand(format string) *cobra.Command {
	return newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: format},
		IDGenerator: fixedIDs("run-1", "run-2"),
	})
}

func TestRun_AllPass(t *testing.T) {
	out, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "pass.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ checkout book")
	assert.Contains(t, out, "✓ checkout pen")
	assert.Contains(t, out, "Run run-1: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All invocations passed")
}

func TestRun_FailureExitCode(t *testing.T) {
	out, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "fail.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✓ charge 1")
	assert.Contains(t, out, "✗ charge 2")
	assert.Contains(t, out, "declined")
	assert.Contains(t, out, "3 passed, 1 failed, 4 total")
}

func TestRun_ExpectationFailure(t *testing.T) {
	out, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "expect.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "Expectations:")
	assert.Contains(t, out, "checkout lamp")
	assert.Contains(t, out, "2 passed, 0 failed")
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, testRunCommand("json"), filepath.Join("testdata", "fail.yaml"))
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunFailed, resp.Error.Code)
	assert.Equal(t, "1 failure(s)", resp.Error.Message)

	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, "billing", resp.Data.Suite)
	require.Len(t, resp.Data.Outcomes, 4)
	assert.Equal(t, harness.EventFailed, resp.Data.Outcomes[3].Type)
	assert.Equal(t, `{"title":"charge 2","level":["p1"]}`, resp.Data.Outcomes[3].Title)
}

func TestRun_CommandErrors(t *testing.T) {
	_, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeBuildFailed)
}

func TestRun_StoresReport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, testRunCommand("text"), filepath.Join("testdata", "fail.yaml"), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1 (billing): FAIL")
	assert.Contains(t, out, "4 invocation(s), 3 passed, 1 failed")
	assert.Contains(t, out, "✗ charge 2")
}
