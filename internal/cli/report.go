package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/store"
	"github.com/roach88/casebook/internal/title"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Status   string // "passed" | "failed" | "" (all)
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show a stored run",
		Long: `Print a run recorded by "casebook run --db". Without a run ID the
most recent run is shown.

Examples:
  casebook report --db ./casebook.db
  casebook report --db ./casebook.db --status failed
  casebook report --db ./casebook.db 0193a1b2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReport(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to SQLite report database")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only show outcomes with this status (passed|failed)")

	return cmd
}

func runReport(opts *ReportOptions, runID string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Status != "" && opts.Status != harness.EventPassed && opts.Status != harness.EventFailed {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid status %q: must be passed or failed", opts.Status), nil)
	}
	if opts.Database == "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--db (or CASEBOOK_DB) is required", nil)
	}

	// Opening creates missing files; a report needs an existing one.
	if _, err := os.Stat(opts.Database); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if runID == "" {
		runID, err = st.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, "no runs recorded", nil)
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to find latest run", err)
		}
	}

	report, err := st.ReadReport(ctx, runID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}
	if opts.Status != "" {
		report.Trace, err = st.QueryEvents(ctx, runID, store.Equals{Field: "type", Value: opts.Status})
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to filter run", err)
		}
	}

	if opts.Format == "json" {
		return f.Success(report)
	}

	w := cmd.OutOrStdout()
	r := report.Run
	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Run %s (%s): %s\n", r.ID, r.Suite, status)
	fmt.Fprintf(w, "  %d invocation(s), %d passed, %d failed\n\n", len(report.Invocations), r.Passed, r.Failed)
	for _, ev := range report.Trace {
		if ev.Type == harness.EventRegistered {
			continue
		}
		name := title.Decode(ev.Title).Title
		if ev.Type == harness.EventPassed {
			fmt.Fprintf(w, "✓ %s\n", name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n  %s\n", name, ev.Error)
	}
	return nil
}
