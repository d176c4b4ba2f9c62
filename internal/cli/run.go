package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/scenario"
	"github.com/roach88/casebook/internal/store"
	"github.com/roach88/casebook/internal/title"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter   string
	Database string

	// IDGenerator overrides the run ID generator (for testing).
	// If nil, the harness uses UUIDv7.
	IDGenerator harness.IDGenerator
}

// RunSummary is the payload of the run command.
type RunSummary struct {
	RunID        string               `json:"run_id"`
	Suite        string               `json:"suite"`
	Pass         bool                 `json:"pass"`
	Passed       int                  `json:"passed"`
	Failed       int                  `json:"failed"`
	Total        int                  `json:"total"`
	Outcomes     []harness.TraceEvent `json:"outcomes"`
	Expectations []string             `json:"expectation_failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Execute every invocation of a suite",
		Long: `Load a suite manifest, materialize its scenarios and execute every
invocation in order (beforeEach hooks, step, afterEach hooks). The suite's
expectations are checked against the resulting trace.

With --db the run, its invocations and its trace are stored in SQLite
for "casebook report".

Exit codes:
  0 - All invocations passed and every expectation held
  1 - One or more invocations or expectations failed
  2 - Command error (manifest, script or database)

Examples:
  casebook run ./suites/sms.yaml
  casebook run ./suites/sms.yaml --db ./casebook.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", opts.Config.Filter, "filter scenarios by name (glob pattern)")
	cmd.Flags().StringVar(&opts.Database, "db", opts.Config.DB, "path to SQLite report database (optional)")

	return cmd
}

func runSuite(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	built, err := loadSuite(f, path, opts.Filter, logger)
	if err != nil {
		return err
	}

	m := scenario.NewMaterializer(nil, scenario.WithLogger(logger))
	invs, err := collectInvocations(m, built.Scenarios)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeMaterialize, "failed to materialize", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hopts := []harness.Option{harness.WithLogger(logger)}
	if opts.IDGenerator != nil {
		hopts = append(hopts, harness.WithIDGenerator(opts.IDGenerator))
	}
	result := harness.RunInvocations(ctx, m, invs, hopts...)
	expFailures := harness.EvaluateExpectations(result, built.Suite.Expect)

	if opts.Database != "" {
		if err := writeReport(ctx, opts.Database, built.Suite.Name, result, invs); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to store run", err)
		}
		f.VerboseLog("Stored run %s in %s", result.RunID, opts.Database)
	}

	summary := RunSummary{
		RunID:        result.RunID,
		Suite:        built.Suite.Name,
		Pass:         result.Pass,
		Passed:       result.Passed,
		Failed:       result.Failed,
		Total:        len(invs),
		Outcomes:     result.Outcomes(),
		Expectations: expFailures,
	}
	if summary.Outcomes == nil {
		summary.Outcomes = []harness.TraceEvent{}
	}

	if opts.Format == "json" {
		return outputRunJSON(f, summary)
	}
	return outputRunText(cmd, summary)
}

func writeReport(ctx context.Context, dbPath, suiteName string, result *harness.Result, invs []scenario.Invocation) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.WriteRun(ctx, suiteName, result, invs)
}

// failureCount counts failed invocations and failed expectations.
func (s RunSummary) failureCount() int {
	return s.Failed + len(s.Expectations)
}

func outputRunJSON(f *OutputFormatter, s RunSummary) error {
	resp := CLIResponse{Status: "ok", Data: s}
	if !s.Pass {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    ErrCodeRunFailed,
			Message: fmt.Sprintf("%d failure(s)", s.failureCount()),
		}
	}
	if err := f.encode(resp); err != nil {
		return err
	}
	if !s.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d failure(s)", s.failureCount()))
	}
	return nil
}

func outputRunText(cmd *cobra.Command, s RunSummary) error {
	w := cmd.OutOrStdout()

	for _, ev := range s.Outcomes {
		name := title.Decode(ev.Title).Title
		if ev.Type == harness.EventPassed {
			fmt.Fprintf(w, "✓ %s\n", name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		fmt.Fprintf(w, "  %s\n", ev.Error)
	}
	if len(s.Expectations) > 0 {
		fmt.Fprintln(w, "\nExpectations:")
		for _, msg := range s.Expectations {
			fmt.Fprintf(w, "✗ %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s: %d passed, %d failed, %d total\n", s.RunID, s.Passed, s.Failed, s.Total)

	if !s.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d failure(s)", s.failureCount()))
	}
	fmt.Fprintln(w, "✓ All invocations passed")
	return nil
}
