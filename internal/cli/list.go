package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/scenario"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filter string
}

// ListedInvocation is one materialized invocation.
type ListedInvocation struct {
	ID       string    `json:"id"`
	Scenario string    `json:"scenario"`
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Params   ir.Record `json:"params"`
}

// ListResult is the payload of the list command.
type ListResult struct {
	Suite       string             `json:"suite"`
	Invocations []ListedInvocation `json:"invocations"`
	Total       int                `json:"total"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <manifest>",
		Short: "Materialize a suite and print invocation titles",
		Long: `Load a suite manifest (.yaml or .cue), build its scenarios and print
the encoded title of every invocation without running anything.

Examples:
  casebook list ./suites/sms.yaml
  casebook list ./suites/sms.cue --filter "send_*" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", rootOpts.Config.Filter, "filter scenarios by name (glob pattern)")

	return cmd
}

func runList(opts *ListOptions, path string, cmd *cobra.Command) error {
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

	result := ListResult{
		Suite:       built.Suite.Name,
		Invocations: make([]ListedInvocation, 0, len(invs)),
		Total:       len(invs),
	}
	for _, inv := range invs {
		result.Invocations = append(result.Invocations, ListedInvocation{
			ID:       inv.ID,
			Scenario: inv.Scenario.Name(),
			Index:    inv.Index,
			Title:    inv.Title,
			Params:   inv.Params,
		})
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, inv := range result.Invocations {
		fmt.Fprintln(w, inv.Title)
		f.VerboseLog("  %s[%d] %s", inv.Scenario, inv.Index, inv.ID)
	}
	fmt.Fprintf(w, "\n%d invocation(s) in %s\n", result.Total, result.Suite)
	return nil
}
