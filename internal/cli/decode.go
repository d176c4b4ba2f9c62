package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/title"
)

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <title>...",
		Short: "Decode encoded invocation titles",
		Long: `Parse titles produced by casebook back into their parts: the plain
title, tag and brand groups, metadata and priority. Plain titles are
reported as unstructured.

Example:
  casebook decode '{"title":"send 1","tags":[["google"]],"level":["p0"]}'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args, cmd)
		},
	}
}

func runDecode(opts *RootOptions, titles []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	decoded := make([]title.Decoded, len(titles))
	for i, s := range titles {
		if strings.TrimSpace(s) == "" {
			return f.Fail(ExitCommandError, ErrCodeInvalidTitle, fmt.Sprintf("title %d is empty", i+1), nil)
		}
		decoded[i] = title.Decode(s)
	}

	if opts.Format == "json" {
		return f.Success(decoded)
	}

	w := cmd.OutOrStdout()
	for i, d := range decoded {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeDecoded(w, d)
	}
	return nil
}

func writeDecoded(w io.Writer, d title.Decoded) {
	fmt.Fprintf(w, "title:  %s\n", d.Title)
	if !d.Structured {
		return
	}
	if d.Level != "" {
		fmt.Fprintf(w, "level:  %s\n", d.Level)
	}
	for _, g := range d.Tags {
		fmt.Fprintf(w, "tag:    %s\n", formatGroup(g))
	}
	for _, g := range d.Brands {
		fmt.Fprintf(w, "brand:  %s\n", formatGroup(g))
	}
	for _, k := range ir.SortedKeys(d.Meta) {
		fmt.Fprintf(w, "meta:   %s=%v\n", k, d.Meta[k])
	}
}

func formatGroup(g title.Group) string {
	if !g.HasConfig {
		return g.Name
	}
	return fmt.Sprintf("%s %v", g.Name, g.Config)
}
