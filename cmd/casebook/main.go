// Command casebook lists, runs and reports annotated Lua scenario suites.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/casebook/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
