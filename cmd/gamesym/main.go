// gamesym is the command-line front end for the symbol store chain:
// validating configurations, finding and publishing files, running
// batch module loads, and inspecting recorded sessions.
package main

import (
	"fmt"
	"os"

	"github.com/isabella232/gamesym/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gamesym: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
