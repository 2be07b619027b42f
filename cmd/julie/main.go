// Command julie is the auxiliary index-builder binary named in spec.md §6:
// a small urfave/cli/v2 shell (the teacher's own CLI framework, cmd/lci/
// main.go) wiring together config loading, the indexing orchestrator, and
// the query layer, generalized from the teacher's much larger MCP/server/
// git-analyze surface down to the four subcommands SPEC_FULL §1 names:
// scan, update, query, serve.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "julie",
		Usage: "Multi-language code-intelligence indexer and query tool",
		Commands: []*cli.Command{
			scanCommand,
			updateCommand,
			queryCommand,
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "julie: %v\n", err)
		os.Exit(exitCode(err))
	}
}
