package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	lcierrors "github.com/juliecode/julie/internal/errors"
)

// rootFromDBPath recovers the project root `update` needs from --db alone
// (spec.md §6's `update` flags don't include --dir): the default layout
// is `<root>/.julie/index.db`, so walking up two directories recovers
// root when --db sits there; otherwise the db file's own directory is
// used, matching whatever root a non-default --db was opened against
// during the prior scan.
func rootFromDBPath(dbPath string) string {
	dir := filepath.Dir(dbPath)
	if filepath.Base(dir) == ".julie" {
		return filepath.Dir(dir)
	}
	return dir
}

// updateCommand is the CLI surface's `update` entry (spec.md §6):
// reindex a single file in place (the orchestrator's incremental path)
// without rescanning the whole tree.
var updateCommand = &cli.Command{
	Name:  "update",
	Usage: "Reindex a single file already covered by a prior scan",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "file", Required: true, Usage: "File to reindex"},
		&cli.StringFlag{Name: "db", Required: true, Usage: "Symbol store path"},
		&cli.StringFlag{Name: "log", Usage: "Write logs to this file instead of stderr"},
	},
	Action: func(c *cli.Context) error {
		log, closeLog, err := openLogger(c.String("log"))
		if err != nil {
			return lcierrors.NewFileError("open", c.String("log"), err)
		}
		defer closeLog()

		file := c.String("file")
		root := rootFromDBPath(c.String("db"))

		ws, err := openWorkspace(c.Context, root, c.String("db"), log)
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := ws.Orch.UpdateFile(c.Context, file); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "updated %s\n", file)
		return nil
	},
}
