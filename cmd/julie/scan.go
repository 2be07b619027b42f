package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	lcierrors "github.com/juliecode/julie/internal/errors"
)

// scanCommand is the CLI surface's `scan` entry (spec.md §6): a full
// recursive index build of --dir into --db, honoring --ignore globs and
// --threads parallelism.
var scanCommand = &cli.Command{
	Name:  "scan",
	Usage: "Index every file under a directory into a symbol store",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "dir", Required: true, Usage: "Project root to scan"},
		&cli.StringFlag{Name: "db", Usage: "Symbol store path (default <dir>/.julie/index.db)"},
		&cli.StringSliceFlag{Name: "ignore", Usage: "Additional gitignore-style globs to exclude"},
		&cli.IntFlag{Name: "threads", Usage: "Parallel file workers (default NumCPU)"},
		&cli.StringFlag{Name: "log", Usage: "Write logs to this file instead of stderr"},
	},
	Action: func(c *cli.Context) error {
		log, closeLog, err := openLogger(c.String("log"))
		if err != nil {
			return lcierrors.NewFileError("open", c.String("log"), err)
		}
		defer closeLog()

		ws, err := openWorkspace(c.Context, c.String("dir"), c.String("db"), log)
		if err != nil {
			return err
		}
		defer ws.Close()

		if ignore := c.StringSlice("ignore"); len(ignore) > 0 {
			ws.cfg.Index.ExtraIgnore = append(ws.cfg.Index.ExtraIgnore, ignore...)
		}
		if threads := c.Int("threads"); threads > 0 {
			ws.cfg.Performance.ParallelFileWorkers = threads
		}

		stats, err := ws.Orch.FullScan(c.Context)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "scanned %d files (%d processed, %d skipped, %d parse errors)\n",
			stats.FilesDiscovered, stats.FilesProcessed, stats.FilesSkipped, stats.ParseErrors)
		if stats.ParseErrors > 0 && stats.FilesProcessed == 0 {
			return lcierrors.NewParseError(ws.root, 0, 0, "", fmt.Errorf("every discovered file failed to parse"))
		}
		return nil
	},
}
