package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/juliecode/julie/internal/query"
)

// queryCommand is SPEC_FULL's smoke-testing shim over the six query-layer
// operations (spec.md §4.I): one subcommand per operation, each printing
// its Response as JSON to stdout. Unlike scan/update it never writes to
// the store (rename's --commit path rewrites source files only), so it always opens an
// already-populated workspace rather than running a scan itself — re-
// scanning on every invocation would make it indistinguishable from
// `scan` and defeats its purpose as a query smoke test.
var queryCommand = &cli.Command{
	Name:  "query",
	Usage: "Run one query-layer operation against an already-scanned workspace",
	Subcommands: []*cli.Command{
		queryGotoCommand,
		querySearchCommand,
		queryRefsCommand,
		querySymbolsCommand,
		queryTraceCommand,
		queryRenameCommand,
	},
}

var commonQueryFlags = []cli.Flag{
	&cli.StringFlag{Name: "dir", Required: true, Usage: "Project root previously scanned"},
	&cli.StringFlag{Name: "db", Usage: "Symbol store path (default <dir>/.julie/index.db)"},
	&cli.StringFlag{Name: "log", Usage: "Write logs to this file instead of stderr"},
}

func openQueryWorkspace(c *cli.Context) (*workspace, func(), error) {
	log, closeLog, err := openLogger(c.String("log"))
	if err != nil {
		return nil, func() {}, err
	}
	ws, err := openWorkspace(c.Context, c.String("dir"), c.String("db"), log)
	if err != nil {
		closeLog()
		return nil, func() {}, err
	}
	return ws, func() { ws.Close(); closeLog() }, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var queryGotoCommand = &cli.Command{
	Name:  "goto",
	Usage: "fast_goto: rank-by-kind exact-name lookup",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "language"},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		resp, err := ws.Query.FastGoto(c.Context, c.String("name"), query.GotoFilter{Language: c.String("language")})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var querySearchCommand = &cli.Command{
	Name:  "search",
	Usage: "fast_search: lexical (optionally semantic-merged) symbol search",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "q", Required: true, Usage: "Query text"},
		&cli.StringFlag{Name: "language"},
		&cli.StringFlag{Name: "mode", Value: "lexical", Usage: "lexical or semantic"},
		&cli.IntFlag{Name: "context-lines"},
		&cli.IntFlag{Name: "limit", Value: 20},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		mode := query.SearchLexical
		if c.String("mode") == "semantic" {
			mode = query.SearchSemantic
		}
		resp, err := ws.Query.FastSearch(c.Context, query.SearchParams{
			Query:        c.String("q"),
			Language:     c.String("language"),
			Mode:         mode,
			ContextLines: c.Int("context-lines"),
			Limit:        c.Int("limit"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var queryRefsCommand = &cli.Command{
	Name:  "refs",
	Usage: "fast_refs: relationship + identifier usages of a name",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "name", Required: true},
		&cli.BoolFlag{Name: "cross-language"},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		resp, err := ws.Query.FastRefs(c.Context, query.RefsParams{
			Name:          c.String("name"),
			CrossLanguage: c.Bool("cross-language"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var querySymbolsCommand = &cli.Command{
	Name:  "symbols",
	Usage: "get_symbols: outline one file",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "file", Required: true},
		&cli.StringFlag{Name: "mode", Value: "structure", Usage: "structure, minimal, or full"},
		&cli.StringFlag{Name: "target"},
		&cli.IntFlag{Name: "max-depth"},
		&cli.IntFlag{Name: "limit"},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		resp, err := ws.Query.GetSymbols(c.Context, query.SymbolsParams{
			FilePath: c.String("file"),
			Mode:     query.SymbolsMode(c.String("mode")),
			Target:   c.String("target"),
			MaxDepth: c.Int("max-depth"),
			Limit:    c.Int("limit"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var queryTraceCommand = &cli.Command{
	Name:  "trace",
	Usage: "trace_call_path: walk the call graph from a symbol",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "symbol", Required: true},
		&cli.StringFlag{Name: "direction", Value: "downstream", Usage: "upstream or downstream"},
		&cli.IntFlag{Name: "max-depth", Value: 5},
		&cli.BoolFlag{Name: "cross-language"},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		resp, err := ws.Query.TraceCallPath(c.Context, query.TraceParams{
			Symbol:        c.String("symbol"),
			Direction:     query.Direction(c.String("direction")),
			MaxDepth:      c.Int("max-depth"),
			CrossLanguage: c.Bool("cross-language"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var queryRenameCommand = &cli.Command{
	Name:  "rename",
	Usage: "rename_symbol: per-file rename diff, optionally committed to disk",
	Flags: append(append([]cli.Flag{}, commonQueryFlags...),
		&cli.StringFlag{Name: "old-name", Required: true},
		&cli.StringFlag{Name: "new-name", Required: true},
		&cli.BoolFlag{Name: "commit", Usage: "Write the rename to disk instead of a dry run"},
	),
	Action: func(c *cli.Context) error {
		ws, cleanup, err := openQueryWorkspace(c)
		if err != nil {
			return err
		}
		defer cleanup()
		resp, err := ws.Query.RenameSymbol(c.Context, query.RenameParams{
			OldName: c.String("old-name"),
			NewName: c.String("new-name"),
			DryRun:  !c.Bool("commit"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}
