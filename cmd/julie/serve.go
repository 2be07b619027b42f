package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/juliecode/julie/internal/query"
)

// serveRequest is one line of serve's stdio protocol: the operation name
// plus its own flat parameter bag. Unlike the MCP shell this deliberately
// doesn't implement (spec.md §1: out of scope), there is no tool registry,
// capability negotiation, or streaming — just one request in, one
// response out, matching SPEC_FULL §1's framing of `serve` as "a thin
// MCP-less stdio/query shim used only for local smoke testing."
type serveRequest struct {
	Op            string `json:"op"`
	Name          string `json:"name,omitempty"`
	Query         string `json:"query,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
	File          string `json:"file,omitempty"`
	OldName       string `json:"old_name,omitempty"`
	NewName       string `json:"new_name,omitempty"`
	Language      string `json:"language,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Direction     string `json:"direction,omitempty"`
	Target        string `json:"target,omitempty"`
	MaxDepth      int    `json:"max_depth,omitempty"`
	ContextLines  int    `json:"context_lines,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	CrossLanguage bool   `json:"cross_language,omitempty"`
	Commit        bool   `json:"commit,omitempty"`
}

type serveResponse struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// serveCommand scans the workspace once, then serves one query operation
// per line read from stdin until EOF, writing one JSON response per line
// to stdout (grounded on the teacher's mcpCommand signal-driven run loop
// in cmd/lci/main.go, stripped to its stdio-loop shape since the MCP
// transport itself is out of scope).
var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Scan once, then answer query-layer requests read as JSON lines from stdin",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "dir", Required: true, Usage: "Project root to scan and serve"},
		&cli.StringFlag{Name: "db", Usage: "Symbol store path (default <dir>/.julie/index.db)"},
		&cli.StringFlag{Name: "log", Usage: "Write logs to this file instead of stderr"},
	},
	Action: func(c *cli.Context) error {
		log, closeLog, err := openLogger(c.String("log"))
		if err != nil {
			return err
		}
		defer closeLog()

		ws, err := openWorkspace(c.Context, c.String("dir"), c.String("db"), log)
		if err != nil {
			return err
		}
		defer ws.Close()

		if _, err := ws.Orch.FullScan(c.Context); err != nil {
			return err
		}

		scanner := bufio.NewScanner(c.App.Reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		enc := json.NewEncoder(c.App.Writer)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var req serveRequest
			if jsonErr := json.Unmarshal(line, &req); jsonErr != nil {
				enc.Encode(serveResponse{Error: fmt.Sprintf("invalid request: %v", jsonErr)})
				continue
			}
			result, opErr := dispatchServeRequest(c.Context, ws, req)
			if opErr != nil {
				enc.Encode(serveResponse{Error: opErr.Error()})
				continue
			}
			enc.Encode(serveResponse{OK: true, Result: result})
		}
		return scanner.Err()
	},
}

// dispatchServeRequest routes one serveRequest to the matching
// query.Service operation, mirroring query.go's CLI subcommands but over
// the stdio protocol instead of flags.
func dispatchServeRequest(ctx context.Context, ws *workspace, req serveRequest) (any, error) {
	switch req.Op {
	case "goto":
		return ws.Query.FastGoto(ctx, req.Name, query.GotoFilter{Language: req.Language})
	case "search":
		mode := query.SearchLexical
		if req.Mode == "semantic" {
			mode = query.SearchSemantic
		}
		return ws.Query.FastSearch(ctx, query.SearchParams{
			Query: req.Query, Language: req.Language, Mode: mode,
			ContextLines: req.ContextLines, Limit: req.Limit,
		})
	case "refs":
		return ws.Query.FastRefs(ctx, query.RefsParams{Name: req.Name, CrossLanguage: req.CrossLanguage})
	case "symbols":
		return ws.Query.GetSymbols(ctx, query.SymbolsParams{
			FilePath: req.File, Mode: query.SymbolsMode(req.Mode), Target: req.Target,
			MaxDepth: req.MaxDepth, Limit: req.Limit,
		})
	case "trace":
		direction := query.Downstream
		if req.Direction == "upstream" {
			direction = query.Upstream
		}
		return ws.Query.TraceCallPath(ctx, query.TraceParams{
			Symbol: req.Symbol, Direction: direction, MaxDepth: req.MaxDepth, CrossLanguage: req.CrossLanguage,
		})
	case "rename":
		return ws.Query.RenameSymbol(ctx, query.RenameParams{OldName: req.OldName, NewName: req.NewName, DryRun: !req.Commit})
	default:
		return nil, fmt.Errorf("unknown op %q", req.Op)
	}
}
