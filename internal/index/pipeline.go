package index

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zeebo/blake3"

	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/model"
	"github.com/juliecode/julie/internal/parser"
	"github.com/juliecode/julie/internal/store"
)

// embedTask is one symbol queued for embedding after a successful extract
// (spec.md §4.H: "enqueue for embedding" step of the per-file pipeline).
type embedTask struct {
	SymbolID string
	FilePath string
	Text     string
}

// filePipeline is the per-file extract-and-persist step shared by the full
// scan and the fsnotify-driven incremental update (spec.md §4.H step 3 and
// §4.H's incremental-update paragraph both funnel through here).
type filePipeline struct {
	factory     *extract.Factory
	store       *store.Store
	lexIndex    *lexical.Index
	embedQueue  chan<- embedTask
	workspaceID string
	root        string
	log         *slog.Logger
}

// Result summarizes one file's pipeline run for caller-side bookkeeping
// (e.g. deciding whether a resolver pass is warranted).
type Result struct {
	Path      string
	Skipped   bool // hash matched; nothing re-extracted
	ParseErr  error
	NewSymbol []string // names of symbols newly written this run, for the incremental resolver restriction
}

// process runs the pipeline for one discovered file using pp, the
// tree-sitter pool the calling worker owns (spec.md §4.H: "each worker owns
// a LanguageParserPool; not thread-safe; one per worker").
func (fp *filePipeline) process(ctx context.Context, d Discovered, pp *parser.TreeSitterParser, force bool) (Result, error) {
	res := Result{Path: d.Path}

	data, err := os.ReadFile(d.Path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", d.Path, err)
	}
	info, err := os.Stat(d.Path)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", d.Path, err)
	}

	sum := blake3.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if !force {
		if prior, ok, err := fp.store.GetFileHash(ctx, d.Path); err == nil && ok && prior == hash {
			res.Skipped = true
			return res, nil
		}
	}

	ext := extOf(d.Path)
	var tree *sitter.Tree
	if tsParser, perr := pp.ParserForExt(ext); perr == nil {
		tree = tsParser.Parse(data, nil)
	}
	// Lexical-scan-tier languages have no grammar registered; their
	// extractors accept a nil tree and scan source directly.

	extractResult, extractErr := fp.factory.Extract(d.Language, d.Path, data, tree, fp.root, fp.workspaceID)

	fileRow := &model.File{
		Path: d.Path, Language: d.Language, Hash: hash,
		MTimeNS: uint64(info.ModTime().UnixNano()), Size: uint64(info.Size()),
		WorkspaceID: fp.workspaceID,
	}

	if extractErr != nil {
		res.ParseErr = extractErr
		// The file row is written with no symbols; it carries no
		// parse-error flag, so the failure is visible only in this log
		// line and in res.ParseErr.
		fp.log.Warn("extract failed, storing file row without symbols", "path", d.Path, "error", extractErr)
		if err := fp.store.BulkInsertFileData(ctx, fileRow, nil, nil, nil, nil, nil); err != nil {
			return res, err
		}
		return res, nil
	}

	if err := fp.store.BulkInsertFileData(ctx, fileRow,
		extractResult.Symbols, extractResult.Relationships, extractResult.Pending,
		extractResult.Identifiers, extractResult.Types); err != nil {
		return res, err
	}

	fp.lexIndex.DeleteDocumentsForFile(d.Path)
	fp.lexIndex.AddFileDocument(fileRow, string(data))
	for _, sym := range extractResult.Symbols {
		body := symbolBody(data, sym)
		fp.lexIndex.AddSymbolDocument(sym, body)
		res.NewSymbol = append(res.NewSymbol, sym.Name)
		if fp.embedQueue != nil {
			select {
			case fp.embedQueue <- embedTask{SymbolID: sym.ID, FilePath: sym.FilePath, Text: embedText(sym, body)}:
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(5 * time.Second):
				fp.log.Warn("embed queue full, dropping symbol for this cycle", "symbol", sym.ID)
			}
		}
	}

	return res, nil
}

func symbolBody(source []byte, sym *model.Symbol) string {
	if sym.StartByte < 0 || sym.EndByte > len(source) || sym.StartByte > sym.EndByte {
		return ""
	}
	return string(source[sym.StartByte:sym.EndByte])
}

func embedText(sym *model.Symbol, body string) string {
	return sym.Name + " " + sym.Signature + " " + sym.DocComment + "\n" + body
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
