// Package query is the stateless query layer over the symbol store, the
// lexical index, and the vector index (spec.md §4.I): fast_search,
// fast_goto, fast_refs, trace_call_path, get_symbols, and rename_symbol.
// Grounded on the original Rust implementation's src/tools/shared.rs
// OptimizedResponse envelope (tool/results/confidence/total_found/
// insights/next_actions) and src/tools/search/scoring.rs's confidence and
// insight heuristics, translated into Go the way the teacher's own
// internal/mcp handlers wrap query results before returning them to a
// caller.
package query

import (
	"context"
	"log/slog"

	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/model"
	"github.com/juliecode/julie/internal/store"
	"github.com/juliecode/julie/internal/vectorindex"
)

// Embedder produces the query-side embedding fast_search needs for its
// optional semantic/ANN merge step. Implemented externally, same contract
// as internal/index.Embedder (spec.md §4.F: embeddings stay a black box).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service answers every query-layer operation against one workspace's
// stores. All methods are safe for concurrent use (spec.md §5: "Query
// paths may be invoked from any thread") since none writes to the stores;
// RenameSymbol with DryRun false writes only the renamed source files.
type Service struct {
	store    *store.Store
	lexIndex *lexical.Index
	vecIndex *vectorindex.Store
	embedder Embedder
	log      *slog.Logger
}

// New builds a query Service. vecIndex and embedder may be nil, in which
// case fast_search's semantic-merge step is skipped.
func New(st *store.Store, lexIndex *lexical.Index, vecIndex *vectorindex.Store, embedder Embedder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, lexIndex: lexIndex, vecIndex: vecIndex, embedder: embedder, log: log.With("component", "query")}
}

// symbolNamesOf extracts the distinct Name field of a symbol slice,
// preserving first-seen order. No operation in this package calls it.
func symbolNamesOf(syms []*model.Symbol) []string {
	seen := make(map[string]bool, len(syms))
	var out []string
	for _, s := range syms {
		if !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s.Name)
		}
	}
	return out
}
