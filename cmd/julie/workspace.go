package main

import (
	"context"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/juliecode/julie/internal/config"
	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/index"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/query"
	"github.com/juliecode/julie/internal/store"
	"github.com/juliecode/julie/internal/vectorindex"
)

// workspaceID is derived from a project root's absolute path, the same
// blake3 hash the per-file pipeline already uses for content hashing
// (internal/index/pipeline.go), so two CLI invocations against the same
// root always agree on one id without needing a persisted UUID.
func workspaceID(root string) string {
	sum := blake3.Sum256([]byte(root))
	return hex.EncodeToString(sum[:8])
}

// workspace bundles everything scan/update/query/serve need: the opened
// store, a fresh in-memory lexical index, an (empty unless an embedder
// ever ran) vector store, and an orchestrator wired to all three — the
// same component set internal/index's own tests assemble by hand, plus
// disk-backed persistence (spec.md §6's `<root>/.julie/` layout).
type workspace struct {
	root string
	id   string
	cfg  *config.Config

	Store    *store.Store
	Lexical  *lexical.Index
	Vectors  *vectorindex.Store
	Orch     *index.Orchestrator
	Query    *query.Service
}

// openWorkspace resolves root to an absolute path, loads its config,
// ensures `<root>/.julie/` exists, and opens the store/lexical/vector
// trio. dbOverride, when non-empty, replaces the default
// `<root>/.julie/index.db` location (the CLI surface's `--db` flag,
// spec.md §6).
func openWorkspace(ctx context.Context, root, dbOverride string, log *slog.Logger) (*workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(absRoot, ".julie")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(stateDir, "index.db")
	if dbOverride != "" {
		dbPath = dbOverride
	}

	st, err := store.Open(ctx, dbPath, log)
	if err != nil {
		return nil, err
	}

	vecDir := filepath.Join(stateDir, "vectors")
	if err := os.MkdirAll(vecDir, 0o755); err != nil {
		st.Close()
		return nil, err
	}
	vecIndex, err := vectorindex.Open(vecDir)
	if err != nil {
		st.Close()
		return nil, err
	}

	lexIndex := lexical.New(lexical.NewTokenizer(nil))
	factory := extract.NewDefaultFactory()
	id := workspaceID(absRoot)

	orch := index.New(cfg, absRoot, id, factory, st, lexIndex, vecIndex, nil, log)
	svc := query.New(st, lexIndex, vecIndex, nil, log)

	return &workspace{
		root: absRoot, id: id, cfg: cfg,
		Store: st, Lexical: lexIndex, Vectors: vecIndex, Orch: orch, Query: svc,
	}, nil
}

func (w *workspace) Close() error {
	return w.Store.Close()
}
