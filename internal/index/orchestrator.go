package index

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/juliecode/julie/internal/config"
	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/model"
	"github.com/juliecode/julie/internal/parser"
	"github.com/juliecode/julie/internal/resolve"
	"github.com/juliecode/julie/internal/store"
	"github.com/juliecode/julie/internal/vectorindex"
)

// Embedder is the external embedding function the orchestrator treats as a
// black box (spec.md §4.F: embeddings are produced outside the vector-index
// interface and merely inserted through it). A nil Embedder disables the
// embedding phase entirely; scan/resolve/lexical indexing still run.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScanStats summarizes one full-scan run.
type ScanStats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesSkipped    int
	ParseErrors     int
	Resolve         resolve.Stats
}

// Orchestrator wires discovery, the per-worker parser-pool pipeline, the
// post-scan resolver, and the embedding queue into one coherent indexing
// run (spec.md §4.H). Grounded on the teacher's master_index.go component
// wiring (fileScanner + fileProcessor + progressTracker + rebuilder, all
// owned by one top-level struct), generalized from the teacher's in-memory
// core.* indexes to this module's store/lexical/vectorindex trio.
type Orchestrator struct {
	cfg         *config.Config
	root        string
	workspaceID string

	factory  *extract.Factory
	store    *store.Store
	lexIndex *lexical.Index
	vecIndex *vectorindex.Store
	embedder Embedder

	log *slog.Logger

	embedQueue      chan embedTask
	embedWG         sync.WaitGroup
	embedIdleTimer  time.Duration
	lastEmbedActivity time.Time
	embedMu         sync.Mutex
}

// New builds an Orchestrator. vecIndex and embedder may both be nil, in
// which case the embedding phase is skipped entirely.
func New(cfg *config.Config, root, workspaceID string, factory *extract.Factory,
	st *store.Store, lexIndex *lexical.Index, vecIndex *vectorindex.Store, embedder Embedder, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg: cfg, root: root, workspaceID: workspaceID,
		factory: factory, store: st, lexIndex: lexIndex, vecIndex: vecIndex, embedder: embedder,
		log:            log.With("component", "index"),
		embedIdleTimer: 2 * time.Second,
	}
}

// workerCount resolves the configured parallelism, defaulting to NumCPU
// (spec.md §4.H: "parallel worker pool").
func (o *Orchestrator) workerCount() int {
	if n := o.cfg.Performance.ParallelFileWorkers; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// FullScan discovers every file under root, processes each through the
// per-file pipeline using a bounded pool of workers (one LanguageParserPool
// per worker), then runs one resolver pass over every pending relationship
// in the workspace (spec.md §4.H).
func (o *Orchestrator) FullScan(ctx context.Context) (ScanStats, error) {
	var stats ScanStats
	var mu sync.Mutex

	disc := newDiscoverer(o.root, o.cfg)

	if o.embedder != nil && o.vecIndex != nil {
		o.startEmbedWorker(ctx)
		defer o.stopEmbedWorker()
	}

	g, gctx := errgroup.WithContext(ctx)
	files := make(chan Discovered, o.workerCount()*4)

	g.Go(func() error {
		defer close(files)
		return disc.Walk(gctx, func(d Discovered) error {
			mu.Lock()
			stats.FilesDiscovered++
			mu.Unlock()
			select {
			case files <- d:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	for w := 0; w < o.workerCount(); w++ {
		g.Go(func() error {
			pool := parser.NewTreeSitterParser()
			defer pool.Close()
			fp := &filePipeline{
				factory: o.factory, store: o.store, lexIndex: o.lexIndex,
				workspaceID: o.workspaceID, root: o.root, log: o.log,
			}
			if o.embedQueue != nil {
				fp.embedQueue = o.embedQueue
			}
			for {
				select {
				case d, ok := <-files:
					if !ok {
						return nil
					}
					res, err := fp.process(gctx, d, pool, false)
					if err != nil {
						return err
					}
					mu.Lock()
					if res.Skipped {
						stats.FilesSkipped++
					} else {
						stats.FilesProcessed++
						if res.ParseErr != nil {
							stats.ParseErrors++
						}
					}
					mu.Unlock()
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	rstats, err := o.runResolver(ctx, nil)
	if err != nil {
		return stats, err
	}
	stats.Resolve = rstats
	return stats, nil
}

// runResolver runs the cross-file resolver over pending relationships,
// restricting to restrictToNames when non-nil (spec.md §4.H's incremental
// update: "a restricted resolver pass — pending edges from that file, or
// pending edges anywhere whose callee_name matches a newly added symbol
// name").
func (o *Orchestrator) runResolver(ctx context.Context, restrictToNames []string) (resolve.Stats, error) {
	pending, err := o.store.GetPendingRelationships(ctx, o.workspaceID)
	if err != nil {
		return resolve.Stats{}, err
	}
	if restrictToNames != nil {
		wanted := make(map[string]bool, len(restrictToNames))
		for _, n := range restrictToNames {
			wanted[n] = true
		}
		filtered := pending[:0]
		for _, p := range pending {
			if wanted[p.CalleeName] {
				filtered = append(filtered, p)
			}
		}
		pending = filtered
	}
	if len(pending) == 0 {
		return resolve.Stats{}, nil
	}

	r := resolve.New(o.store, o.log)
	outcomes, rstats := r.Resolve(ctx, pending)
	for _, oc := range outcomes {
		if oc.Resolved == nil {
			continue
		}
		if err := o.store.ReplacePendingWithResolved(ctx, oc.Pending.ID, oc.Resolved); err != nil {
			return rstats, err
		}
	}
	o.log.Info("resolver pass complete", "total", rstats.Total, "resolved", rstats.Resolved,
		"no_candidates", rstats.NoCandidates, "no_valid_candidates", rstats.NoValidCandidates,
		"lookup_errors", rstats.LookupErrors)
	return rstats, nil
}

// UpdateFile re-runs the per-file pipeline for a single changed path, then a
// resolver pass restricted to edges this file could plausibly complete
// (spec.md §4.H incremental update). Used directly by callers and by the
// fsnotify watcher in watch.go.
func (o *Orchestrator) UpdateFile(ctx context.Context, path string) error {
	lang, ok := languageForPath(path)
	if !ok {
		return nil
	}
	pool := parser.NewTreeSitterParser()
	defer pool.Close()

	fp := &filePipeline{
		factory: o.factory, store: o.store, lexIndex: o.lexIndex,
		workspaceID: o.workspaceID, root: o.root, log: o.log,
	}
	if o.embedQueue != nil {
		fp.embedQueue = o.embedQueue
	}

	res, err := fp.process(ctx, Discovered{Path: path, Language: lang}, pool, true)
	if err != nil {
		return err
	}
	if res.Skipped {
		return nil
	}

	restrict := append([]string(nil), res.NewSymbol...)
	_, err = o.runResolverForFile(ctx, path, restrict)
	return err
}

// runResolverForFile restricts the pass to pending edges originating in
// path plus any edge whose callee_name is one of newNames (the names of
// the symbols just written for path). It filters the pending set itself
// rather than going through runResolver.
func (o *Orchestrator) runResolverForFile(ctx context.Context, path string, newNames []string) (resolve.Stats, error) {
	pending, err := o.store.GetPendingRelationships(ctx, o.workspaceID)
	if err != nil {
		return resolve.Stats{}, err
	}
	wanted := make(map[string]bool, len(newNames))
	for _, n := range newNames {
		wanted[n] = true
	}
	var subset []*model.PendingRelationship
	for _, p := range pending {
		if p.FilePath == path || wanted[p.CalleeName] {
			subset = append(subset, p)
		}
	}
	if len(subset) == 0 {
		return resolve.Stats{}, nil
	}
	r := resolve.New(o.store, o.log)
	outcomes, rstats := r.Resolve(ctx, subset)
	for _, oc := range outcomes {
		if oc.Resolved == nil {
			continue
		}
		if err := o.store.ReplacePendingWithResolved(ctx, oc.Pending.ID, oc.Resolved); err != nil {
			return rstats, err
		}
	}
	return rstats, nil
}

// RemoveFile deletes every row a deleted file owned, across the store, the
// lexical index, and the vector index (spec.md §4.H/§4.F).
func (o *Orchestrator) RemoveFile(ctx context.Context, path string) error {
	if err := o.store.DeleteFileCascade(ctx, path); err != nil {
		return err
	}
	o.lexIndex.DeleteDocumentsForFile(path)
	if o.vecIndex != nil {
		o.vecIndex.DeleteEmbeddingsForFile(path)
	}
	return nil
}
