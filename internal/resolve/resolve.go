// Package resolve turns the pending relationships extraction leaves behind
// into resolved cross-file edges (spec.md §4.G). Grounded on the teacher's
// internal/symbollinker/linker_engine.go + per-language *_resolver.go
// pairing, generalized into one resolver scoring any language's candidates
// with a single ranked-scoring function instead of one resolver per
// language.
package resolve

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juliecode/julie/internal/model"
)

// CandidateSource looks up symbols by exact name. internal/store implements
// this against the sqlite symbols table; tests can fake it in-memory.
type CandidateSource interface {
	SymbolsByName(ctx context.Context, name string) ([]*model.Symbol, error)
}

// Stats is the ResolutionStats row spec.md §4.G requires the resolver to
// log after each pass.
type Stats struct {
	Total             int
	Resolved          int
	NoCandidates      int
	NoValidCandidates int
	LookupErrors      int
}

// Resolver scores PendingRelationships against the symbol table and
// produces resolved Relationships, never guessing when no candidate
// qualifies (spec.md §4.G step 6).
type Resolver struct {
	candidates CandidateSource
	log        *slog.Logger
}

// New builds a resolver over the given candidate source.
func New(candidates CandidateSource, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{candidates: candidates, log: log.With("component", "resolve")}
}

// Outcome is one pending relationship's resolution result.
type Outcome struct {
	Pending    *model.PendingRelationship
	Resolved   *model.Relationship // nil when unresolved
	WinnerName string
}

// Resolve runs the full algorithm from spec.md §4.G over pending, returning
// one Outcome per pending relationship plus aggregate Stats. Pending edges
// left unresolved are not removed by this package — callers keep them in
// the pending table (spec.md §4.G step 6: "never guess").
func (r *Resolver) Resolve(ctx context.Context, pending []*model.PendingRelationship) ([]Outcome, Stats) {
	outcomes := make([]Outcome, 0, len(pending))
	var stats Stats
	stats.Total = len(pending)

	for _, p := range pending {
		candidates, err := r.candidates.SymbolsByName(ctx, p.CalleeName)
		if err != nil {
			stats.LookupErrors++
			outcomes = append(outcomes, Outcome{Pending: p})
			continue
		}
		if len(candidates) == 0 {
			stats.NoCandidates++
			outcomes = append(outcomes, Outcome{Pending: p})
			continue
		}

		winner := selectWinner(p, candidates)
		if winner == nil {
			stats.NoValidCandidates++
			outcomes = append(outcomes, Outcome{Pending: p})
			continue
		}

		stats.Resolved++
		rel := &model.Relationship{
			ID:           model.RelationshipID(p.FromSymbolID, winner.ID, p.Kind, p.LineNumber) + "_resolved",
			FromSymbolID: p.FromSymbolID,
			ToSymbolID:   winner.ID,
			Kind:         p.Kind,
			FilePath:     p.FilePath,
			LineNumber:   p.LineNumber,
			Confidence:   p.Confidence,
			WorkspaceID:  p.WorkspaceID,
		}
		outcomes = append(outcomes, Outcome{Pending: p, Resolved: rel, WinnerName: winner.Name})
	}

	r.log.Info("resolution pass complete",
		"total", stats.Total, "resolved", stats.Resolved,
		"no_candidates", stats.NoCandidates, "no_valid_candidates", stats.NoValidCandidates,
		"lookup_errors", stats.LookupErrors)
	return outcomes, stats
}

// scored pairs a candidate with its computed score for sorting.
type scored struct {
	sym   *model.Symbol
	score int
}

// selectWinner implements spec.md §4.G steps 2-4: filter to resolvable
// kinds, score, and pick the max with a deterministic tie-break.
func selectWinner(p *model.PendingRelationship, candidates []*model.Symbol) *model.Symbol {
	pendingLang := languageOfPath(p.FilePath)
	pendingDir := filepath.Dir(p.FilePath)

	var scored_ []scored
	for _, c := range candidates {
		if !model.ResolvableKinds[c.Kind] {
			continue
		}
		score := 1 // base
		if c.Language == pendingLang {
			score += 100
		}
		cDir := filepath.Dir(c.FilePath)
		if cDir == pendingDir {
			score += 50
		} else if strings.HasPrefix(cDir, pendingDir) || strings.HasPrefix(pendingDir, cDir) {
			score += 25
		}
		if p.Kind == model.RelCalls && isCallable(c.Kind) {
			score += 10
		}
		scored_ = append(scored_, scored{sym: c, score: score})
	}
	if len(scored_) == 0 {
		return nil
	}

	sort.SliceStable(scored_, func(i, j int) bool {
		if scored_[i].score != scored_[j].score {
			return scored_[i].score > scored_[j].score
		}
		if scored_[i].sym.FilePath != scored_[j].sym.FilePath {
			return scored_[i].sym.FilePath < scored_[j].sym.FilePath
		}
		return scored_[i].sym.StartLine < scored_[j].sym.StartLine
	})
	return scored_[0].sym
}

func isCallable(k model.SymbolKind) bool {
	return k == model.KindFunction || k == model.KindMethod || k == model.KindConstructor
}

// languageOfPath infers a language tag from a file extension; it mirrors
// the same extension table internal/index uses for dispatch, duplicated
// here in miniature because the resolver must stay a pure function of its
// CandidateSource and never import the orchestrator package.
func languageOfPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	ext = strings.TrimPrefix(ext, ".")
	if lang, ok := extLanguage[ext]; ok {
		return lang
	}
	return ext
}

var extLanguage = map[string]string{
	"go": "go", "py": "python", "js": "javascript", "jsx": "javascript",
	"ts": "typescript", "tsx": "typescript", "java": "java", "c": "c",
	"h": "c", "cpp": "cpp", "cc": "cpp", "cxx": "cpp", "hpp": "cpp",
	"rs": "rust", "cs": "csharp", "php": "php", "zig": "zig",
	"sh": "bash", "bash": "bash", "html": "html", "htm": "html",
	"css": "css", "json": "json", "yaml": "yaml", "yml": "yaml",
	"toml": "toml", "xml": "xml", "md": "markdown", "sql": "sql",
	"lua": "lua", "rb": "ruby", "swift": "swift", "kt": "kotlin",
	"dart": "dart", "gd": "gdscript", "ps1": "powershell", "r": "r",
	"qml": "qml", "vue": "vue", "razor": "razor", "cshtml": "razor",
}
