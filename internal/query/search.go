package query

import (
	"context"
	"sort"
	"strings"

	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/model"
)

// SearchHit is one fast_search result: the symbol plus a context_lines
// window of its source, truncated per spec.md §4.I step 5.
type SearchHit struct {
	Symbol      *model.Symbol `json:"symbol"`
	CodeContext string        `json:"code_context,omitempty"`
	Score       float64       `json:"score"`
}

// SearchMode selects whether fast_search augments the lexical hit list
// with an ANN merge (spec.md §4.I step 3: "if semantic mode is
// requested").
type SearchMode string

const (
	SearchLexical  SearchMode = "lexical"
	SearchSemantic SearchMode = "semantic"
)

// SearchParams bundles fast_search's inputs (spec.md §4.I: "query,
// filters, limit").
type SearchParams struct {
	Query        string
	Language     string
	Kind         model.SymbolKind
	Mode         SearchMode
	ContextLines int // 0 uses the spec default of 1 (3 total lines)
	Limit        int
}

const rrfK = 60 // reciprocal-rank-fusion constant; standard value, not spec-specified

// FastSearch runs the lexical query (with its own §4.E expansion cascade),
// optionally fuses in an ANN pass, scores confidence, attaches insights
// and next_actions, and truncates each hit's code_context (spec.md §4.I
// fast_search).
func (svc *Service) FastSearch(ctx context.Context, p SearchParams) (Response[SearchHit], error) {
	lexHits := svc.lexIndex.SearchSymbols(p.Query, lexical.SymbolFilter{Language: p.Language, Kind: p.Kind})

	ranks := make(map[string]int, len(lexHits))
	for i, h := range lexHits {
		ranks[h.ID] = i
	}

	if p.Mode == SearchSemantic && svc.vecIndex != nil && svc.embedder != nil {
		annIDs, err := svc.semanticMerge(ctx, p)
		if err != nil {
			svc.log.Warn("semantic merge failed, falling back to lexical-only", "error", err)
		} else {
			ranks = fuseRanks(ranks, annIDs)
		}
	}

	ids := make([]string, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	sortByRank(ids, ranks)

	hits := make([]SearchHit, 0, len(ids))
	var names, languages, kinds []string
	for _, id := range ids {
		sym, err := svc.store.GetSymbolByID(ctx, id)
		if err != nil {
			svc.log.Warn("fast_search: symbol lookup failed", "id", id, "error", err)
			continue
		}
		if sym == nil {
			continue
		}
		names = append(names, sym.Name)
		languages = append(languages, sym.Language)
		kinds = append(kinds, string(sym.Kind))
		hits = append(hits, SearchHit{
			Symbol:      sym,
			CodeContext: truncateContext(sym.CodeContext, contextLines(p.ContextLines)),
		})
	}

	confidence := searchConfidence(p.Query, names)
	resp := newResponse("fast_search", hits, confidence)
	resp.Insights = searchInsights(confidence, languages, kinds)
	resp.NextActions = nextActions(p.Query, names)
	if p.Limit > 0 {
		resp.limit(p.Limit)
	} else {
		resp.limit(confidenceLimit(confidence))
	}
	return resp, nil
}

// semanticMerge embeds the query text, ensures the vector store is
// current (spec.md §4.I: "stale vector store -> reload and retry once"),
// and returns symbol ids ranked by cosine similarity.
func (svc *Service) semanticMerge(ctx context.Context, p SearchParams) ([]string, error) {
	vec, err := svc.embedder.Embed(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	hits := svc.vecIndex.KNN(vec, 50, nil)
	if len(hits) == 0 {
		if err := svc.vecIndex.EnsureFresh(); err == nil {
			hits = svc.vecIndex.KNN(vec, 50, nil)
		}
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.SymbolID
	}
	return ids, nil
}

// fuseRanks implements reciprocal rank fusion: score(id) = sum over every
// ranking list the id appears in of 1/(rrfK + rank). Lexical-only ids that
// never appear in the ANN list keep their lexical-only contribution.
func fuseRanks(lexRanks map[string]int, annIDs []string) map[string]int {
	scores := make(map[string]float64, len(lexRanks)+len(annIDs))
	for id, r := range lexRanks {
		scores[id] += 1.0 / float64(rrfK+r+1)
	}
	for r, id := range annIDs {
		scores[id] += 1.0 / float64(rrfK+r+1)
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sortByScoreDesc(ids, scores)

	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}

func sortByScoreDesc(ids []string, scores map[string]float64) {
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
}

func sortByRank(ids []string, ranks map[string]int) {
	sort.Slice(ids, func(i, j int) bool { return ranks[ids[i]] < ranks[ids[j]] })
}

func contextLines(requested int) int {
	if requested > 0 {
		return requested
	}
	return 1
}

// truncateContext keeps at most lines*2+1 lines centered on the existing
// content (spec.md §4.I step 5). CodeContext is already a short extracted
// window, so this clips rather than re-slices source.
func truncateContext(codeContext string, lines int) string {
	if codeContext == "" {
		return ""
	}
	parts := strings.Split(codeContext, "\n")
	max := lines*2 + 1
	if len(parts) <= max {
		return codeContext
	}
	mid := len(parts) / 2
	start := mid - lines
	if start < 0 {
		start = 0
	}
	end := start + max
	if end > len(parts) {
		end = len(parts)
	}
	return strings.Join(parts[start:end], "\n")
}
