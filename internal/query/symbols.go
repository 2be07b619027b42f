package query

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/juliecode/julie/internal/model"
)

// SymbolsMode controls how much of each symbol's source get_symbols
// populates into CodeContext (spec.md §4.I get_symbols).
type SymbolsMode string

const (
	ModeStructure SymbolsMode = "structure"
	ModeMinimal   SymbolsMode = "minimal"
	ModeFull      SymbolsMode = "full"
)

// SymbolsParams bundles get_symbols' inputs.
type SymbolsParams struct {
	FilePath string
	Mode     SymbolsMode
	Target   string // optional substring filter
	MaxDepth int    // 0 = unbounded
	Limit    int    // 0 = unbounded
}

// SymbolNode is one entry in get_symbols' output: the symbol plus its
// nesting depth within the file (root symbols are depth 0).
type SymbolNode struct {
	Symbol *model.Symbol `json:"symbol"`
	Depth  int           `json:"depth"`
}

// GetSymbols lists every symbol in FilePath ordered by start_byte,
// restricts to Target's matches plus their ancestors when Target is set,
// populates CodeContext according to Mode, and truncates by MaxDepth/Limit
// (spec.md §4.I get_symbols).
func (svc *Service) GetSymbols(ctx context.Context, p SymbolsParams) (Response[SymbolNode], error) {
	syms, err := svc.store.GetSymbolsByFile(ctx, p.FilePath)
	if err != nil {
		return Response[SymbolNode]{}, err
	}
	sortByStartByte(syms)

	byID := make(map[string]*model.Symbol, len(syms))
	for _, s := range syms {
		byID[s.ID] = s
	}
	depth := make(map[string]int, len(syms))
	for _, s := range syms {
		depth[s.ID] = depthOf(s, byID)
	}

	if p.Target != "" {
		syms = restrictToTargetAndAncestors(syms, byID, p.Target)
	}

	truncated := false
	if p.MaxDepth > 0 {
		filtered := syms[:0:0]
		for _, s := range syms {
			if depth[s.ID] <= p.MaxDepth {
				filtered = append(filtered, s)
			} else {
				truncated = true
			}
		}
		syms = filtered
	}

	var data []byte
	if p.Mode == ModeFull || p.Mode == ModeMinimal {
		data, _ = os.ReadFile(p.FilePath)
	}

	nodes := make([]SymbolNode, 0, len(syms))
	for _, s := range syms {
		cp := *s
		d := depth[s.ID]
		switch {
		case p.Mode == ModeFull:
			cp.CodeContext = sliceBytes(data, s.StartByte, s.EndByte)
		case p.Mode == ModeMinimal && d == 0:
			cp.CodeContext = sliceBytes(data, s.StartByte, s.EndByte)
		default:
			cp.CodeContext = ""
		}
		nodes = append(nodes, SymbolNode{Symbol: &cp, Depth: d})
	}

	resp := newResponse("get_symbols", nodes, 1.0)
	resp.Truncated = truncated
	if p.Limit > 0 {
		resp.limit(p.Limit)
	}
	if resp.Truncated {
		resp.Insights = "Result truncated by max_depth/limit; narrow target or raise limit to see more"
	}
	return resp, nil
}

func sortByStartByte(syms []*model.Symbol) {
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].StartByte < syms[j].StartByte })
}

// depthOf walks ParentID links to the root, counting hops.
func depthOf(s *model.Symbol, byID map[string]*model.Symbol) int {
	depth := 0
	cur := s
	for cur.ParentID != "" {
		parent, ok := byID[cur.ParentID]
		if !ok {
			break
		}
		depth++
		cur = parent
	}
	return depth
}

// restrictToTargetAndAncestors keeps symbols whose name contains target
// (case-insensitive) plus every ancestor up to the root, per spec.md §4.I:
// "restrict to symbols whose name contains the target substring plus
// their ancestors up to the root".
func restrictToTargetAndAncestors(syms []*model.Symbol, byID map[string]*model.Symbol, target string) []*model.Symbol {
	lower := strings.ToLower(target)
	keep := make(map[string]bool, len(syms))
	for _, s := range syms {
		if strings.Contains(strings.ToLower(s.Name), lower) {
			keep[s.ID] = true
			for cur := s; cur.ParentID != ""; {
				parent, ok := byID[cur.ParentID]
				if !ok {
					break
				}
				keep[parent.ID] = true
				cur = parent
			}
		}
	}
	out := syms[:0:0]
	for _, s := range syms {
		if keep[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

func sliceBytes(data []byte, start, end int) string {
	if data == nil || start < 0 || end > len(data) || start > end {
		return ""
	}
	return string(data[start:end])
}
