package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/juliecode/julie/internal/model"
)

// MatchType distinguishes a direct Calls edge from a cross-language
// naming-variant match, mirroring the original implementation's MatchType
// enum (src/tools/trace_call_path/types.rs).
type MatchType string

const (
	MatchDirect        MatchType = "direct"
	MatchNamingVariant MatchType = "naming_variant"
)

// CallPathNode is one node of a rendered call tree.
type CallPathNode struct {
	Symbol     *model.Symbol
	MatchType  MatchType
	Similarity float32
	Children   []*CallPathNode
}

// Direction selects which edge of the Calls relationship trace_call_path
// walks (spec.md §4.I: "direction in {upstream, downstream}").
type Direction string

const (
	Upstream   Direction = "upstream"
	Downstream Direction = "downstream"
)

// TraceParams bundles trace_call_path's inputs.
type TraceParams struct {
	Symbol        string
	Direction     Direction
	MaxDepth      int
	CrossLanguage bool
}

// TraceResult is trace_call_path's structured output: one tree per root
// symbol matching Symbol, plus the ASCII rendering spec.md §4.I mandates.
type TraceResult struct {
	Symbol        string          `json:"symbol"`
	Direction     Direction       `json:"direction"`
	PathsFound    int             `json:"paths_found"`
	Tree          string          `json:"tree"`
	NextActions   []string        `json:"next_actions"`
}

// TraceCallPath walks the Calls relationship graph from every symbol
// named Symbol, bounded by MaxDepth with cycle protection via a per-root
// visited set, optionally widening each step with cross-language naming-
// variant matches, then renders the result as an ASCII tree (spec.md §4.I
// trace_call_path). Grounded directly on the original Rust
// format_call_trees/render_node pair (src/tools/trace_call_path/
// formatting.rs) for the textual rendering.
func (svc *Service) TraceCallPath(ctx context.Context, p TraceParams) (TraceResult, error) {
	if p.MaxDepth <= 0 {
		p.MaxDepth = 3
	}
	if p.Direction == "" {
		p.Direction = Upstream
	}

	roots, err := svc.store.SymbolsByName(ctx, p.Symbol)
	if err != nil {
		return TraceResult{}, err
	}

	var trees []callTree
	total := 0
	for _, root := range roots {
		visited := map[string]bool{root.ID: true}
		children, err := svc.traceChildren(ctx, root, p, visited, 1)
		if err != nil {
			return TraceResult{}, err
		}
		total += countNodes(children)
		trees = append(trees, callTree{root: root, children: children})
	}

	tree := renderCallTrees(trees, p.Symbol, p.Direction, p.MaxDepth)

	var actions []string
	if total == 0 {
		actions = []string{"Try enabling cross_language", "Use fast_refs for a broader usage search"}
	} else {
		actions = []string{"Use get_symbols on a node's file to see surrounding context"}
	}

	return TraceResult{
		Symbol: p.Symbol, Direction: p.Direction, PathsFound: total,
		Tree: tree, NextActions: actions,
	}, nil
}

func (svc *Service) traceChildren(ctx context.Context, node *model.Symbol, p TraceParams, visited map[string]bool, depth int) ([]*CallPathNode, error) {
	if depth > p.MaxDepth {
		return nil, nil
	}

	var neighbors []*model.Symbol
	var err error
	if p.Direction == Downstream {
		neighbors, err = svc.store.GetCallees(ctx, node.ID)
	} else {
		neighbors, err = svc.store.GetCallers(ctx, node.ID)
	}
	if err != nil {
		return nil, err
	}

	var out []*CallPathNode
	for _, n := range neighbors {
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		grandchildren, err := svc.traceChildren(ctx, n, p, visited, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, &CallPathNode{Symbol: n, MatchType: MatchDirect, Children: grandchildren})
	}

	if p.CrossLanguage {
		variantNodes, err := svc.traceNamingVariants(ctx, node, p, visited, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, variantNodes...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Symbol.FilePath != out[j].Symbol.FilePath {
			return out[i].Symbol.FilePath < out[j].Symbol.FilePath
		}
		return out[i].Symbol.StartLine < out[j].Symbol.StartLine
	})
	return out, nil
}

// traceNamingVariants looks for symbols in other languages whose name is a
// naming-convention variant of node's name (spec.md §4.I: "at each step
// also consider naming-variant matches against symbols in other
// languages"). A matched symbol's own direct callers/callees continue the
// walk for the remaining depth budget.
func (svc *Service) traceNamingVariants(ctx context.Context, node *model.Symbol, p TraceParams, visited map[string]bool, depth int) ([]*CallPathNode, error) {
	var out []*CallPathNode
	for _, variant := range namingVariants(node.Name) {
		candidates, err := svc.store.SymbolsByName(ctx, variant)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if c.Language == node.Language || visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			sim := similarity(node.Name, c.Name)
			if sim < namingVariantThreshold {
				continue
			}
			grandchildren, err := svc.traceChildren(ctx, c, p, visited, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, &CallPathNode{Symbol: c, MatchType: MatchNamingVariant, Similarity: sim, Children: grandchildren})
		}
	}
	return out, nil
}

func countNodes(nodes []*CallPathNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countNodes(n.Children)
	}
	return total
}

func collectLanguages(nodes []*CallPathNode, set map[string]bool) {
	for _, n := range nodes {
		set[n.Symbol.Language] = true
		collectLanguages(n.Children, set)
	}
}

// callTree is one root symbol plus its walked children, the unit
// renderCallTrees iterates over.
type callTree struct {
	root     *model.Symbol
	children []*CallPathNode
}

// renderCallTrees is the Go translation of format_call_trees
// (src/tools/trace_call_path/formatting.rs): a header line, then one
// "Path N:" block per root with its children rendered via renderNode.
func renderCallTrees(trees []callTree, symbol string, direction Direction, maxDepth int) string {
	if len(trees) == 0 {
		return fmt.Sprintf("No call paths found for '%s'\nTry enabling cross_language or using fast_refs", symbol)
	}

	total := 0
	languages := make(map[string]bool)
	for _, t := range trees {
		total += countNodes(t.children)
		collectLanguages(t.children, languages)
	}

	directionLabel := "callees"
	if direction == Upstream {
		directionLabel = "callers"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Call Path Trace: '%s'\n", symbol)
	fmt.Fprintf(&b, "Direction: %s | Depth: %d\n", direction, maxDepth)
	fmt.Fprintf(&b, "Found %d %s across %d languages\n\n", total, directionLabel, len(languages))

	for i, t := range trees {
		fmt.Fprintf(&b, "Path %d:\n%s (%s:%d)\n", i+1, t.root.Name, t.root.FilePath, t.root.StartLine)
		for j, child := range t.children {
			renderNode(child, &b, "", j == len(t.children)-1)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderNode recursively writes one ASCII-tree line per node using the
// glyphs spec.md §4.I mandates (`├─ └─ │`) and the Direct/NamingVariant
// markers (`→`/`≈`).
func renderNode(node *CallPathNode, b *strings.Builder, prefix string, isLast bool) {
	connector := "├─"
	extension := "│ "
	if isLast {
		connector = "└─"
		extension = "  "
	}
	marker := "→"
	if node.MatchType == MatchNamingVariant {
		marker = "≈"
	}
	fmt.Fprintf(b, "%s%s %s %s (%s:%d)\n", prefix, connector, marker, node.Symbol.Name, node.Symbol.FilePath, node.Symbol.StartLine)

	newPrefix := prefix + extension
	for i, child := range node.Children {
		renderNode(child, b, newPrefix, i == len(node.Children)-1)
	}
}
