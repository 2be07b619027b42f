// Package extract turns a parsed file (tree-sitter CST, or — for languages
// with no retrieved grammar — a lexically scanned pseudo-CST) into the value
// objects defined in internal/model: symbols, in-file relationships, pending
// relationships, identifiers, and inferred types. Extractors never touch the
// database; they are pure functions over (language, path, source, tree).
package extract

import (
	"fmt"
	"strings"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// Results is the value bundle a single extractor invocation produces
// (spec.md §4.B/§4.C's ExtractionResults).
type Results struct {
	Symbols       []*model.Symbol
	Relationships []*model.Relationship
	Pending       []*model.PendingRelationship
	Identifiers   []*model.Identifier
	Types         []*model.TypeInfo
}

// Extractor is the capability set every language implementation exposes
// (spec.md §9's "duck typing / dynamic dispatch" note: a capability set, no
// inheritance).
type Extractor interface {
	Language() string
	Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error)
}

// BaseExtractor is the collaborator every language extractor embeds, per
// spec.md §4.A. It owns id generation and the small set of CST helpers
// shared across languages (teacher grounding: internal/symbollinker's
// BaseExtractor + GetNodeText/FindChildByType/FindChildrenByType helpers).
type BaseExtractor struct {
	language   string
	counter    uint64
	identSeen  map[string]bool
}

// NewBaseExtractor constructs a collaborator scoped to one extraction call.
func NewBaseExtractor(language string) *BaseExtractor {
	return &BaseExtractor{language: language, identSeen: make(map[string]bool)}
}

// NodeText returns the UTF-8 slice of source covered by node, or "" when
// node's byte range falls outside source (teacher: symbollinker.GetNodeText).
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(source)) || end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// FindChildByType returns the first direct child with the given kind
// (teacher: symbollinker.FindChildByType).
func FindChildByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// FindChildrenByType returns every direct child with the given kind
// (teacher: symbollinker.FindChildrenByType).
func FindChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// Position returns the 1-based line, 0-based column tree-sitter reports for
// node's start, matching spec.md §3's "lines/columns 1-based and 0-based".
func Position(node *sitter.Node) (line, col int) {
	p := node.StartPosition()
	return int(p.Row) + 1, int(p.Column)
}

// EndPosition returns the end line for a node.
func EndPosition(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// CreateSymbol fills positions and the deterministic id, enforcing the
// start_byte <= end_byte invariant (spec.md §3, §4.A).
func (b *BaseExtractor) CreateSymbol(node *sitter.Node, name string, kind model.SymbolKind, filePath string) *model.Symbol {
	startLine, startCol := Position(node)
	endLine := EndPosition(node)
	s := &model.Symbol{
		Name:      name,
		Kind:      kind,
		Language:  b.language,
		FilePath:  filePath,
		StartLine: startLine,
		EndLine:   endLine,
		StartCol:  startCol,
		EndCol:    int(node.EndPosition().Column),
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
	}
	s.ID = model.SymbolID(name, filePath, startLine, startCol, kind)
	return s
}

// CreateIdentifier builds an Identifier usage-site record, deduplicating by
// (name, byte range, containing symbol) as spec.md §4.C requires. Returns
// nil when this exact occurrence was already recorded.
func (b *BaseExtractor) CreateIdentifier(node *sitter.Node, name string, kind model.IdentifierKind, filePath, containingID string) *model.Identifier {
	id := model.IdentifierID(name, filePath, int(node.StartByte()), int(node.EndByte()), containingID)
	if b.identSeen[id] {
		return nil
	}
	b.identSeen[id] = true
	line, col := Position(node)
	return &model.Identifier{
		ID:                 id,
		Name:               name,
		Kind:               kind,
		FilePath:           filePath,
		StartLine:          line,
		StartCol:           col,
		StartByte:          int(node.StartByte()),
		EndByte:            int(node.EndByte()),
		ContainingSymbolID: containingID,
		Confidence:         1.0,
	}
}

// CreateRelationship builds a resolved, in-file relationship.
func (b *BaseExtractor) CreateRelationship(fromID, toID string, kind model.RelationshipKind, node *sitter.Node, filePath string, confidence float32) *model.Relationship {
	line, _ := Position(node)
	return &model.Relationship{
		ID:           model.RelationshipID(fromID, toID, kind, line),
		FromSymbolID: fromID,
		ToSymbolID:   toID,
		Kind:         kind,
		FilePath:     filePath,
		LineNumber:   line,
		Confidence:   confidence,
	}
}

// CreatePending builds a pending (cross-file) relationship.
func (b *BaseExtractor) CreatePending(fromID, calleeName string, kind model.RelationshipKind, node *sitter.Node, filePath string, confidence float32) *model.PendingRelationship {
	line, _ := Position(node)
	return &model.PendingRelationship{
		ID:           model.PendingID(fromID, calleeName, kind, line),
		FromSymbolID: fromID,
		CalleeName:   calleeName,
		Kind:         kind,
		FilePath:     filePath,
		LineNumber:   line,
		Confidence:   confidence,
	}
}

// FindContainingSymbol returns the innermost symbol whose byte range
// contains node's start byte (spec.md §4.A's find_containing_symbol).
func FindContainingSymbol(node *sitter.Node, symbols []*model.Symbol) *model.Symbol {
	if node == nil {
		return nil
	}
	target := int(node.StartByte())
	var best *model.Symbol
	bestSpan := -1
	for _, s := range symbols {
		if s.StartByte <= target && target <= s.EndByte {
			span := s.EndByte - s.StartByte
			if best == nil || span < bestSpan {
				best = s
				bestSpan = span
			}
		}
	}
	return best
}

// FindDocComment walks preceding sibling trivia looking for a contiguous
// run of comment nodes immediately before node (spec.md §4.B rule 6). The
// caller supplies the language's comment node kind(s); lines are joined and
// delimiter markers stripped.
func FindDocComment(node *sitter.Node, source []byte, commentKinds ...string) string {
	if node == nil {
		return ""
	}
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	idx := -1
	for i := uint(0); i < parent.ChildCount(); i++ {
		if parent.Child(i) == node {
			idx = int(i)
			break
		}
	}
	if idx <= 0 {
		return ""
	}
	var lines []string
	isComment := func(k string) bool {
		for _, ck := range commentKinds {
			if k == ck {
				return true
			}
		}
		return false
	}
	i := idx - 1
	lastLine := -1
	for i >= 0 {
		sib := parent.Child(uint(i))
		if sib == nil || !isComment(sib.Kind()) {
			break
		}
		line := int(sib.StartPosition().Row)
		if lastLine != -1 && lastLine-line > 1 {
			break
		}
		text := strings.TrimSpace(NodeText(sib, source))
		lines = append([]string{stripCommentMarkers(text)}, lines...)
		lastLine = line
		i--
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stripCommentMarkers(s string) string {
	s = strings.TrimPrefix(s, "///")
	s = strings.TrimPrefix(s, "//!")
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimSuffix(s, "*/")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimPrefix(s, "*")
	return strings.TrimSpace(s)
}

// nextAnon generates a stable synthetic name for unnamed constructs
// (anonymous structs, closures) that still need an id.
func (b *BaseExtractor) nextAnon(prefix string) string {
	n := atomic.AddUint64(&b.counter, 1)
	return fmt.Sprintf("%s#%d", prefix, n)
}
