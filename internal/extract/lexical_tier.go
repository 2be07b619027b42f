package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// LexicalRule matches one declaration shape via a line-oriented regex. The
// grammar for these ~20 languages was not retrieved in the example pack, so
// per spec.md's framing of the parser as a black-box `parse(bytes) -> CST`,
// the lexical-scan tier implements that contract with a minimal
// line/regex-oriented CST substitute (SPEC_FULL §4.B) rather than a real
// tree-sitter parse. The value contract — symbols/relationships/
// identifiers/types — is identical to the tree-sitter tier.
type LexicalRule struct {
	Pattern   *regexp.Regexp
	Kind      model.SymbolKind
	NameGroup int
}

// LexicalSpec configures the generic line-scan engine for one language.
type LexicalSpec struct {
	Rules          []LexicalRule
	CommentPrefix  string // e.g. "#", "--", "//"
	CallPattern    *regexp.Regexp
	CallNameGroup  int
	Builtins       map[string]bool
}

// LexicalExtractor is the shared engine for every lexical-scan-tier
// language: it scans source line by line, matching each LexicalRule in
// order and emitting a Symbol for the first match per line.
type LexicalExtractor struct {
	*BaseExtractor
	language string
	spec     LexicalSpec
}

// NewLexicalExtractor builds a lexical-scan extractor for one language.
func NewLexicalExtractor(language string, spec LexicalSpec) *LexicalExtractor {
	return &LexicalExtractor{NewBaseExtractor(language), language, spec}
}

func (l *LexicalExtractor) Language() string { return l.language }

func (l *LexicalExtractor) Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error) {
	res := &Results{}
	lines := strings.Split(string(source), "\n")
	byName := make(map[string][]*model.Symbol)
	var lastSymbol *model.Symbol

	for i, line := range lines {
		for _, rule := range l.spec.Rules {
			m := rule.Pattern.FindStringSubmatch(line)
			if m == nil || rule.NameGroup >= len(m) {
				continue
			}
			name := strings.TrimSpace(m[rule.NameGroup])
			if name == "" {
				continue
			}
			sym := l.symbolAt(name, rule.Kind, filePath, i)
			sym.DocComment = l.precedingComment(lines, i)
			res.Symbols = append(res.Symbols, sym)
			byName[name] = append(byName[name], sym)
			lastSymbol = sym
			break
		}

		if l.spec.CallPattern != nil {
			for _, m := range l.spec.CallPattern.FindAllStringSubmatch(line, -1) {
				if l.spec.CallNameGroup >= len(m) {
					continue
				}
				name := m[l.spec.CallNameGroup]
				containingID := ""
				if lastSymbol != nil {
					containingID = lastSymbol.ID
				}
				if id := l.createLexicalIdentifier(name, model.IdentifierCall, filePath, i, containingID); id != nil {
					res.Identifiers = append(res.Identifiers, id)
				}
				if containingID == "" || l.spec.Builtins[name] {
					continue
				}
				if cands, ok := byName[name]; ok && len(cands) > 0 {
					res.Relationships = append(res.Relationships, l.relationshipAt(containingID, cands[0].ID, filePath, i))
					continue
				}
				res.Pending = append(res.Pending, l.pendingAt(containingID, name, filePath, i))
			}
		}
	}
	return res, nil
}

func (l *LexicalExtractor) precedingComment(lines []string, idx int) string {
	if l.spec.CommentPrefix == "" {
		return ""
	}
	var out []string
	i := idx - 1
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, l.spec.CommentPrefix) {
			break
		}
		out = append([]string{strings.TrimSpace(strings.TrimPrefix(trimmed, l.spec.CommentPrefix))}, out...)
		i--
	}
	return strings.Join(out, "\n")
}

func (l *LexicalExtractor) symbolAt(name string, kind model.SymbolKind, filePath string, line int) *model.Symbol {
	id := model.SymbolID(name, filePath, line+1, 0, kind)
	return &model.Symbol{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Language:  l.language,
		FilePath:  filePath,
		StartLine: line + 1,
		EndLine:   line + 1,
		Visibility: model.VisibilityPublic,
	}
}

func (l *LexicalExtractor) relationshipAt(fromID, toID, filePath string, line int) *model.Relationship {
	return &model.Relationship{
		ID:         model.RelationshipID(fromID, toID, model.RelCalls, line+1),
		FromSymbolID: fromID,
		ToSymbolID: toID,
		Kind:       model.RelCalls,
		FilePath:   filePath,
		LineNumber: line + 1,
		Confidence: 0.85,
	}
}

func (l *LexicalExtractor) pendingAt(fromID, callee, filePath string, line int) *model.PendingRelationship {
	return &model.PendingRelationship{
		ID:           model.PendingID(fromID, callee, model.RelCalls, line+1),
		FromSymbolID: fromID,
		CalleeName:   callee,
		Kind:         model.RelCalls,
		FilePath:     filePath,
		LineNumber:   line + 1,
		Confidence:   0.72,
	}
}

// CreateIdentifier override for the lexical tier: since there is no real
// *sitter.Node, identifiers are keyed by (name, line, containing) instead of
// a byte range — still satisfying spec.md §4.C's dedup contract, just with
// a coarser granularity appropriate to a line-oriented scan.
func (b *BaseExtractor) createLexicalIdentifier(name string, kind model.IdentifierKind, filePath string, line int, containingID string) *model.Identifier {
	id := model.IdentifierID(name, filePath, line, line, containingID)
	if b.identSeen[id] {
		return nil
	}
	b.identSeen[id] = true
	return &model.Identifier{
		ID:                 id,
		Name:               name,
		Kind:               kind,
		FilePath:           filePath,
		StartLine:          line + 1,
		ContainingSymbolID: containingID,
		Confidence:         0.8,
	}
}

// lexicalSpecs is the per-language rule table for every lexical-scan-tier
// language except bash, html, and css (each of which has scenario-specific
// noise-filtering logic in its own file: lang_bash.go, lang_html.go,
// lang_css.go).
var lexicalSpecs = map[string]LexicalSpec{
	"json": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*"([A-Za-z_][\w.\-]*)"\s*:`), Kind: model.KindProperty, NameGroup: 1},
		},
	},
	"yaml": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^([A-Za-z_][\w.\-]*)\s*:`), Kind: model.KindProperty, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"toml": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\[([\w.\-]+)\]`), Kind: model.KindNamespace, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^([A-Za-z_][\w.\-]*)\s*=`), Kind: model.KindProperty, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"xml": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`<([A-Za-z_][\w.\-:]*)[\s/>]`), Kind: model.KindField, NameGroup: 1},
		},
	},
	"markdown": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^#{1,6}\s+(.+)$`), Kind: model.KindModule, NameGroup: 1},
		},
	},
	"sql": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`(?i)^\s*create\s+table\s+(?:if\s+not\s+exists\s+)?([\w."]+)`), Kind: model.KindStruct, NameGroup: 1},
			{Pattern: regexp.MustCompile(`(?i)^\s*create\s+(?:or\s+replace\s+)?(?:function|procedure)\s+([\w."]+)`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`(?i)^\s*create\s+(?:unique\s+)?index\s+(?:if\s+not\s+exists\s+)?([\w."]+)`), Kind: model.KindConstant, NameGroup: 1},
		},
		CommentPrefix: "--",
	},
	"regex": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`\(\?P?<([A-Za-z_]\w*)>`), Kind: model.KindVariable, NameGroup: 1},
			{Pattern: regexp.MustCompile(`\\p\{(\w+)\}`), Kind: model.KindType, NameGroup: 1},
		},
	},
	"lua": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*function\s+([\w:.]+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*local\s+function\s+([\w.]+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
		},
		CommentPrefix: "--",
		CallPattern:   regexp.MustCompile(`([A-Za-z_][\w.:]*)\s*\(`),
		CallNameGroup: 1,
		Builtins:      map[string]bool{"print": true, "pairs": true, "ipairs": true, "require": true, "tostring": true, "tonumber": true},
	},
	"ruby": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*def\s+(self\.)?([\w?!=]+)`), Kind: model.KindMethod, NameGroup: 2},
			{Pattern: regexp.MustCompile(`^\s*class\s+([\w:]+)`), Kind: model.KindClass, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*module\s+([\w:]+)`), Kind: model.KindModule, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"swift": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*func\s+(\w+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*class\s+(\w+)`), Kind: model.KindClass, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*struct\s+(\w+)`), Kind: model.KindStruct, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*protocol\s+(\w+)`), Kind: model.KindInterface, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*enum\s+(\w+)`), Kind: model.KindEnum, NameGroup: 1},
		},
		CommentPrefix: "//",
	},
	"kotlin": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*fun\s+(\w+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*class\s+(\w+)`), Kind: model.KindClass, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*interface\s+(\w+)`), Kind: model.KindInterface, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*object\s+(\w+)`), Kind: model.KindModule, NameGroup: 1},
		},
		CommentPrefix: "//",
	},
	"dart": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*(?:[\w<>?]+\s+)?(\w+)\s*\([^)]*\)\s*\{?\s*$`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*class\s+(\w+)`), Kind: model.KindClass, NameGroup: 1},
		},
		CommentPrefix: "//",
	},
	"gdscript": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*func\s+(\w+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*class_name\s+(\w+)`), Kind: model.KindClass, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*signal\s+(\w+)`), Kind: model.KindEvent, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"powershell": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`(?i)^\s*function\s+([\w\-]+)`), Kind: model.KindFunction, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"r": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*([\w.]+)\s*(?:<-|=)\s*function\s*\(`), Kind: model.KindFunction, NameGroup: 1},
		},
		CommentPrefix: "#",
	},
	"qml": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`^\s*function\s+(\w+)\s*\(`), Kind: model.KindFunction, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*property\s+[\w<>]+\s+(\w+)`), Kind: model.KindProperty, NameGroup: 1},
			{Pattern: regexp.MustCompile(`^\s*signal\s+(\w+)`), Kind: model.KindEvent, NameGroup: 1},
		},
		CommentPrefix: "//",
	},
	// vue and razor are host/template extractors; their embedded
	// <script>/@code sections are handed to typescript/csharp by
	// Factory.extractEmbedded, which yields no symbols for them (see its
	// doc). The host scan here only picks up template-level custom
	// component tags; import statements in these languages are not
	// extracted here.
	"vue": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`<([A-Z][\w-]*|[a-z][\w-]*-[\w-]+)[\s/>]`), Kind: model.KindField, NameGroup: 1},
		},
	},
	"razor": {
		Rules: []LexicalRule{
			{Pattern: regexp.MustCompile(`@page\s+"([^"]+)"`), Kind: model.KindConstant, NameGroup: 1},
			{Pattern: regexp.MustCompile(`<([A-Z]\w*)[\s/>]`), Kind: model.KindField, NameGroup: 1},
		},
	},
}
