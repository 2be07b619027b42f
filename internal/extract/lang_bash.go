package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// bashKeywords are control-flow constructs that must never be emitted as
// synthetic Method symbols (spec.md §4.B.2, scenario S2).
var bashKeywords = map[string]bool{
	"for": true, "while": true, "if": true, "case": true, "block": true,
	"then": true, "else": true, "elif": true, "fi": true, "do": true, "done": true, "esac": true,
}

// bashBuiltins never produce a pending Calls edge (spec.md §4.B.3.d,
// scenario S2).
var bashBuiltins = map[string]bool{
	"echo": true, "cd": true, "[": true, "[[": true, "test": true, "pwd": true,
	"export": true, "local": true, "read": true, "exit": true, "return": true,
	"set": true, "source": true, "shift": true, "unset": true, "printf": true,
}

var bashFuncDeclRe = regexp.MustCompile(`^\s*(?:function\s+)?([A-Za-z_][\w]*)\s*\(\)\s*\{?`)
var bashCallRe = regexp.MustCompile(`(?:^|[;&|]\s*)([A-Za-z_][\w]*)\b`)

// BashExtractor is the lexical-scan extractor for bash (spec.md §4.B
// scenario S2: functions are emitted, control-flow keywords and builtins
// are not).
type BashExtractor struct{ *BaseExtractor }

func NewBashExtractor() *BashExtractor { return &BashExtractor{NewBaseExtractor("bash")} }

func (b *BashExtractor) Language() string { return "bash" }

func (b *BashExtractor) Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error) {
	res := &Results{}
	lines := strings.Split(string(source), "\n")
	byName := make(map[string][]*model.Symbol)
	var lastSymbol *model.Symbol
	depth := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := bashFuncDeclRe.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			if bashKeywords[name] {
				continue
			}
			sym := b.symbolAt(name, filePath, i)
			res.Symbols = append(res.Symbols, sym)
			byName[name] = append(byName[name], sym)
			lastSymbol = sym
			depth = strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}
		if lastSymbol != nil {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				lastSymbol = nil
			}
		}

		for _, m := range bashCallRe.FindAllStringSubmatch(trimmed, -1) {
			name := m[1]
			if bashKeywords[name] {
				continue
			}
			containingID := ""
			if lastSymbol != nil {
				containingID = lastSymbol.ID
			}
			if id := b.createLexicalIdentifier(name, model.IdentifierCall, filePath, i, containingID); id != nil {
				res.Identifiers = append(res.Identifiers, id)
			}
			if containingID == "" || bashBuiltins[name] {
				continue
			}
			if cands, ok := byName[name]; ok && len(cands) > 0 {
				res.Relationships = append(res.Relationships, &model.Relationship{
					ID: model.RelationshipID(containingID, cands[0].ID, model.RelCalls, i+1), FromSymbolID: containingID,
					ToSymbolID: cands[0].ID, Kind: model.RelCalls, FilePath: filePath, LineNumber: i + 1, Confidence: 0.9,
				})
				continue
			}
			res.Pending = append(res.Pending, &model.PendingRelationship{
				ID: model.PendingID(containingID, name, model.RelCalls, i+1), FromSymbolID: containingID,
				CalleeName: name, Kind: model.RelCalls, FilePath: filePath, LineNumber: i + 1, Confidence: 0.75,
			})
		}
	}
	return res, nil
}

func (b *BashExtractor) symbolAt(name, filePath string, line int) *model.Symbol {
	id := model.SymbolID(name, filePath, line+1, 0, model.KindFunction)
	return &model.Symbol{ID: id, Name: name, Kind: model.KindFunction, Language: "bash", FilePath: filePath,
		StartLine: line + 1, EndLine: line + 1, Visibility: model.VisibilityPublic}
}
