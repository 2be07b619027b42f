package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// htmlGenericContainers are structural containers suppressed unless they
// carry an id/name attribute (spec.md §4.B.2, scenario S4).
var htmlGenericContainers = map[string]bool{
	"div": true, "span": true, "p": true, "ul": true, "ol": true, "li": true,
	"table": true, "tr": true, "td": true, "dl": true, "dt": true, "dd": true,
}

var htmlTagRe = regexp.MustCompile(`<([a-zA-Z][\w-]*)((?:\s+[^<>]*)?)>`)
var htmlAttrRe = regexp.MustCompile(`\b(id|name)\s*=\s*["']([^"']+)["']`)

// HTMLExtractor is the lexical-scan extractor for html (spec.md §4.B.2,
// scenario S4: generic containers without id/name are dropped; everything
// else in the allow-list is emitted).
type HTMLExtractor struct{ *BaseExtractor }

func NewHTMLExtractor() *HTMLExtractor { return &HTMLExtractor{NewBaseExtractor("html")} }

func (h *HTMLExtractor) Language() string { return "html" }

func (h *HTMLExtractor) Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error) {
	res := &Results{}
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		for _, m := range htmlTagRe.FindAllStringSubmatch(line, -1) {
			tag := strings.ToLower(m[1])
			attrs := m[2]
			idMatch := htmlAttrRe.FindStringSubmatch(attrs)

			if htmlGenericContainers[tag] && idMatch == nil {
				continue
			}

			meta := map[string]any{"tag": tag}
			if idMatch != nil {
				meta[idMatch[1]] = idMatch[2]
			}
			sym := &model.Symbol{
				ID:         model.SymbolID(tag, filePath, i+1, 0, model.KindField),
				Name:       tag,
				Kind:       model.KindField,
				Language:   "html",
				FilePath:   filePath,
				StartLine:  i + 1,
				EndLine:    i + 1,
				Visibility: model.VisibilityPublic,
				Metadata:   meta,
			}
			res.Symbols = append(res.Symbols, sym)
		}
	}
	return res, nil
}
