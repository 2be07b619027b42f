package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// cssKeyframeSelectorRe matches the percentage/from/to selectors inside an
// @keyframes block; they are structural, not symbols (spec.md §4.B.2,
// scenario S3).
var cssKeyframeSelectorRe = regexp.MustCompile(`^\s*(from|to|\d+(?:\.\d+)?%)\s*\{?\s*$`)

var cssKeyframesRe = regexp.MustCompile(`^\s*@keyframes\s+([\w-]+)`)
var cssRuleSelectorRe = regexp.MustCompile(`^\s*([.#]?[\w][\w.#\-, >:~+\[\]="']*?)\s*\{`)
var cssAtRuleRe = regexp.MustCompile(`^\s*(@[\w-]+)\b\s*([^{;]*)`)

// CSSExtractor is the lexical-scan extractor for css (spec.md §4.B scenario
// S3: @keyframes blocks emit the at-rule and its animation name but never
// the percentage/from/to selectors inside them, and never a Variable symbol
// for the block itself).
type CSSExtractor struct{ *BaseExtractor }

func NewCSSExtractor() *CSSExtractor { return &CSSExtractor{NewBaseExtractor("css")} }

func (c *CSSExtractor) Language() string { return "css" }

func (c *CSSExtractor) Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error) {
	res := &Results{}
	lines := strings.Split(string(source), "\n")
	keyframeDepth := 0
	inKeyframes := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inKeyframes {
			keyframeDepth += strings.Count(line, "{") - strings.Count(line, "}")
			if keyframeDepth <= 0 {
				inKeyframes = false
			}
			// Inside an @keyframes block, selectors (0%, 100%, from, to) are
			// structural and never emitted as symbols.
			if cssKeyframeSelectorRe.MatchString(trimmed) {
				continue
			}
			continue
		}

		if m := cssKeyframesRe.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			atSym := &model.Symbol{
				ID:         model.SymbolID("@keyframes "+name, filePath, i+1, 0, model.KindClass),
				Name:       "@keyframes " + name,
				Kind:       model.KindClass,
				Language:   "css",
				FilePath:   filePath,
				StartLine:  i + 1,
				EndLine:    i + 1,
				Visibility: model.VisibilityPublic,
			}
			nameSym := &model.Symbol{
				ID:         model.SymbolID(name, filePath, i+1, 0, model.KindConstant),
				Name:       name,
				Kind:       model.KindConstant,
				Language:   "css",
				FilePath:   filePath,
				StartLine:  i + 1,
				EndLine:    i + 1,
				Visibility: model.VisibilityPublic,
				ParentID:   atSym.ID,
			}
			res.Symbols = append(res.Symbols, atSym, nameSym)
			keyframeDepth = strings.Count(line, "{") - strings.Count(line, "}")
			// A block opened and closed on this same line leaves nothing to skip.
			inKeyframes = keyframeDepth > 0 || !strings.Contains(line, "{")
			continue
		}

		if m := cssAtRuleRe.FindStringSubmatch(trimmed); m != nil {
			rule := strings.TrimSpace(m[1] + " " + m[2])
			res.Symbols = append(res.Symbols, &model.Symbol{
				ID:         model.SymbolID(rule, filePath, i+1, 0, model.KindModule),
				Name:       rule,
				Kind:       model.KindModule,
				Language:   "css",
				FilePath:   filePath,
				StartLine:  i + 1,
				EndLine:    i + 1,
				Visibility: model.VisibilityPublic,
			})
			continue
		}

		if m := cssRuleSelectorRe.FindStringSubmatch(line); m != nil {
			sel := strings.TrimSpace(m[1])
			if sel == "" {
				continue
			}
			res.Symbols = append(res.Symbols, &model.Symbol{
				ID:         model.SymbolID(sel, filePath, i+1, 0, model.KindClass),
				Name:       sel,
				Kind:       model.KindClass,
				Language:   "css",
				FilePath:   filePath,
				StartLine:  i + 1,
				EndLine:    i + 1,
				Visibility: model.VisibilityPublic,
			})
		}
	}
	return res, nil
}
