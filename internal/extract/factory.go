package extract

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// Factory dispatches to the registered Extractor for a language tag and
// applies the common post-processing spec.md §4.C requires: normalizing
// workspace_id on every row and deduplicating identifiers. Teacher grounding:
// internal/symbollinker.ExtractorRegistry (Register/GetExtractor/
// GetExtractorForFile), generalized from file-extension lookup to the
// spec's canonical-language-tag lookup (extension-to-language mapping lives
// one layer up, in internal/index, per spec.md §6).
type Factory struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	// embedded maps a host language (vue, razor) to the language its
	// embedded <script>/@code section should be extracted as.
	embedded map[string]string
}

// NewFactory builds a factory with no extractors registered; callers
// register every language tag during startup (see NewDefaultFactory).
func NewFactory() *Factory {
	return &Factory{
		extractors: make(map[string]Extractor),
		embedded:   map[string]string{"vue": "typescript", "razor": "csharp"},
	}
}

// Register adds an extractor under its own Language() tag.
func (f *Factory) Register(e Extractor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractors[e.Language()] = e
}

// Get returns the extractor registered for a canonical language tag.
func (f *Factory) Get(language string) (Extractor, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.extractors[language]
	return e, ok
}

// Languages returns every registered language tag, sorted is not
// guaranteed; callers needing determinism should sort themselves.
func (f *Factory) Languages() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.extractors))
	for lang := range f.extractors {
		out = append(out, lang)
	}
	return out
}

// Extract runs the registered extractor for language against a parsed (or,
// for the lexical-scan tier, nil) tree and applies workspace_id
// normalization + identifier dedup (spec.md §4.C).
func (f *Factory) Extract(language, filePath string, source []byte, tree *sitter.Tree, workspaceRoot, workspaceID string) (*Results, error) {
	e, ok := f.Get(language)
	if !ok {
		return nil, fmt.Errorf("no extractor registered for language %q", language)
	}

	if hostLang, isEmbedding := f.embedded[language]; isEmbedding {
		return f.extractEmbedded(language, hostLang, filePath, source, workspaceRoot, workspaceID)
	}

	res, err := e.Extract(filePath, source, tree, workspaceRoot)
	if err != nil {
		return nil, err
	}
	normalizeWorkspace(res, workspaceID)
	return res, nil
}

// extractEmbedded handles Vue/Razor files. The host language's lexical-scan
// extractor runs over the whole file; findEmbeddedSection then carves out
// the script/@code block and the factory hands that slice to the embedded
// language's extractor, merging whatever it returns with line numbers
// offset to be file-relative (byte offsets are not adjusted). The slice is
// passed without a parse tree, since the factory holds no parser; the
// embedded extractors (typescript, csharp) are tree-sitter-tier and return
// an empty result for a nil tree, so the merged output is the host
// extractor's results.
func (f *Factory) extractEmbedded(hostLanguage, embeddedLang, filePath string, source []byte, workspaceRoot, workspaceID string) (*Results, error) {
	hostExtractor, ok := f.Get(hostLanguage)
	if !ok {
		return nil, fmt.Errorf("no host extractor registered for embedding language %q", hostLanguage)
	}
	hostRes, err := hostExtractor.Extract(filePath, source, nil, workspaceRoot)
	if err != nil {
		return nil, err
	}

	section, offset := findEmbeddedSection(source, hostLanguage)
	if section == "" {
		normalizeWorkspace(hostRes, workspaceID)
		return hostRes, nil
	}

	embExtractor, ok := f.Get(embeddedLang)
	if ok {
		embRes, err := embExtractor.Extract(filePath, []byte(section), nil, workspaceRoot)
		if err == nil && embRes != nil {
			offsetResults(embRes, offset)
			hostRes.Symbols = append(hostRes.Symbols, embRes.Symbols...)
			hostRes.Relationships = append(hostRes.Relationships, embRes.Relationships...)
			hostRes.Pending = append(hostRes.Pending, embRes.Pending...)
			hostRes.Identifiers = append(hostRes.Identifiers, embRes.Identifiers...)
			hostRes.Types = append(hostRes.Types, embRes.Types...)
		}
	}
	normalizeWorkspace(hostRes, workspaceID)
	return hostRes, nil
}

// findEmbeddedSection extracts the <script>...</script> (vue) or
// @code{...} (razor) block and the 0-based line offset at which it starts,
// so extracted symbol positions can be translated back to file-relative
// lines.
func findEmbeddedSection(source []byte, hostLanguage string) (section string, lineOffset int) {
	text := string(source)
	var openTag, bodyOpen, closeTag string
	switch hostLanguage {
	case "vue":
		openTag, bodyOpen, closeTag = "<script", ">", "</script>"
	case "razor":
		openTag, bodyOpen, closeTag = "@code", "{", "}"
	default:
		return "", 0
	}
	start := strings.Index(text, openTag)
	if start < 0 {
		return "", 0
	}
	bodyStart := strings.Index(text[start:], bodyOpen)
	if bodyStart < 0 {
		return "", 0
	}
	bodyStart += start + 1
	end := -1
	if hostLanguage == "razor" {
		// The @code block ends at the brace matching its opening one.
		for i, depth := bodyStart, 1; i < len(text) && end < 0; i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				if depth--; depth == 0 {
					end = i
				}
			}
		}
	} else if idx := strings.Index(text[bodyStart:], closeTag); idx >= 0 {
		end = bodyStart + idx
	}
	if end < 0 {
		return "", 0
	}
	lineOffset = strings.Count(text[:bodyStart], "\n")
	return text[bodyStart:end], lineOffset
}

func offsetResults(res *Results, lineOffset int) {
	for _, s := range res.Symbols {
		s.StartLine += lineOffset
		s.EndLine += lineOffset
	}
	for _, r := range res.Relationships {
		r.LineNumber += lineOffset
	}
	for _, p := range res.Pending {
		p.LineNumber += lineOffset
	}
	for _, id := range res.Identifiers {
		id.StartLine += lineOffset
	}
}

func normalizeWorkspace(res *Results, workspaceID string) {
	for _, s := range res.Symbols {
		s.WorkspaceID = workspaceID
	}
	for _, r := range res.Relationships {
		r.WorkspaceID = workspaceID
	}
	for _, p := range res.Pending {
		p.WorkspaceID = workspaceID
	}
	for _, id := range res.Identifiers {
		id.WorkspaceID = workspaceID
	}
	dedupeIdentifiers(res)
}

// dedupeIdentifiers collapses duplicate (name, byte range, containing
// symbol) occurrences, per spec.md §4.C.
func dedupeIdentifiers(res *Results) {
	seen := make(map[string]bool, len(res.Identifiers))
	out := res.Identifiers[:0]
	for _, id := range res.Identifiers {
		key := model.IdentifierID(id.Name, id.FilePath, id.StartByte, id.EndByte, id.ContainingSymbolID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, id)
	}
	res.Identifiers = out
}

// NewDefaultFactory builds the factory with every tree-sitter-tier and
// lexical-scan-tier extractor registered (spec.md §6's 32 canonical tags,
// SPEC_FULL §4.B's tiering).
func NewDefaultFactory() *Factory {
	f := NewFactory()

	// Tree-sitter tier.
	f.Register(NewGoExtractor())
	f.Register(NewGenericTSExtractor(tsSpecs["python"]))
	f.Register(NewGenericTSExtractor(tsSpecs["javascript"]))
	f.Register(NewGenericTSExtractor(tsSpecs["typescript"]))
	f.Register(NewGenericTSExtractor(tsSpecs["java"]))
	f.Register(NewGenericTSExtractor(tsSpecs["c"]))
	f.Register(NewGenericTSExtractor(tsSpecs["cpp"]))
	f.Register(NewGenericTSExtractor(tsSpecs["rust"]))
	f.Register(NewGenericTSExtractor(tsSpecs["csharp"]))
	f.Register(NewGenericTSExtractor(tsSpecs["php"]))
	f.Register(NewGenericTSExtractor(tsSpecs["zig"]))

	// Lexical-scan tier: scenario-specific hand-written extractors.
	f.Register(NewBashExtractor())
	f.Register(NewHTMLExtractor())
	f.Register(NewCSSExtractor())

	// Lexical-scan tier: config-table-driven extractors.
	for lang, spec := range lexicalSpecs {
		f.Register(NewLexicalExtractor(lang, spec))
	}

	return f
}
