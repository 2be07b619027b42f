// Package parser owns tree-sitter parser instances for the languages that have
// a grammar available. Parsers are not safe for concurrent use, so every
// indexing worker gets its own Pool (internal/index wires one pool per worker
// goroutine); the pool lazily compiles a parser/query pair the first time a
// language is requested and reuses it for every subsequent file of that
// language.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// TreeSitterParser is a per-worker pool of tree-sitter parsers, one per
// file extension, built lazily on first use.
type TreeSitterParser struct {
	mu     sync.Mutex
	parsers map[string]*tree_sitter.Parser
	queries map[string]*tree_sitter.Query

	lazyInit    map[string]func()
	initialized map[string]bool
}

// extToInit maps a file extension to the grammar init group that serves it.
var extToInit = map[string]string{
	".js": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".tsx": "typescript",
	".go": "go",
	".py": "python",
	".rs": "rust",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".c": "cpp", ".h": "cpp", ".hpp": "cpp",
	".java": "java",
	".cs":   "csharp",
	".zig":  "zig",
	".php": "php", ".phtml": "php",
}

// NewTreeSitterParser creates an empty pool and registers the lazy
// initializers for every tree-sitter-tier language (see SPEC_FULL §4.B).
func NewTreeSitterParser() *TreeSitterParser {
	p := &TreeSitterParser{
		parsers:     make(map[string]*tree_sitter.Parser),
		queries:     make(map[string]*tree_sitter.Query),
		initialized: make(map[string]bool),
	}

	p.lazyInit = map[string]func(){
		"javascript": p.setupJavaScript,
		"typescript": p.setupTypeScript,
		"go":         p.setupGo,
		"python":     p.setupPython,
		"rust":       p.setupRust,
		"cpp":        p.setupCpp,
		"java":       p.setupJava,
		"csharp":     p.setupCSharp,
		"zig":        p.setupZig,
		"php":        p.setupPHP,
	}

	return p
}

// ParserForExt returns the parser for a file extension, initializing the
// backing grammar on first use. It returns an error if no tree-sitter
// grammar is registered for the extension (the caller should fall back to
// the lexical-scan extractor tier for that language).
func (p *TreeSitterParser) ParserForExt(ext string) (*tree_sitter.Parser, error) {
	group, ok := extToInit[ext]
	if !ok {
		return nil, fmt.Errorf("no tree-sitter grammar registered for extension %q", ext)
	}

	p.mu.Lock()
	if !p.initialized[group] {
		p.lazyInit[group]()
		p.initialized[group] = true
	}
	parser, ok := p.parsers[ext]
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("grammar %q failed to initialize for extension %q", group, ext)
	}
	return parser, nil
}

// QueryForExt returns the cached node-kind query for an extension, if any.
func (p *TreeSitterParser) QueryForExt(ext string) *tree_sitter.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[ext]
}

// Close releases every parser owned by the pool.
func (p *TreeSitterParser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, parser := range p.parsers {
		parser.Close()
	}
	p.parsers = make(map[string]*tree_sitter.Parser)
	p.queries = make(map[string]*tree_sitter.Query)
	p.initialized = make(map[string]bool)
}
