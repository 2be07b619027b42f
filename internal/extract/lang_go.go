package extract

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/juliecode/julie/internal/model"
)

// goBuiltins are never emitted as pending Calls targets (spec.md §4.B.3.d).
var goBuiltins = map[string]bool{
	"len": true, "cap": true, "make": true, "new": true, "append": true,
	"copy": true, "delete": true, "panic": true, "recover": true, "print": true,
	"println": true, "close": true, "complex": true, "real": true, "imag": true,
	"min": true, "max": true, "clear": true,
}

// GoExtractor extracts symbols from Go source (tree-sitter tier; teacher
// grounding: internal/symbollinker/go_extractor.go, generalized to the
// Extractor interface and the plain model types instead of SymbolTable).
type GoExtractor struct{ *BaseExtractor }

// NewGoExtractor constructs the Go extractor.
func NewGoExtractor() *GoExtractor { return &GoExtractor{NewBaseExtractor("go")} }

func (g *GoExtractor) Language() string { return "go" }

func (g *GoExtractor) Extract(filePath string, source []byte, tree *sitter.Tree, workspaceRoot string) (*Results, error) {
	root := tree.RootNode()
	res := &Results{}
	byName := make(map[string][]*model.Symbol)
	typeMap := make(map[string]string)

	var scopeStack []string // stack of enclosing symbol IDs

	var walkSymbols func(n *sitter.Node)
	walkSymbols = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "import_declaration":
			g.extractImports(n, source, filePath, res)
			return
		case "function_declaration":
			sym := g.extractFunc(n, source, filePath, false, typeMap)
			if sym != nil {
				if len(scopeStack) > 0 {
					sym.ParentID = scopeStack[len(scopeStack)-1]
				}
				res.Symbols = append(res.Symbols, sym)
				byName[sym.Name] = append(byName[sym.Name], sym)
				scopeStack = append(scopeStack, sym.ID)
				defer func() { scopeStack = scopeStack[:len(scopeStack)-1] }()
			}
		case "method_declaration":
			sym := g.extractFunc(n, source, filePath, true, typeMap)
			if sym != nil {
				res.Symbols = append(res.Symbols, sym)
				byName[sym.Name] = append(byName[sym.Name], sym)
				scopeStack = append(scopeStack, sym.ID)
				defer func() { scopeStack = scopeStack[:len(scopeStack)-1] }()
			}
		case "type_declaration":
			for _, sym := range g.extractTypeDecl(n, source, filePath) {
				res.Symbols = append(res.Symbols, sym)
				byName[sym.Name] = append(byName[sym.Name], sym)
			}
		case "const_declaration", "var_declaration":
			for _, sym := range g.extractVarConst(n, source, filePath, n.Kind() == "const_declaration") {
				if len(scopeStack) > 0 {
					sym.ParentID = scopeStack[len(scopeStack)-1]
				}
				res.Symbols = append(res.Symbols, sym)
				byName[sym.Name] = append(byName[sym.Name], sym)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walkSymbols(n.Child(i))
		}
	}
	walkSymbols(root)

	// Second pass: call sites and identifiers, now that the file-local
	// symbol table is built.
	var walkCalls func(n *sitter.Node)
	walkCalls = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call_expression" {
			g.extractCall(n, source, filePath, byName, res)
		}
		if n.Kind() == "type_identifier" {
			containing := FindContainingSymbol(n, res.Symbols)
			containingID := ""
			if containing != nil {
				containingID = containing.ID
			}
			name := NodeText(n, source)
			if id := g.CreateIdentifier(n, name, model.IdentifierTypeUsage, filePath, containingID); id != nil {
				res.Identifiers = append(res.Identifiers, id)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walkCalls(n.Child(i))
		}
	}
	walkCalls(root)

	for symID, typ := range typeMap {
		res.Types = append(res.Types, &model.TypeInfo{SymbolID: symID, ResolvedType: typ, Language: "go", IsInferred: false})
	}

	return res, nil
}

func (g *GoExtractor) extractImports(n *sitter.Node, source []byte, filePath string, res *Results) {
	specs := FindChildrenByType(n, "import_spec")
	if list := FindChildByType(n, "import_spec_list"); list != nil {
		specs = append(specs, FindChildrenByType(list, "import_spec")...)
	}
	for _, spec := range specs {
		var alias, path string
		for i := uint(0); i < spec.ChildCount(); i++ {
			child := spec.Child(i)
			switch child.Kind() {
			case "package_identifier", "blank_identifier":
				alias = NodeText(child, source)
			case "interpreted_string_literal", "raw_string_literal":
				raw := NodeText(child, source)
				path = strings.Trim(raw, "\"`")
			case "dot":
				alias = "."
			}
		}
		if path == "" {
			continue
		}
		if alias == "" {
			parts := strings.Split(path, "/")
			alias = parts[len(parts)-1]
		}
		sym := g.CreateSymbol(spec, alias, model.KindImport, filePath)
		sym.Metadata = map[string]any{"import_path": path}
		sym.Visibility = model.VisibilityPublic
		res.Symbols = append(res.Symbols, sym)
	}
}

func (g *GoExtractor) extractFunc(n *sitter.Node, source []byte, filePath string, isMethod bool, typeMap map[string]string) *model.Symbol {
	nameNode := FindChildByType(n, "identifier")
	if nameNode == nil && isMethod {
		nameNode = FindChildByType(n, "field_identifier")
	}
	if nameNode == nil {
		return nil
	}
	name := NodeText(nameNode, source)
	kind := model.KindFunction
	if isMethod {
		kind = model.KindMethod
	}
	sym := g.CreateSymbol(n, name, kind, filePath)
	sym.Visibility = model.VisibilityPrivate
	if goExported(name) {
		sym.Visibility = model.VisibilityPublic
	}
	sym.Signature = strings.Join(strings.Fields(strings.SplitN(NodeText(n, source), "{", 2)[0]), " ")
	sym.DocComment = FindDocComment(n, source, "comment")
	if ret := g.extractReturnType(n, source); ret != "" {
		typeMap[sym.ID] = ret
	}
	return sym
}

func (g *GoExtractor) extractReturnType(n *sitter.Node, source []byte) string {
	params := FindChildrenByType(n, "parameter_list")
	if len(params) < 2 {
		return ""
	}
	return strings.TrimSpace(NodeText(params[len(params)-1], source))
}

func (g *GoExtractor) extractTypeDecl(n *sitter.Node, source []byte, filePath string) []*model.Symbol {
	var out []*model.Symbol
	for _, spec := range FindChildrenByType(n, "type_spec") {
		nameNode := FindChildByType(spec, "type_identifier")
		if nameNode == nil {
			continue
		}
		name := NodeText(nameNode, source)
		kind := model.KindType
		if s := FindChildByType(spec, "struct_type"); s != nil {
			kind = model.KindStruct
		} else if FindChildByType(spec, "interface_type") != nil {
			kind = model.KindInterface
		}
		sym := g.CreateSymbol(spec, name, kind, filePath)
		sym.Visibility = model.VisibilityPrivate
		if goExported(name) {
			sym.Visibility = model.VisibilityPublic
		}
		sym.DocComment = FindDocComment(n, source, "comment")
		out = append(out, sym)

		if kind == model.KindStruct {
			if body := FindChildByType(spec, "struct_type"); body != nil {
				out = append(out, g.extractFields(body, source, filePath, sym.ID)...)
			}
		}
	}
	return out
}

func (g *GoExtractor) extractFields(structType *sitter.Node, source []byte, filePath, parentID string) []*model.Symbol {
	var out []*model.Symbol
	fieldList := FindChildByType(structType, "field_declaration_list")
	if fieldList == nil {
		return nil
	}
	for _, fd := range FindChildrenByType(fieldList, "field_declaration") {
		for _, id := range FindChildrenByType(fd, "field_identifier") {
			name := NodeText(id, source)
			sym := g.CreateSymbol(id, name, model.KindField, filePath)
			sym.ParentID = parentID
			sym.Visibility = model.VisibilityPrivate
			if goExported(name) {
				sym.Visibility = model.VisibilityPublic
			}
			out = append(out, sym)
		}
	}
	return out
}

func (g *GoExtractor) extractVarConst(n *sitter.Node, source []byte, filePath string, isConst bool) []*model.Symbol {
	var out []*model.Symbol
	kind := model.KindVariable
	if isConst {
		kind = model.KindConstant
	}
	for _, spec := range FindChildrenByType(n, "var_spec") {
		out = append(out, g.identifiersFromSpec(spec, source, filePath, kind)...)
	}
	for _, spec := range FindChildrenByType(n, "const_spec") {
		out = append(out, g.identifiersFromSpec(spec, source, filePath, kind)...)
	}
	return out
}

func (g *GoExtractor) identifiersFromSpec(spec *sitter.Node, source []byte, filePath string, kind model.SymbolKind) []*model.Symbol {
	var out []*model.Symbol
	for _, id := range FindChildrenByType(spec, "identifier") {
		name := NodeText(id, source)
		sym := g.CreateSymbol(id, name, kind, filePath)
		sym.Visibility = model.VisibilityPrivate
		if goExported(name) {
			sym.Visibility = model.VisibilityPublic
		}
		out = append(out, sym)
	}
	return out
}

func (g *GoExtractor) extractCall(n *sitter.Node, source []byte, filePath string, byName map[string][]*model.Symbol, res *Results) {
	fn := n.Child(0)
	if fn == nil {
		return
	}
	callee := fn
	if fn.Kind() == "selector_expression" {
		if field := FindChildByType(fn, "field_identifier"); field != nil {
			callee = field
		}
	}
	name := NodeText(callee, source)
	if name == "" {
		return
	}
	containing := FindContainingSymbol(n, res.Symbols)
	containingID := ""
	if containing != nil {
		containingID = containing.ID
	}
	if id := g.CreateIdentifier(callee, name, model.IdentifierCall, filePath, containingID); id != nil {
		res.Identifiers = append(res.Identifiers, id)
	}
	if containingID == "" {
		return
	}
	if candidates, ok := byName[name]; ok && len(candidates) > 0 {
		target := candidates[0]
		res.Relationships = append(res.Relationships, g.CreateRelationship(containingID, target.ID, model.RelCalls, n, filePath, 0.92))
		return
	}
	if goBuiltins[name] {
		return
	}
	res.Pending = append(res.Pending, g.CreatePending(containingID, name, model.RelCalls, n, filePath, 0.75))
}

func goExported(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}
