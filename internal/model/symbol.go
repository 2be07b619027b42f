// Package model defines the canonical value types shared by every extractor,
// the symbol store, the lexical/vector indexes, the resolver, and the query
// layer: File, Symbol, Relationship, PendingRelationship, Identifier,
// TypeInfo, and WorkspaceStats (SPEC_FULL §3, §4.A).
package model

import "fmt"

// SymbolKind enumerates the kinds of symbols an extractor can emit.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindClass       SymbolKind = "class"
	KindStruct      SymbolKind = "struct"
	KindTrait       SymbolKind = "trait"
	KindInterface   SymbolKind = "interface"
	KindEnum        SymbolKind = "enum"
	KindEnumMember  SymbolKind = "enum_member"
	KindType        SymbolKind = "type"
	KindModule      SymbolKind = "module"
	KindNamespace   SymbolKind = "namespace"
	KindConstant    SymbolKind = "constant"
	KindVariable    SymbolKind = "variable"
	KindProperty    SymbolKind = "property"
	KindField       SymbolKind = "field"
	KindImport      SymbolKind = "import"
	KindExport      SymbolKind = "export"
	KindOperator    SymbolKind = "operator"
	KindDelegate    SymbolKind = "delegate"
	KindEvent       SymbolKind = "event"
	KindUnion       SymbolKind = "union"
)

// ResolvableKinds are the symbol kinds the cross-file resolver is allowed to
// bind a pending relationship to (SPEC_FULL §4.G step 2).
var ResolvableKinds = map[SymbolKind]bool{
	KindFunction:    true,
	KindMethod:      true,
	KindConstructor: true,
	KindClass:       true,
	KindStruct:      true,
	KindTrait:       true,
	KindInterface:   true,
	KindEnum:        true,
	KindType:        true,
	KindModule:      true,
	KindNamespace:   true,
	KindConstant:    true,
	KindDelegate:    true,
	KindEvent:       true,
}

// Visibility is the access level of a symbol.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// File is a row of the `files` table (SPEC_FULL §3).
type File struct {
	Path        string `json:"path"`
	Language    string `json:"language"`
	Hash        string `json:"hash"` // hex-encoded blake3 of the file bytes
	MTimeNS     uint64 `json:"mtime_ns"`
	Size        uint64 `json:"size"`
	WorkspaceID string `json:"workspace_id"`
}

// Symbol is a named, positioned construct extracted from source.
type Symbol struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Kind          SymbolKind        `json:"kind"`
	Language      string            `json:"language"`
	FilePath      string            `json:"file_path"`
	StartLine     int               `json:"start_line"`
	EndLine       int               `json:"end_line"`
	StartCol      int               `json:"start_col"`
	EndCol        int               `json:"end_col"`
	StartByte     int               `json:"start_byte"`
	EndByte       int               `json:"end_byte"`
	Signature     string            `json:"signature,omitempty"`
	Visibility    Visibility        `json:"visibility,omitempty"`
	ParentID      string            `json:"parent_id,omitempty"`
	DocComment    string            `json:"doc_comment,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	SemanticGroup string            `json:"semantic_group,omitempty"`
	Confidence    float32           `json:"confidence,omitempty"`
	CodeContext   string            `json:"code_context,omitempty"`
	ContentType   string            `json:"content_type,omitempty"`
	WorkspaceID   string            `json:"workspace_id,omitempty"`
}

// SymbolID deterministically derives the stable symbol identifier from
// (name, file, start-line, start-col, kind), per SPEC_FULL §3's invariant
// that two symbols sharing file/line/col must differ in kind or name.
func SymbolID(name, filePath string, startLine, startCol int, kind SymbolKind) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", filePath, startLine, startCol, kind, name)
}

// Validate checks the Symbol invariants from SPEC_FULL §3/§8.
func (s *Symbol) Validate() error {
	if s.StartByte > s.EndByte {
		return fmt.Errorf("symbol %s: start_byte %d > end_byte %d", s.ID, s.StartByte, s.EndByte)
	}
	if s.Name == "" {
		return fmt.Errorf("symbol %s: empty name", s.ID)
	}
	return nil
}

// RelationshipKind enumerates the directed edge kinds between symbols.
type RelationshipKind string

const (
	RelCalls        RelationshipKind = "calls"
	RelExtends      RelationshipKind = "extends"
	RelImplements   RelationshipKind = "implements"
	RelUses         RelationshipKind = "uses"
	RelImports      RelationshipKind = "imports"
	RelOverrides    RelationshipKind = "overrides"
	RelInstantiates RelationshipKind = "instantiates"
	RelReferences   RelationshipKind = "references"
)

// Relationship is a resolved directed edge between two symbols.
type Relationship struct {
	ID           string           `json:"id"`
	FromSymbolID string           `json:"from_symbol_id"`
	ToSymbolID   string           `json:"to_symbol_id"`
	Kind         RelationshipKind `json:"kind"`
	FilePath     string           `json:"file_path"`
	LineNumber   int              `json:"line_number"`
	Confidence   float32          `json:"confidence"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	WorkspaceID  string           `json:"workspace_id,omitempty"`
}

// RelationshipID derives the deterministic relationship identifier.
func RelationshipID(fromID, toID string, kind RelationshipKind, line int) string {
	return fmt.Sprintf("%s->%s:%s:%d", fromID, toID, kind, line)
}

// PendingRelationship is an edge whose target could not be resolved during
// per-file extraction (SPEC_FULL §3/§4.G).
type PendingRelationship struct {
	ID           string           `json:"id"`
	FromSymbolID string           `json:"from_symbol_id"`
	CalleeName   string           `json:"callee_name"`
	Kind         RelationshipKind `json:"kind"`
	FilePath     string           `json:"file_path"`
	LineNumber   int              `json:"line_number"`
	Confidence   float32          `json:"confidence"`
	WorkspaceID  string           `json:"workspace_id,omitempty"`
}

// PendingID derives the deterministic pending-relationship identifier.
func PendingID(fromID, calleeName string, kind RelationshipKind, line int) string {
	return fmt.Sprintf("pending:%s->%s:%s:%d", fromID, calleeName, kind, line)
}

// IdentifierKind enumerates the kinds of usage sites recorded for a name.
type IdentifierKind string

const (
	IdentifierCall         IdentifierKind = "call"
	IdentifierMemberAccess IdentifierKind = "member_access"
	IdentifierTypeUsage    IdentifierKind = "type_usage"
	IdentifierVariableRef  IdentifierKind = "variable_ref"
	IdentifierImport       IdentifierKind = "import"
)

// Identifier records a single appearance of a name in source, independent of
// the resolver (it backs find-references regardless of resolution outcome).
type Identifier struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Kind                IdentifierKind `json:"kind"`
	FilePath            string         `json:"file_path"`
	StartLine           int            `json:"start_line"`
	StartCol            int            `json:"start_col"`
	StartByte           int            `json:"start_byte"`
	EndByte             int            `json:"end_byte"`
	ContainingSymbolID  string         `json:"containing_symbol_id,omitempty"`
	Confidence          float32        `json:"confidence"`
	WorkspaceID         string         `json:"workspace_id,omitempty"`
}

// IdentifierID derives a deterministic identifier row key so that
// deduplication (same name + byte range + containing symbol) is a map
// lookup instead of an O(n^2) scan (SPEC_FULL §4.C post-processing).
func IdentifierID(name, filePath string, startByte, endByte int, containing string) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", filePath, startByte, endByte, containing, name)
}

// TypeInfo is the inferred or annotated type of a symbol.
type TypeInfo struct {
	SymbolID     string `json:"symbol_id"`
	ResolvedType string `json:"resolved_type"`
	Language     string `json:"language"`
	IsInferred   bool   `json:"is_inferred"`
}

// WorkspaceStats summarizes the size of an indexed workspace.
type WorkspaceStats struct {
	Files        int   `json:"files"`
	Symbols      int   `json:"symbols"`
	Identifiers  int   `json:"identifiers"`
	Embeddings   int   `json:"embeddings"`
	LastScanUnix int64 `json:"last_scan_unix"`
}
