// Package store persists the symbol model to an embedded relational
// database (spec.md §4.D). Grounded on the example code-intelligence
// repository's internal/codeintel/repository.go (SQLiteRepository: a thin
// database/sql wrapper per domain object, upsert-by-natural-key, row
// scanning helpers) and internal/memory/sqlite.go (schema-on-open,
// CREATE TABLE IF NOT EXISTS). Driver: modernc.org/sqlite (pure Go, no
// cgo — named in DESIGN.md as an out-of-pack dependency since no example
// repo's teacher uses a relational store for this domain).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	lcierrors "github.com/juliecode/julie/internal/errors"
	"github.com/juliecode/julie/internal/model"
)

// Store is the symbol store: a single *sql.DB guarded by a writer mutex
// (spec.md §4.D: "a single writer, many readers; writes are serialized via
// a write queue"). database/sql's own connection pool gives us the "many
// readers" half for free; writeMu gives us the "single writer" half.
type Store struct {
	db       *sql.DB
	writeMu  sync.Mutex
	readOnly bool
	log      *slog.Logger
}

// Open opens (creating if absent) the sqlite database at path and runs the
// schema migration. If migration fails, the store still opens but in
// read-only mode, reporting the failure via ReadOnly (spec.md §4.D).
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, lcierrors.NewStoreError("open", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one connection avoids SQLITE_BUSY under our own write mutex.

	s := &Store{db: db, log: log.With("component", "store")}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		s.log.Warn("enable foreign_keys pragma failed", "error", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		s.readOnly = true
		s.log.Error("schema migration failed, opening read-only", "error", err)
		return s, nil
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO schema_meta(key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, schemaVersion); err != nil {
		s.log.Warn("record schema version failed", "error", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// ReadOnly reports whether schema migration failed at open.
func (s *Store) ReadOnly() bool { return s.readOnly }

func (s *Store) guardWrite(op string) error {
	if s.readOnly {
		return lcierrors.NewStoreError(op, fmt.Errorf("store is read-only: migration failed at open"))
	}
	return nil
}

// UpsertFile inserts or updates a files row.
func (s *Store) UpsertFile(ctx context.Context, f *model.File) error {
	if err := s.guardWrite("upsert_file"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (path, language, hash, mtime_ns, size, workspace_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language = excluded.language, hash = excluded.hash,
			mtime_ns = excluded.mtime_ns, size = excluded.size,
			workspace_id = excluded.workspace_id
	`, f.Path, f.Language, f.Hash, f.MTimeNS, f.Size, f.WorkspaceID)
	if err != nil {
		return lcierrors.NewStoreError("upsert_file", err)
	}
	return nil
}

// GetFileHash returns the stored hash for path, and false if the file has
// never been indexed (spec.md §4.H per-file pipeline: "skip if hash
// matches").
func (s *Store) GetFileHash(ctx context.Context, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM files WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, lcierrors.NewStoreError("get_file_hash", err)
	}
	return hash, true, nil
}

// DeleteFileCascade removes a file and every row keyed by that path,
// atomically (spec.md §4.D).
func (s *Store) DeleteFileCascade(ctx context.Context, path string) error {
	if err := s.guardWrite("delete_file_cascade"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lcierrors.NewStoreError("delete_file_cascade", err)
	}
	defer tx.Rollback()

	stmts := []string{
		"DELETE FROM symbols WHERE file_path = ?",
		"DELETE FROM relationships WHERE file_path = ?",
		"DELETE FROM pending_relationships WHERE file_path = ?",
		"DELETE FROM identifiers WHERE file_path = ?",
		"DELETE FROM files WHERE path = ?",
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, path); err != nil {
			return lcierrors.NewStoreError("delete_file_cascade", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return lcierrors.NewStoreError("delete_file_cascade", err)
	}
	return nil
}

// BulkInsertFileData writes one file's extraction results (symbols,
// relationships, pending relationships, identifiers, type info) in a
// single transaction, after first clearing any prior rows for that path
// (spec.md §4.H step 5: "delete existing rows for file_path, upsert file,
// bulk-insert ... in one transaction").
func (s *Store) BulkInsertFileData(ctx context.Context, f *model.File,
	symbols []*model.Symbol, rels []*model.Relationship, pending []*model.PendingRelationship,
	idents []*model.Identifier, types []*model.TypeInfo) error {
	if err := s.guardWrite("bulk_insert"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lcierrors.NewStoreError("bulk_insert", err)
	}
	defer tx.Rollback()

	clear := []string{
		"DELETE FROM symbols WHERE file_path = ?",
		"DELETE FROM relationships WHERE file_path = ?",
		"DELETE FROM pending_relationships WHERE file_path = ?",
		"DELETE FROM identifiers WHERE file_path = ?",
	}
	for _, q := range clear {
		if _, err := tx.ExecContext(ctx, q, f.Path); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, language, hash, mtime_ns, size, workspace_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language = excluded.language, hash = excluded.hash,
			mtime_ns = excluded.mtime_ns, size = excluded.size,
			workspace_id = excluded.workspace_id
	`, f.Path, f.Language, f.Hash, f.MTimeNS, f.Size, f.WorkspaceID); err != nil {
		return lcierrors.NewStoreError("bulk_insert", err)
	}

	for _, sym := range symbols {
		meta, err := marshalMeta(sym.Metadata)
		if err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (id, name, kind, language, file_path, start_line, end_line,
				start_col, end_col, start_byte, end_byte, signature, visibility, parent_id,
				doc_comment, metadata, semantic_group, confidence, code_context, content_type, workspace_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				name=excluded.name, kind=excluded.kind, language=excluded.language,
				file_path=excluded.file_path, start_line=excluded.start_line, end_line=excluded.end_line,
				start_col=excluded.start_col, end_col=excluded.end_col, start_byte=excluded.start_byte,
				end_byte=excluded.end_byte, signature=excluded.signature, visibility=excluded.visibility,
				parent_id=excluded.parent_id, doc_comment=excluded.doc_comment, metadata=excluded.metadata,
				semantic_group=excluded.semantic_group, confidence=excluded.confidence,
				code_context=excluded.code_context, content_type=excluded.content_type,
				workspace_id=excluded.workspace_id
		`, sym.ID, sym.Name, string(sym.Kind), sym.Language, sym.FilePath, sym.StartLine, sym.EndLine,
			sym.StartCol, sym.EndCol, sym.StartByte, sym.EndByte, sym.Signature, string(sym.Visibility),
			sym.ParentID, sym.DocComment, meta, sym.SemanticGroup, sym.Confidence, sym.CodeContext,
			sym.ContentType, sym.WorkspaceID); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	for _, r := range rels {
		meta, err := marshalMeta(r.Metadata)
		if err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO relationships (id, from_symbol_id, to_symbol_id, kind,
				file_path, line_number, confidence, metadata, workspace_id)
			VALUES (?,?,?,?,?,?,?,?,?)
		`, r.ID, r.FromSymbolID, r.ToSymbolID, string(r.Kind), r.FilePath, r.LineNumber,
			r.Confidence, meta, r.WorkspaceID); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	for _, p := range pending {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO pending_relationships (id, from_symbol_id, callee_name, kind,
				file_path, line_number, confidence, workspace_id)
			VALUES (?,?,?,?,?,?,?,?)
		`, p.ID, p.FromSymbolID, p.CalleeName, string(p.Kind), p.FilePath, p.LineNumber,
			p.Confidence, p.WorkspaceID); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	for _, id := range idents {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO identifiers (id, name, kind, file_path, start_line, start_col,
				start_byte, end_byte, containing_symbol_id, confidence, workspace_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)
		`, id.ID, id.Name, string(id.Kind), id.FilePath, id.StartLine, id.StartCol,
			id.StartByte, id.EndByte, id.ContainingSymbolID, id.Confidence, id.WorkspaceID); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	for _, t := range types {
		inferred := 0
		if t.IsInferred {
			inferred = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO type_info (symbol_id, resolved_type, language, is_inferred)
			VALUES (?,?,?,?)
			ON CONFLICT(symbol_id) DO UPDATE SET
				resolved_type=excluded.resolved_type, language=excluded.language, is_inferred=excluded.is_inferred
		`, t.SymbolID, t.ResolvedType, t.Language, inferred); err != nil {
			return lcierrors.NewStoreError("bulk_insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return lcierrors.NewStoreError("bulk_insert", err)
	}
	return nil
}

func marshalMeta(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalMeta(s sql.NullString) map[string]any {
	if !s.Valid || s.String == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil
	}
	return m
}

// GetSymbolByID fetches a single symbol.
func (s *Store) GetSymbolByID(ctx context.Context, id string) (*model.Symbol, error) {
	row := s.db.QueryRowContext(ctx, symbolSelectCols+" FROM symbols WHERE id = ?", id)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, lcierrors.NewStoreError("get_symbol_by_id", err)
	}
	return sym, nil
}

// SymbolsByName implements resolve.CandidateSource, satisfying spec.md
// §4.D's get_symbols_by_name for a single name (the resolver looks up one
// callee name at a time).
func (s *Store) SymbolsByName(ctx context.Context, name string) ([]*model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectCols+" FROM symbols WHERE name = ?", name)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_symbols_by_name", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetSymbolsByNames batches the lookup across multiple names.
func (s *Store) GetSymbolsByNames(ctx context.Context, names []string) ([]*model.Symbol, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(names)
	rows, err := s.db.QueryContext(ctx, symbolSelectCols+" FROM symbols WHERE name IN ("+placeholders+")", args...)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_symbols_by_name", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetSymbolsByFile returns every symbol extracted from one file.
func (s *Store) GetSymbolsByFile(ctx context.Context, filePath string) ([]*model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectCols+" FROM symbols WHERE file_path = ? ORDER BY start_line", filePath)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_symbols_by_file", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetIdentifiersByNames returns every identifier usage matching any of names.
func (s *Store) GetIdentifiersByNames(ctx context.Context, names []string) ([]*model.Identifier, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(names)
	rows, err := s.db.QueryContext(ctx, identifierSelectCols+" FROM identifiers WHERE name IN ("+placeholders+")", args...)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_identifiers_by_names", err)
	}
	defer rows.Close()
	return scanIdentifiers(rows)
}

// GetIdentifiersByNamesAndKind narrows the above to one IdentifierKind.
func (s *Store) GetIdentifiersByNamesAndKind(ctx context.Context, names []string, kind model.IdentifierKind) ([]*model.Identifier, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(names)
	args = append(args, string(kind))
	rows, err := s.db.QueryContext(ctx,
		identifierSelectCols+" FROM identifiers WHERE name IN ("+placeholders+") AND kind = ?", args...)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_identifiers_by_names_and_kind", err)
	}
	defer rows.Close()
	return scanIdentifiers(rows)
}

// GetPendingRelationships returns every unresolved pending relationship for
// a workspace, input to the cross-file resolver.
func (s *Store) GetPendingRelationships(ctx context.Context, workspaceID string) ([]*model.PendingRelationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_symbol_id, callee_name, kind, file_path, line_number, confidence, workspace_id
		FROM pending_relationships WHERE workspace_id = ?
	`, workspaceID)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_pending_relationships", err)
	}
	defer rows.Close()

	var out []*model.PendingRelationship
	for rows.Next() {
		var p model.PendingRelationship
		var kind string
		if err := rows.Scan(&p.ID, &p.FromSymbolID, &p.CalleeName, &kind, &p.FilePath,
			&p.LineNumber, &p.Confidence, &p.WorkspaceID); err != nil {
			return nil, lcierrors.NewStoreError("get_pending_relationships", err)
		}
		p.Kind = model.RelationshipKind(kind)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ReplacePendingWithResolved atomically removes a pending row and inserts
// its resolved replacement (spec.md §4.D, §4.G step 5).
func (s *Store) ReplacePendingWithResolved(ctx context.Context, pendingID string, rel *model.Relationship) error {
	if err := s.guardWrite("replace_pending_with_resolved"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lcierrors.NewStoreError("replace_pending_with_resolved", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pending_relationships WHERE id = ?", pendingID); err != nil {
		return lcierrors.NewStoreError("replace_pending_with_resolved", err)
	}
	meta, err := marshalMeta(rel.Metadata)
	if err != nil {
		return lcierrors.NewStoreError("replace_pending_with_resolved", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO relationships (id, from_symbol_id, to_symbol_id, kind,
			file_path, line_number, confidence, metadata, workspace_id)
		VALUES (?,?,?,?,?,?,?,?,?)
	`, rel.ID, rel.FromSymbolID, rel.ToSymbolID, string(rel.Kind), rel.FilePath,
		rel.LineNumber, rel.Confidence, meta, rel.WorkspaceID); err != nil {
		return lcierrors.NewStoreError("replace_pending_with_resolved", err)
	}
	if err := tx.Commit(); err != nil {
		return lcierrors.NewStoreError("replace_pending_with_resolved", err)
	}
	return nil
}

// Stats computes a WorkspaceStats snapshot for a workspace.
func (s *Store) Stats(ctx context.Context, workspaceID string) (*model.WorkspaceStats, error) {
	var st model.WorkspaceStats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE workspace_id = ?", workspaceID)
	if err := row.Scan(&st.Files); err != nil {
		return nil, lcierrors.NewStoreError("stats", err)
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols WHERE workspace_id = ?", workspaceID)
	if err := row.Scan(&st.Symbols); err != nil {
		return nil, lcierrors.NewStoreError("stats", err)
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identifiers WHERE workspace_id = ?", workspaceID)
	if err := row.Scan(&st.Identifiers); err != nil {
		return nil, lcierrors.NewStoreError("stats", err)
	}
	return &st, nil
}

// GetCallers returns every symbol with a Calls relationship targeting
// symbolID (internal/query's trace_call_path walks this edge-by-edge).
func (s *Store) GetCallers(ctx context.Context, symbolID string) ([]*model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectCols+`
		FROM symbols WHERE id IN (
			SELECT from_symbol_id FROM relationships WHERE to_symbol_id = ? AND kind = ?
		)`, symbolID, string(model.RelCalls))
	if err != nil {
		return nil, lcierrors.NewStoreError("get_callers", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetCallees returns every symbol symbolID has a Calls relationship to.
func (s *Store) GetCallees(ctx context.Context, symbolID string) ([]*model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectCols+`
		FROM symbols WHERE id IN (
			SELECT to_symbol_id FROM relationships WHERE from_symbol_id = ? AND kind = ?
		)`, symbolID, string(model.RelCalls))
	if err != nil {
		return nil, lcierrors.NewStoreError("get_callees", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetRelationshipsTo returns every relationship (any kind) targeting one
// of toSymbolIDs — internal/query's fast_refs union half (spec.md §4.I:
// "relationships with to_symbol_id matching any symbol of that name").
func (s *Store) GetRelationshipsTo(ctx context.Context, toSymbolIDs []string) ([]*model.Relationship, error) {
	if len(toSymbolIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(toSymbolIDs)
	rows, err := s.db.QueryContext(ctx, relationshipSelectCols+
		" FROM relationships WHERE to_symbol_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, lcierrors.NewStoreError("get_relationships_to", err)
	}
	defer rows.Close()
	return scanRelationships(rows)
}

const relationshipSelectCols = `SELECT id, from_symbol_id, to_symbol_id, kind,
	file_path, line_number, confidence, metadata, workspace_id`

func scanRelationships(rows *sql.Rows) ([]*model.Relationship, error) {
	var out []*model.Relationship
	for rows.Next() {
		var r model.Relationship
		var kind string
		var metaRaw sql.NullString
		if err := rows.Scan(&r.ID, &r.FromSymbolID, &r.ToSymbolID, &kind,
			&r.FilePath, &r.LineNumber, &r.Confidence, &metaRaw, &r.WorkspaceID); err != nil {
			return nil, err
		}
		r.Kind = model.RelationshipKind(kind)
		r.Metadata = unmarshalMeta(metaRaw)
		out = append(out, &r)
	}
	return out, rows.Err()
}

const symbolSelectCols = `SELECT id, name, kind, language, file_path, start_line, end_line,
	start_col, end_col, start_byte, end_byte, signature, visibility, parent_id,
	doc_comment, metadata, semantic_group, confidence, code_context, content_type, workspace_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSymbol(row rowScanner) (*model.Symbol, error) {
	var sym model.Symbol
	var kind, visibility string
	var signature, parentID, docComment, semanticGroup, codeContext, contentType sql.NullString
	var metaRaw sql.NullString
	err := row.Scan(&sym.ID, &sym.Name, &kind, &sym.Language, &sym.FilePath, &sym.StartLine, &sym.EndLine,
		&sym.StartCol, &sym.EndCol, &sym.StartByte, &sym.EndByte, &signature, &visibility, &parentID,
		&docComment, &metaRaw, &semanticGroup, &sym.Confidence, &codeContext, &contentType, &sym.WorkspaceID)
	if err != nil {
		return nil, err
	}
	sym.Kind = model.SymbolKind(kind)
	sym.Visibility = model.Visibility(visibility)
	sym.Signature = signature.String
	sym.ParentID = parentID.String
	sym.DocComment = docComment.String
	sym.SemanticGroup = semanticGroup.String
	sym.CodeContext = codeContext.String
	sym.ContentType = contentType.String
	sym.Metadata = unmarshalMeta(metaRaw)
	return &sym, nil
}

func scanSymbols(rows *sql.Rows) ([]*model.Symbol, error) {
	var out []*model.Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

const identifierSelectCols = `SELECT id, name, kind, file_path, start_line, start_col,
	start_byte, end_byte, containing_symbol_id, confidence, workspace_id`

func scanIdentifiers(rows *sql.Rows) ([]*model.Identifier, error) {
	var out []*model.Identifier
	for rows.Next() {
		var id model.Identifier
		var kind string
		var containing sql.NullString
		if err := rows.Scan(&id.ID, &id.Name, &kind, &id.FilePath, &id.StartLine, &id.StartCol,
			&id.StartByte, &id.EndByte, &containing, &id.Confidence, &id.WorkspaceID); err != nil {
			return nil, err
		}
		id.Kind = model.IdentifierKind(kind)
		id.ContainingSymbolID = containing.String
		out = append(out, &id)
	}
	return out, rows.Err()
}

func inClause(items []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(items))
	for i, it := range items {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = it
	}
	return placeholders, args
}

// MemoryRow is one memories table row in its raw, un-decoded form —
// internal/memory owns the JSON document shape and round-trip semantics;
// this package only persists the bytes it is given (spec.md §6: "stored
// verbatim").
type MemoryRow struct {
	ID        string
	Timestamp int64
	Type      string
	GitJSON   string // empty when absent
	ExtraJSON string // empty when absent
}

// SaveMemory upserts one memories row by id.
func (s *Store) SaveMemory(ctx context.Context, row MemoryRow) error {
	if err := s.guardWrite("save_memory"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var git, extra any
	if row.GitJSON != "" {
		git = row.GitJSON
	}
	if row.ExtraJSON != "" {
		extra = row.ExtraJSON
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, timestamp, type, git_json, extra_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp = excluded.timestamp, type = excluded.type,
			git_json = excluded.git_json, extra_json = excluded.extra_json
	`, row.ID, row.Timestamp, row.Type, git, extra)
	if err != nil {
		return lcierrors.NewStoreError("save_memory", err)
	}
	return nil
}

// GetMemory returns the row for id, or nil if no such memory exists.
func (s *Store) GetMemory(ctx context.Context, id string) (*MemoryRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, timestamp, type, git_json, extra_json FROM memories WHERE id = ?", id)
	m, err := scanMemoryRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, lcierrors.NewStoreError("get_memory", err)
	}
	return m, nil
}

// ListMemories returns every memory, newest first, optionally restricted to
// one type (spec.md §6: memory documents are typed — "checkpoint",
// "decision", and so on — freely, by the caller).
func (s *Store) ListMemories(ctx context.Context, typeFilter string) ([]*MemoryRow, error) {
	query := "SELECT id, timestamp, type, git_json, extra_json FROM memories"
	args := []any{}
	if typeFilter != "" {
		query += " WHERE type = ?"
		args = append(args, typeFilter)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, lcierrors.NewStoreError("list_memories", err)
	}
	defer rows.Close()

	var out []*MemoryRow
	for rows.Next() {
		m, err := scanMemoryRow(rows)
		if err != nil {
			return nil, lcierrors.NewStoreError("list_memories", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMemory removes one memory by id. Deleting an id that doesn't exist
// is not an error (spec.md §7: idempotent write contracts).
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	if err := s.guardWrite("delete_memory"); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id); err != nil {
		return lcierrors.NewStoreError("delete_memory", err)
	}
	return nil
}

func scanMemoryRow(row rowScanner) (*MemoryRow, error) {
	var m MemoryRow
	var git, extra sql.NullString
	if err := row.Scan(&m.ID, &m.Timestamp, &m.Type, &git, &extra); err != nil {
		return nil, err
	}
	m.GitJSON = git.String
	m.ExtraJSON = extra.String
	return &m, nil
}
