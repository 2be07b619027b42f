package store

// schema is run once when a Store is opened (spec.md §4.D: "Schema
// migrations run once at open"). Grounded on the example code-intelligence
// repository's internal/memory/sqlite.go initSchema (CREATE TABLE IF NOT
// EXISTS + CREATE INDEX IF NOT EXISTS, executed as one batch) and
// internal/codeintel/repository.go's symbols/symbol_relations table shapes,
// retargeted at the model.Symbol/Relationship/PendingRelationship/
// Identifier/TypeInfo field set spec.md §4.D names.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS files (
	path TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	hash TEXT NOT NULL,
	mtime_ns INTEGER NOT NULL,
	size INTEGER NOT NULL,
	workspace_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS symbols (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	language TEXT NOT NULL,
	file_path TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	start_col INTEGER NOT NULL,
	end_col INTEGER NOT NULL,
	start_byte INTEGER NOT NULL,
	end_byte INTEGER NOT NULL,
	signature TEXT,
	visibility TEXT,
	parent_id TEXT,
	doc_comment TEXT,
	metadata TEXT,
	semantic_group TEXT,
	confidence REAL,
	code_context TEXT,
	content_type TEXT,
	workspace_id TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (file_path) REFERENCES files(path) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);

CREATE TABLE IF NOT EXISTS relationships (
	id TEXT PRIMARY KEY,
	from_symbol_id TEXT NOT NULL,
	to_symbol_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	file_path TEXT NOT NULL,
	line_number INTEGER NOT NULL,
	confidence REAL NOT NULL,
	metadata TEXT,
	workspace_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(from_symbol_id);
CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships(to_symbol_id);
CREATE INDEX IF NOT EXISTS idx_relationships_file ON relationships(file_path);

CREATE TABLE IF NOT EXISTS pending_relationships (
	id TEXT PRIMARY KEY,
	from_symbol_id TEXT NOT NULL,
	callee_name TEXT NOT NULL,
	kind TEXT NOT NULL,
	file_path TEXT NOT NULL,
	line_number INTEGER NOT NULL,
	confidence REAL NOT NULL,
	workspace_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_pending_callee ON pending_relationships(callee_name);
CREATE INDEX IF NOT EXISTS idx_pending_file ON pending_relationships(file_path);

CREATE TABLE IF NOT EXISTS identifiers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	file_path TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	start_col INTEGER NOT NULL,
	start_byte INTEGER NOT NULL,
	end_byte INTEGER NOT NULL,
	containing_symbol_id TEXT,
	confidence REAL NOT NULL,
	workspace_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_identifiers_name ON identifiers(name);
CREATE INDEX IF NOT EXISTS idx_identifiers_file ON identifiers(file_path);

CREATE TABLE IF NOT EXISTS type_info (
	symbol_id TEXT PRIMARY KEY,
	resolved_type TEXT NOT NULL,
	language TEXT NOT NULL,
	is_inferred INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	type TEXT NOT NULL,
	git_json TEXT,
	extra_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(type);

CREATE TABLE IF NOT EXISTS schema_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const schemaVersion = "1"
