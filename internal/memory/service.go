package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/juliecode/julie/internal/store"
)

// Service is the read/write boundary over the memories table (spec.md §6).
// Unlike internal/query, writes are in scope here — this package's entire
// surface IS the "read/write contract on the core" the purpose statement
// carves memory/checkpoint tooling down to.
type Service struct {
	store *store.Store
	log   *slog.Logger
}

func New(st *store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, log: log.With("component", "memory")}
}

// NewID mints a document id in the original implementation's own
// "<prefix>_<timestamp>_<random>" shape (src/tests/memory_tests.rs uses
// "mem_1234567890_abc" / "dec_1234567890_jkl" — a type-scoped prefix plus
// timestamp plus a disambiguating suffix). No id-generation library appears
// anywhere in the retrieved pack, so the random suffix uses crypto/rand
// directly rather than adopting an unrelated dependency for four bytes of
// entropy.
func NewID(prefix string, timestamp int64) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("memory: generate id: %w", err)
	}
	return fmt.Sprintf("%s_%d_%s", prefix, timestamp, hex.EncodeToString(buf)), nil
}

// Save parses raw (a full JSON memory document) and persists it verbatim,
// upserting by id (spec.md §6: "stored verbatim").
func (svc *Service) Save(ctx context.Context, raw []byte) (*Document, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("memory: parse document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("memory: document missing id")
	}

	row := store.MemoryRow{ID: doc.ID, Timestamp: doc.Timestamp, Type: doc.Type}
	if doc.Git != nil {
		gitJSON, err := json.Marshal(doc.Git)
		if err != nil {
			return nil, err
		}
		row.GitJSON = string(gitJSON)
	}
	row.ExtraJSON = string(doc.Extra)

	if err := svc.store.SaveMemory(ctx, row); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns one memory document by id, or nil if none exists.
func (svc *Service) Get(ctx context.Context, id string) (*Document, error) {
	row, err := svc.store.GetMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return docFromRow(row)
}

// List returns every memory document, newest first, optionally restricted
// to one type.
func (svc *Service) List(ctx context.Context, typeFilter string) ([]*Document, error) {
	rows, err := svc.store.ListMemories(ctx, typeFilter)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(rows))
	for _, row := range rows {
		doc, err := docFromRow(row)
		if err != nil {
			svc.log.Warn("skipping unparseable memory row", "id", row.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes one memory document by id.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.store.DeleteMemory(ctx, id)
}

func docFromRow(row *store.MemoryRow) (*Document, error) {
	doc := &Document{ID: row.ID, Timestamp: row.Timestamp, Type: row.Type}
	if row.GitJSON != "" {
		var git GitContext
		if err := json.Unmarshal([]byte(row.GitJSON), &git); err != nil {
			return nil, fmt.Errorf("memory: decode git block for %s: %w", row.ID, err)
		}
		doc.Git = &git
	}
	if row.ExtraJSON != "" {
		doc.Extra = []byte(row.ExtraJSON)
	}
	return doc, nil
}
