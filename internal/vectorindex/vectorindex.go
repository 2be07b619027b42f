// Package vectorindex is the embedding store + ANN search treated as a
// black-box `insert/search` interface by the rest of the system (spec.md
// §4.F). No pack example or the teacher's own dependency set carries an
// ANN/vector-similarity library (grep across every _examples/*/go.mod
// found none), so KNN here is a brute-force cosine scan over an in-memory
// `[]float32` slab — the one place in this module where the standard
// library is used by necessity rather than preference; see DESIGN.md.
package vectorindex

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lcierrors "github.com/juliecode/julie/internal/errors"
)

// entry is one stored embedding plus the file path it belongs to, so
// DeleteEmbeddingsForFile can find every vector a rescanned file owns.
type entry struct {
	Vec  []float32
	File string
}

// persisted is the gob-encoded on-disk payload.
type persisted struct {
	Entries map[string]entry
}

// sidecarMeta is the small JSON header spec.md's §9 [ADD] resolution
// requires: a monotonic sequence number, the only value EnsureFresh
// compares, making sub-second reindex cycles unambiguous (SPEC_FULL §4.F).
type sidecarMeta struct {
	Sequence     uint64 `json:"sequence"`
	PersistedAtNS int64  `json:"persisted_at_ns"`
}

// Store is the in-process embedding store. The zero value is not usable;
// build one with Open.
type Store struct {
	dataPath string
	metaPath string

	mu         sync.RWMutex
	entries    map[string]entry
	loadedSeq  uint64
	loadedAtNS int64

	reloadMu sync.Mutex // serializes concurrent EnsureFresh callers
}

// Open builds a Store rooted at dir (two files are written under it:
// embeddings.bin and embeddings.meta.json). If a prior persisted store
// exists, it is loaded immediately.
func Open(dir string) (*Store, error) {
	s := &Store{
		dataPath: filepath.Join(dir, "embeddings.bin"),
		metaPath: filepath.Join(dir, "embeddings.meta.json"),
		entries:  make(map[string]entry),
	}
	if _, err := os.Stat(s.dataPath); err == nil {
		if err := s.LoadFromDisk(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UpsertEmbedding stores or replaces the embedding for symbolID, recording
// the owning file so a later DeleteEmbeddingsForFile can find it.
func (s *Store) UpsertEmbedding(symbolID, filePath string, vec []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbolID] = entry{Vec: vec, File: filePath}
}

// DeleteEmbeddingsForFile drops every embedding belonging to path (spec.md
// §4.F: "delete_embeddings_for_file(path)").
func (s *Store) DeleteEmbeddingsForFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.File == path {
			delete(s.entries, id)
		}
	}
}

// ScoredSymbol is one KNN hit.
type ScoredSymbol struct {
	SymbolID string
	Score    float32
}

// KNN returns the k nearest symbols to query by cosine similarity,
// restricted to ids for which filter(id) is true (or every id if filter is
// nil). Brute force: O(n) over the current in-memory slab.
func (s *Store) KNN(query []float32, k int, filter func(symbolID string) bool) []ScoredSymbol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]ScoredSymbol, 0, len(s.entries))
	for id, e := range s.entries {
		if filter != nil && !filter(id) {
			continue
		}
		hits = append(hits, ScoredSymbol{SymbolID: id, Score: cosineSimilarity(query, e.Vec)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Persist writes the current in-memory slab to disk atomically (write to a
// temp file, then rename), bumping the sequence number spec.md §9's
// freshness resolution relies on. Called by the orchestrator after every
// embedding batch (spec.md §4.F).
func (s *Store) Persist() error {
	s.mu.RLock()
	snapshot := make(map[string]entry, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(persisted{Entries: snapshot}); err != nil {
		return lcierrors.NewStoreError("vectorindex_persist", err)
	}
	if err := writeFileAtomic(s.dataPath, buf.Bytes()); err != nil {
		return lcierrors.NewStoreError("vectorindex_persist", err)
	}

	meta, err := s.readMeta()
	seq := uint64(0)
	if err == nil {
		seq = meta.Sequence
	}
	seq++
	metaBytes, err := json.Marshal(sidecarMeta{Sequence: seq, PersistedAtNS: time.Now().UnixNano()})
	if err != nil {
		return lcierrors.NewStoreError("vectorindex_persist", err)
	}
	if err := writeFileAtomic(s.metaPath, metaBytes); err != nil {
		return lcierrors.NewStoreError("vectorindex_persist", err)
	}

	s.mu.Lock()
	s.loadedSeq = seq
	s.mu.Unlock()
	return nil
}

// LoadFromDisk replaces the in-memory slab with the persisted one. Callers
// needing a non-blocking swap should use EnsureFresh instead, which builds
// the replacement off to the side before taking the write lock.
func (s *Store) LoadFromDisk() error {
	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		return lcierrors.NewStoreError("vectorindex_load", err)
	}
	var p persisted
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return lcierrors.NewStoreError("vectorindex_load", err)
	}
	meta, _ := s.readMeta()

	s.mu.Lock()
	s.entries = p.Entries
	s.loadedSeq = meta.Sequence
	s.loadedAtNS = meta.PersistedAtNS
	s.mu.Unlock()
	return nil
}

// LoadTimestampNS returns the persisted store's mtime in nanoseconds
// (spec.md §4.F: "load_timestamp_ns() -> u64 — the mtime of the persisted
// vector store").
func (s *Store) LoadTimestampNS() (uint64, error) {
	info, err := os.Stat(s.dataPath)
	if err != nil {
		return 0, lcierrors.NewStoreError("vectorindex_stat", err)
	}
	return uint64(info.ModTime().UnixNano()), nil
}

func (s *Store) readMeta() (sidecarMeta, error) {
	var m sidecarMeta
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	return m, nil
}

// EnsureFresh implements the live-reload protocol from spec.md §4.F: before
// each query, compare the in-memory sequence against the on-disk sidecar's
// sequence (there is no mtime fallback; with no readable sidecar nothing is
// reloaded); if the disk copy is newer, load a replacement off to the side
// and swap it in under the write lock so concurrent readers only ever see
// a fully-loaded old or new store, never a half-loaded one.
func (s *Store) EnsureFresh() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	meta, err := s.readMeta()
	if err != nil {
		return nil // nothing persisted yet; in-memory state stands.
	}

	s.mu.RLock()
	stale := meta.Sequence > s.loadedSeq
	s.mu.RUnlock()
	if !stale {
		return nil
	}

	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		return lcierrors.NewStoreError("vectorindex_reload", err)
	}
	var p persisted
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return lcierrors.NewStoreError("vectorindex_reload", err)
	}

	s.mu.Lock()
	s.entries = p.Entries
	s.loadedSeq = meta.Sequence
	s.loadedAtNS = meta.PersistedAtNS
	s.mu.Unlock()
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
