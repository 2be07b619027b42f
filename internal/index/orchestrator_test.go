package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/config"
	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/store"
)

func newTestOrchestrator(t *testing.T, root string) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	lexIndex := lexical.New(nil)
	factory := extract.NewDefaultFactory()
	cfg := &config.Config{}

	return New(cfg, root, "ws1", factory, st, lexIndex, nil, nil, nil), st
}

func TestFullScan_ExtractsSymbolsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte(
		"package main\n\nfunc Helper() int { return 1 }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte(
		"package main\n\nfunc Run() { Helper() }\n"), 0644))

	orch, st := newTestOrchestrator(t, root)
	stats, err := orch.FullScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesProcessed)

	syms, err := st.SymbolsByName(context.Background(), "Helper")
	require.NoError(t, err)
	require.Len(t, syms, 1)
}

func TestFullScan_ResolvesCrossFileCall(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte(
		"package main\n\nfunc Helper() int { return 1 }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte(
		"package main\n\nfunc Run() { Helper() }\n"), 0644))

	orch, st := newTestOrchestrator(t, root)
	stats, err := orch.FullScan(context.Background())
	require.NoError(t, err)
	assert.Greater(t, stats.Resolve.Resolved, 0)

	helper, err := st.SymbolsByName(context.Background(), "Helper")
	require.NoError(t, err)
	require.Len(t, helper, 1)

	callers, err := st.GetCallers(context.Background(), helper[0].ID)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "Run", callers[0].Name)
}

func TestFullScan_SkipsUnchangedFileOnRescan(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc Helper() int { return 1 }\n"), 0644))

	orch, _ := newTestOrchestrator(t, root)
	_, err := orch.FullScan(context.Background())
	require.NoError(t, err)

	stats, err := orch.FullScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.Equal(t, 0, stats.FilesProcessed)
}

func TestDiscover_RespectsDirectoryBlacklistAndIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "x.go"), []byte("package x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip_me.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".julieignore"), []byte("skip_me.go\n"), 0644))

	disc := newDiscoverer(root, &config.Config{})
	var found []string
	err := disc.Walk(context.Background(), func(d Discovered) error {
		found = append(found, d.Path)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "keep.go")}, found)
}

func TestUpdateFile_ReextractsChangedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc One() {}\n"), 0644))

	orch, st := newTestOrchestrator(t, root)
	_, err := orch.FullScan(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc Two() {}\n"), 0644))
	require.NoError(t, orch.UpdateFile(context.Background(), path))

	one, err := st.SymbolsByName(context.Background(), "One")
	require.NoError(t, err)
	assert.Empty(t, one)

	two, err := st.SymbolsByName(context.Background(), "Two")
	require.NoError(t, err)
	assert.Len(t, two, 1)
}

func TestRemoveFile_DeletesSymbols(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc One() {}\n"), 0644))

	orch, st := newTestOrchestrator(t, root)
	_, err := orch.FullScan(context.Background())
	require.NoError(t, err)

	require.NoError(t, orch.RemoveFile(context.Background(), path))

	syms, err := st.SymbolsByName(context.Background(), "One")
	require.NoError(t, err)
	assert.Empty(t, syms)
}
