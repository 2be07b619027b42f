package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/config"
	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/store"
	"github.com/juliecode/julie/internal/vectorindex"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 0, 0}, nil
}

func TestFullScan_EmbedsSymbolsWhenEmbedderConfigured(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte(
		"package main\n\nfunc Helper() int { return 1 }\n"), 0644))

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	vecIndex, err := vectorindex.Open(t.TempDir())
	require.NoError(t, err)

	orch := New(&config.Config{}, root, "ws1", extract.NewDefaultFactory(), st, lexical.New(nil), vecIndex, fakeEmbedder{}, nil)
	orch.embedIdleTimer = 50 * time.Millisecond

	_, err = orch.FullScan(context.Background())
	require.NoError(t, err)

	hits := vecIndex.KNN([]float32{1, 0, 0}, 10, nil)
	assert.NotEmpty(t, hits)
}
