package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKNN_RanksByCosineSimilarity(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	s.UpsertEmbedding("same", "a.go", []float32{1, 0, 0})
	s.UpsertEmbedding("orthogonal", "a.go", []float32{0, 1, 0})
	s.UpsertEmbedding("opposite", "a.go", []float32{-1, 0, 0})

	hits := s.KNN([]float32{1, 0, 0}, 3, nil)
	require.Len(t, hits, 3)
	assert.Equal(t, "same", hits[0].SymbolID)
	assert.Equal(t, "opposite", hits[2].SymbolID)
}

func TestDeleteEmbeddingsForFile(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	s.UpsertEmbedding("s1", "a.go", []float32{1, 0})
	s.UpsertEmbedding("s2", "b.go", []float32{0, 1})
	s.DeleteEmbeddingsForFile("a.go")

	hits := s.KNN([]float32{1, 0}, 10, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "s2", hits[0].SymbolID)
}

func TestPersistAndLoadFromDisk_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	s.UpsertEmbedding("s1", "a.go", []float32{1, 2, 3})
	require.NoError(t, s.Persist())

	reopened, err := Open(dir)
	require.NoError(t, err)
	hits := reopened.KNN([]float32{1, 2, 3}, 1, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "s1", hits[0].SymbolID)
}

func TestEnsureFresh_PicksUpNewerPersistedSequence(t *testing.T) {
	dir := t.TempDir()
	writer, err := Open(dir)
	require.NoError(t, err)
	writer.UpsertEmbedding("s1", "a.go", []float32{1, 0})
	require.NoError(t, writer.Persist())

	reader, err := Open(dir)
	require.NoError(t, err)
	require.Len(t, reader.KNN([]float32{1, 0}, 5, nil), 1)

	writer.UpsertEmbedding("s2", "b.go", []float32{0, 1})
	require.NoError(t, writer.Persist())

	require.NoError(t, reader.EnsureFresh())
	assert.Len(t, reader.KNN([]float32{0, 1}, 5, nil), 2)
}
