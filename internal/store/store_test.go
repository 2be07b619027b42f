package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	require.False(t, s.ReadOnly())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBulkInsertAndGetSymbolsByFile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &model.File{Path: "a.go", Language: "go", Hash: "abc", MTimeNS: 1, Size: 10, WorkspaceID: "ws1"}
	sym := &model.Symbol{
		ID: model.SymbolID("Foo", "a.go", 1, 0, model.KindFunction), Name: "Foo",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 1, EndLine: 3,
		Visibility: model.VisibilityPublic, WorkspaceID: "ws1",
	}

	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{sym}, nil, nil, nil, nil))

	got, err := s.GetSymbolsByFile(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Foo", got[0].Name)
}

func TestBulkInsertReplacesPriorFileRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &model.File{Path: "a.go", Language: "go", Hash: "v1"}
	sym1 := &model.Symbol{ID: model.SymbolID("Old", "a.go", 1, 0, model.KindFunction), Name: "Old",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 1, EndLine: 1}
	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{sym1}, nil, nil, nil, nil))

	f.Hash = "v2"
	sym2 := &model.Symbol{ID: model.SymbolID("New", "a.go", 2, 0, model.KindFunction), Name: "New",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 2, EndLine: 2}
	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{sym2}, nil, nil, nil, nil))

	got, err := s.GetSymbolsByFile(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Name)
}

func TestDeleteFileCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &model.File{Path: "a.go", Language: "go", Hash: "v1"}
	sym := &model.Symbol{ID: model.SymbolID("Foo", "a.go", 1, 0, model.KindFunction), Name: "Foo",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 1}
	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{sym}, nil, nil, nil, nil))

	require.NoError(t, s.DeleteFileCascade(ctx, "a.go"))

	got, err := s.GetSymbolsByFile(ctx, "a.go")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSymbolsByNameAndPendingRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &model.File{Path: "a.go", Language: "go", Hash: "v1"}
	target := &model.Symbol{ID: model.SymbolID("Target", "a.go", 5, 0, model.KindFunction), Name: "Target",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 5}
	pending := &model.PendingRelationship{
		ID: model.PendingID("caller1", "Target", model.RelCalls, 2), FromSymbolID: "caller1",
		CalleeName: "Target", Kind: model.RelCalls, FilePath: "a.go", LineNumber: 2, Confidence: 0.75,
		WorkspaceID: "ws1",
	}
	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{target}, nil,
		[]*model.PendingRelationship{pending}, nil, nil))

	candidates, err := s.SymbolsByName(ctx, "Target")
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	pendingRows, err := s.GetPendingRelationships(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, pendingRows, 1)

	rel := &model.Relationship{
		ID: model.RelationshipID("caller1", target.ID, model.RelCalls, 2), FromSymbolID: "caller1",
		ToSymbolID: target.ID, Kind: model.RelCalls, FilePath: "a.go", LineNumber: 2, Confidence: 0.75,
	}
	require.NoError(t, s.ReplacePendingWithResolved(ctx, pending.ID, rel))

	pendingRows, err = s.GetPendingRelationships(ctx, "ws1")
	require.NoError(t, err)
	assert.Empty(t, pendingRows)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &model.File{Path: "a.go", Language: "go", Hash: "v1", WorkspaceID: "ws1"}
	sym := &model.Symbol{ID: model.SymbolID("Foo", "a.go", 1, 0, model.KindFunction), Name: "Foo",
		Kind: model.KindFunction, Language: "go", FilePath: "a.go", StartLine: 1, WorkspaceID: "ws1"}
	require.NoError(t, s.BulkInsertFileData(ctx, f, []*model.Symbol{sym}, nil, nil, nil, nil))
	require.NoError(t, s.UpsertFile(ctx, f))

	st, err := s.Stats(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Files)
	assert.Equal(t, 1, st.Symbols)
}
