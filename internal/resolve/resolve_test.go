package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/model"
)

type fakeSource struct {
	byName map[string][]*model.Symbol
	err    error
}

func (f *fakeSource) SymbolsByName(ctx context.Context, name string) ([]*model.Symbol, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

func sym(name, lang, path string, line int, kind model.SymbolKind) *model.Symbol {
	return &model.Symbol{
		ID: model.SymbolID(name, path, line, 0, kind), Name: name, Language: lang,
		FilePath: path, StartLine: line, Kind: kind,
	}
}

func TestResolve_PrefersSameLanguageAndDir(t *testing.T) {
	near := sym("helper", "go", "pkg/a/b.go", 10, model.KindFunction)
	far := sym("helper", "go", "pkg/z/other.go", 5, model.KindFunction)
	wrongLang := sym("helper", "python", "pkg/a/helper.py", 1, model.KindFunction)

	src := &fakeSource{byName: map[string][]*model.Symbol{
		"helper": {far, wrongLang, near},
	}}

	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "helper", Kind: model.RelCalls, FilePath: "pkg/a/main.go", LineNumber: 3, Confidence: 0.75},
	}

	outcomes, stats := r.Resolve(context.Background(), pending)
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Resolved)
	assert.Equal(t, near.ID, outcomes[0].Resolved.ToSymbolID)
	assert.Equal(t, 1, stats.Resolved)
}

func TestResolve_ExcludesNonResolvableKinds(t *testing.T) {
	variable := sym("count", "go", "pkg/a/b.go", 4, model.KindVariable)
	src := &fakeSource{byName: map[string][]*model.Symbol{"count": {variable}}}

	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "count", Kind: model.RelCalls, FilePath: "pkg/a/main.go", LineNumber: 3},
	}
	outcomes, stats := r.Resolve(context.Background(), pending)
	require.Len(t, outcomes, 1)
	assert.Nil(t, outcomes[0].Resolved)
	assert.Equal(t, 1, stats.NoValidCandidates)
}

func TestResolve_NoCandidatesNeverGuesses(t *testing.T) {
	src := &fakeSource{byName: map[string][]*model.Symbol{}}
	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "missing", Kind: model.RelCalls, FilePath: "pkg/a/main.go", LineNumber: 1},
	}
	outcomes, stats := r.Resolve(context.Background(), pending)
	require.Len(t, outcomes, 1)
	assert.Nil(t, outcomes[0].Resolved)
	assert.Equal(t, 1, stats.NoCandidates)
}

func TestResolve_CallsEdgeBoostsCallableKind(t *testing.T) {
	fn := sym("Target", "go", "pkg/a/fn.go", 2, model.KindFunction)
	ty := sym("Target", "go", "pkg/a/ty.go", 9, model.KindType)
	src := &fakeSource{byName: map[string][]*model.Symbol{"Target": {ty, fn}}}

	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "Target", Kind: model.RelCalls, FilePath: "pkg/b/main.go", LineNumber: 1},
	}
	outcomes, _ := r.Resolve(context.Background(), pending)
	require.NotNil(t, outcomes[0].Resolved)
	assert.Equal(t, fn.ID, outcomes[0].Resolved.ToSymbolID)
}

func TestResolve_TiesBrokenDeterministically(t *testing.T) {
	a := sym("dup", "python", "z/a.py", 1, model.KindFunction)
	b := sym("dup", "python", "z/b.py", 1, model.KindFunction)
	src := &fakeSource{byName: map[string][]*model.Symbol{"dup": {b, a}}}

	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "dup", Kind: model.RelCalls, FilePath: "other/main.py", LineNumber: 1},
	}
	outcomes, _ := r.Resolve(context.Background(), pending)
	require.NotNil(t, outcomes[0].Resolved)
	assert.Equal(t, a.ID, outcomes[0].Resolved.ToSymbolID)
}

func TestResolve_LookupErrorCounted(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	r := New(src, nil)
	pending := []*model.PendingRelationship{
		{FromSymbolID: "caller1", CalleeName: "x", Kind: model.RelCalls, FilePath: "a.go", LineNumber: 1},
	}
	_, stats := r.Resolve(context.Background(), pending)
	assert.Equal(t, 1, stats.LookupErrors)
}
