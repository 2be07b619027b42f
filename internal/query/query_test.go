package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/config"
	"github.com/juliecode/julie/internal/extract"
	"github.com/juliecode/julie/internal/index"
	"github.com/juliecode/julie/internal/lexical"
	"github.com/juliecode/julie/internal/store"
)

// newTestService indexes a small real project through the same full-scan
// orchestrator internal/index tests use, then wraps the resulting store and
// lexical index in a query Service — so every operation below runs against
// real symbols/relationships rather than hand-built fixtures.
func newTestService(t *testing.T, files map[string]string) (*Service, *store.Store) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	lexIndex := lexical.New(nil)
	orch := index.New(&config.Config{}, root, "ws1", extract.NewDefaultFactory(), st, lexIndex, nil, nil, nil)
	_, err = orch.FullScan(context.Background())
	require.NoError(t, err)

	return New(st, lexIndex, nil, nil, nil), st
}

const callGraphFixture = `package main

func Helper() int { return 1 }

func Run() int { return Helper() }

func main() { Run() }
`

func TestFastGoto_ExactNameRanksDefinitionFirst(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.FastGoto(context.Background(), "Helper", GotoFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Helper", resp.Results[0].Symbol.Name)
	assert.False(t, resp.Results[0].Ambiguous)
	assert.Equal(t, float32(1), resp.Confidence)
}

func TestFastGoto_UnknownNameReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.FastGoto(context.Background(), "DoesNotExist", GotoFilter{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, float32(0), resp.Confidence)
}

func TestFastSearch_FindsExactSymbolWithHighConfidence(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.FastSearch(context.Background(), SearchParams{Query: "Helper"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	var found bool
	for _, hit := range resp.Results {
		if hit.Symbol.Name == "Helper" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Greater(t, resp.Confidence, float32(0.5))
}

func TestFastSearch_SemanticModeWithoutVectorStoreFallsBackToLexical(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.FastSearch(context.Background(), SearchParams{Query: "Run", Mode: SearchSemantic})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
}

func TestFastRefs_FindsCallerIdentifierAndRelationship(t *testing.T) {
	svc, st := newTestService(t, map[string]string{"a.go": callGraphFixture})

	helpers, err := st.SymbolsByName(context.Background(), "Helper")
	require.NoError(t, err)
	require.Len(t, helpers, 1)

	resp, err := svc.FastRefs(context.Background(), RefsParams{Name: "Helper"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for _, hit := range resp.Results {
		assert.Contains(t, hit.FilePath, "a.go")
	}
}

func TestFastRefs_CrossLanguageMatchesNamingVariant(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"a.go": "package main\n\nfunc FetchUserData() int { return 1 }\n",
		"b.go": "package main\n\nfunc useFetchUserData() int { return FetchUserData() }\n",
	})

	resp, err := svc.FastRefs(context.Background(), RefsParams{Name: "fetch_user_data", CrossLanguage: true})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
	for _, hit := range resp.Results {
		if hit.Variant != "" {
			assert.Greater(t, hit.Similarity, float32(0))
		}
	}
}

func TestFastRefs_NoHitsAddsInsight(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.FastRefs(context.Background(), RefsParams{Name: "NeverCalled"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotEmpty(t, resp.Insights)
}

func TestTraceCallPath_UpstreamFindsCallerChain(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	result, err := svc.TraceCallPath(context.Background(), TraceParams{Symbol: "Helper", Direction: Upstream, MaxDepth: 3})
	require.NoError(t, err)
	assert.Greater(t, result.PathsFound, 0)
	assert.Contains(t, result.Tree, "Helper")
	assert.Contains(t, result.Tree, "Run")
	assert.Contains(t, result.Tree, "└─")
}

func TestTraceCallPath_DownstreamFromMain(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	result, err := svc.TraceCallPath(context.Background(), TraceParams{Symbol: "main", Direction: Downstream, MaxDepth: 3})
	require.NoError(t, err)
	assert.Greater(t, result.PathsFound, 0)
	assert.Contains(t, result.Tree, "Run")
}

func TestTraceCallPath_NoMatchesReportsEmptyTree(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	result, err := svc.TraceCallPath(context.Background(), TraceParams{Symbol: "Nonexistent", Direction: Upstream})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PathsFound)
	assert.Contains(t, result.Tree, "No call paths found")
}

func TestTraceCallPath_CycleDoesNotInfiniteLoop(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"a.go": "package main\n\nfunc A() { B() }\nfunc B() { A() }\n",
	})

	result, err := svc.TraceCallPath(context.Background(), TraceParams{Symbol: "A", Direction: Upstream, MaxDepth: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Tree)
}

func TestGetSymbols_OrdersByStartByteAndMarksDepth(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})

	resp, err := svc.GetSymbols(context.Background(), SymbolsParams{FilePath: filepath.Join(resolveRoot(t, svc), "a.go")})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for i := 1; i < len(resp.Results); i++ {
		assert.LessOrEqual(t, resp.Results[i-1].Symbol.StartByte, resp.Results[i].Symbol.StartByte)
	}
}

func TestGetSymbols_FullModePopulatesCodeContext(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})
	path := filepath.Join(resolveRoot(t, svc), "a.go")

	resp, err := svc.GetSymbols(context.Background(), SymbolsParams{FilePath: path, Mode: ModeFull})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for _, n := range resp.Results {
		assert.NotEmpty(t, n.Symbol.CodeContext)
	}
}

func TestGetSymbols_TargetRestrictsToMatchAndAncestors(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})
	path := filepath.Join(resolveRoot(t, svc), "a.go")

	resp, err := svc.GetSymbols(context.Background(), SymbolsParams{FilePath: path, Target: "Helper"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Helper", resp.Results[0].Symbol.Name)
}

func TestGetSymbols_LimitTruncatesAndSetsFlag(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})
	path := filepath.Join(resolveRoot(t, svc), "a.go")

	resp, err := svc.GetSymbols(context.Background(), SymbolsParams{FilePath: path, MaxDepth: 0, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.True(t, resp.Truncated)
}

func TestRenameSymbol_DryRunLeavesFileUnchanged(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})
	path := filepath.Join(resolveRoot(t, svc), "a.go")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	plan, err := svc.RenameSymbol(context.Background(), RenameParams{OldName: "Helper", NewName: "Compute", DryRun: true})
	require.NoError(t, err)
	assert.False(t, plan.Committed)
	require.Len(t, plan.Files, 1)
	assert.NotEmpty(t, plan.Files[0].Diff)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRenameSymbol_CommitsToDisk(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.go": callGraphFixture})
	path := filepath.Join(resolveRoot(t, svc), "a.go")

	plan, err := svc.RenameSymbol(context.Background(), RenameParams{OldName: "Helper", NewName: "Compute", DryRun: false})
	require.NoError(t, err)
	assert.True(t, plan.Committed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(after), "Compute")
	assert.NotContains(t, string(after), "Helper")
}

// resolveRoot recovers the indexed root directory from a symbol's file path
// since newTestService doesn't otherwise expose it to callers.
func resolveRoot(t *testing.T, svc *Service) string {
	t.Helper()
	syms, err := svc.store.SymbolsByName(context.Background(), "Helper")
	require.NoError(t, err)
	require.NotEmpty(t, syms)
	return filepath.Dir(syms[0].FilePath)
}
