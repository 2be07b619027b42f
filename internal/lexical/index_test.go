package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/model"
)

func TestSearchSymbols_NameBoostOutranksBodyMatch(t *testing.T) {
	idx := New(nil)
	idx.AddSymbolDocument(&model.Symbol{ID: "s1", Name: "ParseConfig", Language: "go", FilePath: "a.go", Kind: model.KindFunction},
		"this function does not mention the word at all")
	idx.AddSymbolDocument(&model.Symbol{ID: "s2", Name: "Other", Language: "go", FilePath: "b.go", Kind: model.KindFunction},
		"parseconfig appears only in the body here")

	hits := idx.SearchSymbols("parseconfig", SymbolFilter{})
	require.Len(t, hits, 2)
	assert.Equal(t, "s1", hits[0].ID)
}

func TestSearchSymbols_LanguageFilter(t *testing.T) {
	idx := New(nil)
	idx.AddSymbolDocument(&model.Symbol{ID: "s1", Name: "Run", Language: "go", FilePath: "a.go", Kind: model.KindFunction}, "")
	idx.AddSymbolDocument(&model.Symbol{ID: "s2", Name: "Run", Language: "python", FilePath: "a.py", Kind: model.KindFunction}, "")

	hits := idx.SearchSymbols("run", SymbolFilter{Language: "python"})
	require.Len(t, hits, 1)
	assert.Equal(t, "s2", hits[0].ID)
}

func TestSearchFiles_CompoundIdentifierBoost(t *testing.T) {
	idx := New(nil)
	idx.AddFileDocument(&model.File{Path: "a.go", Language: "go"}, "func max_retry_count() int {}")
	idx.AddFileDocument(&model.File{Path: "b.go", Language: "go"}, "unrelated content entirely")

	hits := idx.SearchFiles("max_retry_count", "")
	require.Len(t, hits, 1)
	assert.Equal(t, "a.go", hits[0].ID)
}

func TestDeleteDocumentsForFile(t *testing.T) {
	idx := New(nil)
	idx.AddSymbolDocument(&model.Symbol{ID: "s1", Name: "Foo", Language: "go", FilePath: "a.go", Kind: model.KindFunction}, "")
	idx.DeleteDocumentsForFile("a.go")

	hits := idx.SearchSymbols("foo", SymbolFilter{})
	assert.Empty(t, hits)
}

func TestSearchSymbols_MultiWordMatchesSplitIdentifier(t *testing.T) {
	idx := New(nil)
	idx.AddSymbolDocument(&model.Symbol{ID: "s1", Name: "parseConfig", Language: "go", FilePath: "a.go", Kind: model.KindFunction}, "")

	hits := idx.SearchSymbols("parse config", SymbolFilter{})
	require.Len(t, hits, 1)
	assert.Equal(t, "s1", hits[0].ID)
}

func TestExpandQuery_SingleWordFuzzyFallback(t *testing.T) {
	idx := New(nil)
	idx.AddSymbolDocument(&model.Symbol{ID: "s1", Name: "connect", Language: "go", FilePath: "a.go", Kind: model.KindFunction}, "")

	hits := idx.SearchSymbols("connnect", SymbolFilter{})
	require.Len(t, hits, 1)
	assert.Equal(t, "s1", hits[0].ID)
}
