package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_SnakeCaseEmitsPartsAndWhole(t *testing.T) {
	tok := NewTokenizer(nil)
	tokens := tok.Tokenize("parse_file_path")
	assert.Contains(t, tokens, "parse_file_path")
	assert.Contains(t, tokens, "parse")
	assert.Contains(t, tokens, "file")
	assert.Contains(t, tokens, "path")
}

func TestTokenize_CamelCaseEmitsPartsAndWhole(t *testing.T) {
	tok := NewTokenizer(nil)
	tokens := tok.Tokenize("ParseFilePath")
	assert.Contains(t, tokens, "parsefilepath")
	assert.Contains(t, tokens, "parse")
	assert.Contains(t, tokens, "file")
	assert.Contains(t, tokens, "path")
}

func TestTokenize_PreservesConfiguredOperators(t *testing.T) {
	tok := NewTokenizer(nil)
	tokens := tok.Tokenize("std::vector")
	assert.Contains(t, tokens, "::")
	assert.Contains(t, tokens, "std")
	assert.Contains(t, tokens, "vector")
}

func TestTokenize_NoStemmingNoStopWordRemoval(t *testing.T) {
	tok := NewTokenizer(nil)
	tokens := tok.Tokenize("the running runner runs")
	assert.Contains(t, tokens, "the")
	assert.Contains(t, tokens, "running")
	assert.Contains(t, tokens, "runner")
	assert.Contains(t, tokens, "runs")
}
