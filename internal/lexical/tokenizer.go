// Package lexical is the code-aware full-text index over symbol and file
// documents (spec.md §4.E). Grounded on the teacher's internal/search
// engine.go/pure_functions.go for the boost-constant and scoring-function
// idiom (DefaultCodeFileBoost-style weighted scoring, scoreMatch's additive
// boost composition) and on internal/core/trigram.go for the
// shard-then-scan indexing shape (the zero-alloc internals are not reused;
// the sharded-postings-list design is). Unlike the teacher's regex-over-raw-
// content search, this package builds a real token-postings index because
// spec.md §4.E specifies field-boosted disjunctive query construction,
// which a grep pass cannot express.
package lexical

import (
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

// TokenizerConfig is the per-language tokenization rule set spec.md §4.E
// requires ("a shared tokenizer consumes language configuration"), loaded
// from TOML (teacher dependency github.com/pelletier/go-toml/v2).
type TokenizerConfig struct {
	PreservePatterns  []string `toml:"preserve_patterns"`
	NamingStyles      []string `toml:"naming_styles"` // snake_case, kebab-case, camelCase
	StripPrefixes     []string `toml:"strip_prefixes"`
	StripSuffixes     []string `toml:"strip_suffixes"`
	ImportantPatterns []string `toml:"important_patterns"`
}

// defaultTOML is the built-in configuration used when no per-language
// override is supplied; it covers the common operator set spec.md §4.E
// names explicitly (::, ->, =>, <=>, ?., ??).
const defaultTOML = `
preserve_patterns = ["::", "->", "=>", "<=>", "?.", "??", "&&", "||", "==", "!="]
naming_styles = ["snake_case", "kebab-case", "camelCase"]
strip_prefixes = []
strip_suffixes = []
important_patterns = []
`

// LoadTokenizerConfig parses a per-language TOML document. An empty input
// falls back to DefaultTokenizerConfig.
func LoadTokenizerConfig(raw []byte) (*TokenizerConfig, error) {
	if len(raw) == 0 {
		return DefaultTokenizerConfig(), nil
	}
	var cfg TokenizerConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultTokenizerConfig returns the built-in rule set.
func DefaultTokenizerConfig() *TokenizerConfig {
	var cfg TokenizerConfig
	_ = toml.Unmarshal([]byte(defaultTOML), &cfg)
	return &cfg
}

// Tokenizer splits source/identifier text into lowercased tokens per
// spec.md §4.E's four rules: preserve configured multi-char patterns, split
// identifiers by naming convention (emitting both parts and the whole),
// lowercase everything, never stem or drop stop-words.
type Tokenizer struct {
	cfg *TokenizerConfig
}

// NewTokenizer builds a tokenizer over cfg; a nil cfg uses the default.
func NewTokenizer(cfg *TokenizerConfig) *Tokenizer {
	if cfg == nil {
		cfg = DefaultTokenizerConfig()
	}
	return &Tokenizer{cfg: cfg}
}

// Tokenize returns every token text produces, including sub-tokens of
// split identifiers and the original identifier itself (spec.md §4.E rule
// 2: "emit each part *and* the original").
func (t *Tokenizer) Tokenize(text string) []string {
	var out []string
	for _, word := range splitWords(text, t.cfg.PreservePatterns) {
		out = append(out, t.expandWord(word)...)
	}
	return out
}

// splitWords breaks raw text on whitespace and punctuation, but keeps any
// configured preserve_patterns intact as single tokens.
func splitWords(text string, preserve []string) []string {
	var out []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		matched := false
		for _, p := range preserve {
			pr := []rune(p)
			if len(pr) == 0 || i+len(pr) > len(runes) {
				continue
			}
			if string(runes[i:i+len(pr)]) == p {
				flush()
				out = append(out, p)
				i += len(pr) - 1
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		r := runes[i]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			buf.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// expandWord emits the lowercased original plus every naming-convention
// sub-token (spec.md §4.E rule 2).
func (t *Tokenizer) expandWord(word string) []string {
	word = trimAffixes(word, t.cfg.StripPrefixes, t.cfg.StripSuffixes)
	if word == "" {
		return nil
	}
	lower := strings.ToLower(word)
	seen := map[string]bool{lower: true}
	out := []string{lower}

	if strings.Contains(word, "_") {
		for _, part := range strings.Split(word, "_") {
			p := strings.ToLower(part)
			if p != "" && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if strings.Contains(word, "-") {
		for _, part := range strings.Split(word, "-") {
			p := strings.ToLower(part)
			if p != "" && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for _, p := range splitCamel(word) {
		p = strings.ToLower(p)
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// splitCamel splits on lowercase-to-uppercase boundaries (camelCase /
// PascalCase), per spec.md §4.E rule 2.
func splitCamel(word string) []string {
	var out []string
	var buf strings.Builder
	runes := []rune(word)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			if buf.Len() > 0 {
				out = append(out, buf.String())
				buf.Reset()
			}
		}
		buf.WriteRune(r)
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	if len(out) <= 1 {
		return nil
	}
	return out
}

func trimAffixes(word string, prefixes, suffixes []string) string {
	for _, p := range prefixes {
		word = strings.TrimPrefix(word, p)
	}
	for _, s := range suffixes {
		word = strings.TrimSuffix(word, s)
	}
	return word
}
