package query

import (
	"strings"
	"unicode"

	edlib "github.com/hbollon/go-edlib"
)

// namingVariantThreshold is the minimum Jaro-Winkler similarity spec.md's
// cross-language matching accepts before a pair is considered the "same"
// identifier under a different naming convention. trace_call_path applies
// it; fast_refs reports each variant's similarity without filtering on it.
// Grounded on the teacher's internal/semantic/fuzzy_matcher.go,
// which uses the same library for the same kind of decision, though the
// teacher's own threshold (tuned for typo-tolerant fuzzy search) is looser
// than cross-language identifier matching should be, so this is tightened.
const namingVariantThreshold = 0.92

// words splits an identifier into its constituent parts across
// snake_case, kebab-case, and camelCase/PascalCase boundaries — the same
// three conventions spec.md §4.I names for cross-language variant
// matching, grounded in shape on internal/lexical's Tokenizer.expandWord
// (splitCamel + "_"/"-" splitting) and internal/semantic/name_splitter.go's
// separator-detection idiom, but kept local to this package since fast_refs
// needs variant *generation*, not the tokenizer's indexing-time expansion.
func words(name string) []string {
	var out []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			flush()
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return out
}

// namingVariants generates the snake_case, kebab-case, camelCase, and
// PascalCase renderings of name's word sequence (spec.md §4.I: "Cross-
// language variants of the name (snake/camel/kebab/Pascal)").
func namingVariants(name string) []string {
	ws := words(name)
	if len(ws) == 0 {
		return nil
	}
	lower := make([]string, len(ws))
	for i, w := range ws {
		lower[i] = strings.ToLower(w)
	}

	variants := map[string]bool{
		strings.Join(lower, "_"): true,
		strings.Join(lower, "-"): true,
		camelJoin(lower, false):  true,
		camelJoin(lower, true):   true,
	}
	delete(variants, strings.ToLower(name))

	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	return out
}

func camelJoin(words []string, pascal bool) string {
	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 && !pascal {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(w[1:])
		}
	}
	return b.String()
}

// similarity scores two identifiers with Jaro-Winkler, the teacher's own
// choice for naming-style-tolerant matching (internal/semantic/
// fuzzy_matcher.go). Returns 0 on any library error rather than
// propagating it — callers treat "no match" and "comparison failed" the
// same way.
func similarity(a, b string) float32 {
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return score
}
