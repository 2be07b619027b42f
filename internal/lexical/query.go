package lexical

import (
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/juliecode/julie/internal/model"
)

// SymbolFilter narrows a symbol-document query (spec.md §4.E: "optional
// MUST filters on language and kind").
type SymbolFilter struct {
	Language string
	Kind     model.SymbolKind
}

// SearchSymbols runs the field-boosted, must-across-terms/should-across-
// fields query spec.md §4.E defines over symbol documents, then the full
// query-expansion cascade if the raw query returns nothing.
func (idx *Index) SearchSymbols(query string, filter SymbolFilter) []ScoredDoc {
	return idx.expand(query, func(terms []string, mode matchMode) []ScoredDoc {
		return idx.matchSymbols(terms, filter, mode)
	})
}

// SearchFiles runs the MUST doc_type=file query, boosting terms containing
// "_" as additional SHOULD clauses (spec.md §4.E file-content query).
func (idx *Index) SearchFiles(query, language string) []ScoredDoc {
	return idx.expand(query, func(terms []string, mode matchMode) []ScoredDoc {
		return idx.matchFiles(terms, language, mode)
	})
}

type matchMode int

const (
	modeAnd matchMode = iota
	modeWildcardAnd
	modeOr
	modeFuzzy
)

func (idx *Index) matchSymbols(terms []string, filter SymbolFilter, mode matchMode) []ScoredDoc {
	candidates := idx.candidateIDs(terms, mode)
	scores := make(map[string]float64)
	for _, id := range candidates {
		d := idx.docByID(id)
		if d == nil || d.kind != DocSymbol {
			continue
		}
		if filter.Language != "" && d.language != filter.Language {
			continue
		}
		if filter.Kind != "" && d.symKind != filter.Kind {
			continue
		}
		if !satisfies(d, terms, mode) {
			continue
		}
		scores[id] = scoreDoc(d, terms)
	}
	return collect(scores, idx)
}

func (idx *Index) matchFiles(terms []string, language string, mode matchMode) []ScoredDoc {
	candidates := idx.candidateIDs(terms, mode)
	scores := make(map[string]float64)
	for _, id := range candidates {
		d := idx.docByID(id)
		if d == nil || d.kind != DocFile {
			continue
		}
		if language != "" && d.language != language {
			continue
		}
		if !satisfies(d, terms, mode) {
			continue
		}
		score := scoreDoc(d, terms)
		for _, t := range terms {
			if tokenPresent(t) {
				if freq, ok := d.fields["content"][t]; ok && freq > 0 {
					score += compoundIdentifierBoost * float64(freq)
				}
			}
		}
		scores[id] = score
	}
	return collect(scores, idx)
}

// candidateIDs gathers every document id touched by any (possibly
// wildcard/fuzzy-expanded) term, across all fields.
func (idx *Index) candidateIDs(terms []string, mode matchMode) []string {
	seen := make(map[string]bool)
	var out []string
	addTerm := func(term string) {
		for _, p := range idx.postingsFor(term) {
			if !seen[p.docID] {
				seen[p.docID] = true
				out = append(out, p.docID)
			}
		}
	}
	for _, t := range terms {
		switch mode {
		case modeWildcardAnd:
			for _, real := range idx.termsWithPrefix(t) {
				addTerm(real)
			}
		case modeFuzzy:
			for _, real := range idx.termsWithinDistance(t, 1) {
				addTerm(real)
			}
		default:
			addTerm(t)
		}
	}
	return out
}

// satisfies enforces the Must-across-terms half of spec.md §4.E: every
// term (after whatever expansion mode is active) must match in at least
// one field of the document, except in OR mode where any one match
// suffices.
func satisfies(d *doc, terms []string, mode matchMode) bool {
	if mode == modeOr {
		for _, t := range terms {
			if matchesAnyField(d, t) {
				return true
			}
		}
		return false
	}
	for _, t := range terms {
		if !matchesAnyField(d, t) {
			return false
		}
	}
	return true
}

func matchesAnyField(d *doc, term string) bool {
	for _, freqs := range d.fields {
		if freqs[term] > 0 {
			return true
		}
	}
	return false
}

// scoreDoc sums, per term, the boosted frequency across every field that
// contains it (Should-across-fields).
func scoreDoc(d *doc, terms []string) float64 {
	var score float64
	for _, t := range terms {
		for field, freqs := range d.fields {
			if freq := freqs[t]; freq > 0 {
				score += fieldBoosts[field] * float64(freq)
			}
		}
	}
	return score
}

func collect(scores map[string]float64, idx *Index) []ScoredDoc {
	hits := make([]ScoredDoc, 0, len(scores))
	for id, score := range scores {
		d := idx.docByID(id)
		if d == nil {
			continue
		}
		hits = append(hits, ScoredDoc{ID: id, Kind: d.kind, FilePath: d.filePath, Score: score})
	}
	sortByScore(hits)
	return hits
}

// termsWithPrefix scans every shard for terms sharing prefix (used by the
// wildcard query-expansion variant).
func (idx *Index) termsWithPrefix(prefix string) []string {
	var out []string
	for _, s := range idx.shards {
		s.mu.RLock()
		for term := range s.postings {
			if strings.HasPrefix(term, prefix) {
				out = append(out, term)
			}
		}
		s.mu.RUnlock()
	}
	return out
}

// termsWithinDistance scans every shard for terms within Levenshtein
// distance maxDist of term (the fuzzy~1 fallback for single-word queries),
// using the teacher's similarity library (github.com/hbollon/go-edlib).
func (idx *Index) termsWithinDistance(term string, maxDist int) []string {
	var out []string
	for _, s := range idx.shards {
		s.mu.RLock()
		for candidate := range s.postings {
			if edlib.LevenshteinDistance(term, candidate) <= maxDist {
				out = append(out, candidate)
			}
		}
		s.mu.RUnlock()
	}
	return out
}

// expand implements spec.md §4.E's query-expansion cascade: try
// increasingly permissive variants in order of specificity, stopping at
// the first non-empty result.
func (idx *Index) expand(query string, run func(terms []string, mode matchMode) []ScoredDoc) []ScoredDoc {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}

	if len(words) == 1 {
		if hits := run([]string{strings.ToLower(words[0])}, modeAnd); len(hits) > 0 {
			return hits
		}
		if hits := run([]string{strings.ToLower(words[0])}, modeWildcardAnd); len(hits) > 0 {
			return hits
		}
		return run([]string{strings.ToLower(words[0])}, modeFuzzy)
	}

	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}

	// spec.md §4.E's seven-step cascade, tried in order of specificity.
	// Steps 1 and 5 both run the lowered word list in AND mode: step 1 is
	// the literal query as given, step 5 is the same terms run through the
	// explicit boolean-AND operator — distinct steps in the spec's query
	// builder even though this engine's AND mode already implements both
	// the same way.
	steps := []struct {
		terms []string
		mode  matchMode
	}{
		{lowered, modeAnd},                                // 1. original
		{[]string{strings.ToLower(pascalConcat(words))}, modeAnd},  // 2. CamelCase concatenation
		{[]string{strings.ToLower(snakeConcat(words))}, modeAnd},   // 3. snake_case concatenation
		{[]string{strings.ToLower(lowerCamelConcat(words))}, modeAnd}, // 4. lowerCamelCase concatenation
		{lowered, modeAnd},                                // 5. boolean AND across terms
		{lowered, modeWildcardAnd},                        // 6. wildcard AND (term* per term)
		{lowered, modeOr},                                 // 7. OR disjunction across terms
	}
	for _, st := range steps {
		if hits := run(st.terms, st.mode); len(hits) > 0 {
			return hits
		}
	}
	return nil
}

func pascalConcat(words []string) string {
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

func lowerCamelConcat(words []string) string {
	p := pascalConcat(words)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

func snakeConcat(words []string) string {
	return strings.Join(words, "_")
}
