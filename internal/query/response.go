package query

import (
	"fmt"
	"sort"
	"strings"
)

// Response is the token-budgeted envelope every query operation returns,
// grounded on the original implementation's OptimizedResponse (src/tools/
// shared.rs): a tool tag for routing, the (possibly truncated) results,
// a confidence score, the pre-truncation count, free-form insights, and
// suggested next actions for tool chaining.
type Response[T any] struct {
	Tool        string   `json:"tool"`
	Results     []T      `json:"results"`
	Confidence  float32  `json:"confidence"`
	TotalFound  int      `json:"total_found"`
	Insights    string   `json:"insights,omitempty"`
	NextActions []string `json:"next_actions,omitempty"`
	Truncated   bool     `json:"truncated,omitempty"`
}

// newResponse builds a Response, recording the pre-limit count.
func newResponse[T any](tool string, results []T, confidence float32) Response[T] {
	return Response[T]{Tool: tool, Results: results, Confidence: confidence, TotalFound: len(results)}
}

// limit truncates Results to n (if n > 0 and shorter than the current
// length), setting Truncated. Mirrors optimize_for_tokens' confidence-
// scaled cap, generalized to an explicit caller-supplied limit since
// spec.md's operations each take their own limit/max_results parameter.
func (r *Response[T]) limit(n int) {
	if n <= 0 || len(r.Results) <= n {
		return
	}
	r.Results = r.Results[:n]
	r.Truncated = true
}

// confidenceLimit picks a result cap the way optimize_for_tokens does when
// no explicit limit is given: higher confidence needs fewer results to be
// useful.
func confidenceLimit(confidence float32) int {
	switch {
	case confidence > 0.9:
		return 3
	case confidence > 0.7:
		return 5
	case confidence > 0.5:
		return 8
	default:
		return 12
	}
}

// searchConfidence implements spec.md §4.I step 4's formula: a 0.5 base,
// +0.3 for any exact-name hit, +0.2 when partial-name hits outnumber exact
// ones, +/-0.1 on result cardinality, clamped to [0,1]. Grounded directly
// on the original calculate_search_confidence (src/tools/search/
// scoring.rs).
func searchConfidence(query string, names []string) float32 {
	if len(names) == 0 {
		return 0
	}
	confidence := float32(0.5)

	exact, partial := 0, 0
	lowerQuery := strings.ToLower(query)
	for _, n := range names {
		if strings.EqualFold(n, query) {
			exact++
		}
		if strings.Contains(strings.ToLower(n), lowerQuery) {
			partial++
		}
	}
	if exact > 0 {
		confidence += 0.3
	}
	if partial > exact {
		confidence += 0.2
	}
	if len(names) > 20 {
		confidence -= 0.1
	} else if len(names) < 5 {
		confidence += 0.1
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// searchInsights builds the dominant-kind/dominant-language/low-confidence
// hint string spec.md §4.I step 4 names, grounded on
// generate_search_insights (src/tools/search/scoring.rs), joined the same
// comma-separated way.
func searchInsights(confidence float32, languages, kinds []string) string {
	var parts []string
	if confidence < 0.5 {
		parts = append(parts, "Getting low-quality results? Consider adding unwanted directories to .julieignore in your project root")
	}
	if langs := distinctCounts(languages); len(langs) > 1 {
		main, _ := mode(langs)
		parts = append(parts, fmt.Sprintf("Found across %d languages (mainly %s)", len(langs), main))
	}
	if ks := distinctCounts(kinds); len(ks) > 0 {
		main, count := mode(ks)
		if total := len(kinds); count*2 > total {
			parts = append(parts, fmt.Sprintf("Mostly %ss (%d of %d)", main, count, total))
		}
	}
	return strings.Join(parts, ", ")
}

// nextActions mirrors suggest_next_actions (src/tools/search/scoring.rs):
// cheap heuristics that point the caller at the next likely tool call.
func nextActions(query string, names []string) []string {
	var actions []string
	switch {
	case len(names) == 1:
		actions = append(actions, "Use get_symbols to see this symbol's surrounding structure", "Use fast_refs to see all usages")
	case len(names) > 1:
		actions = append(actions, "Narrow search with a language or kind filter", "Use fast_refs on a specific result")
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), "main") {
			actions = append(actions, "Use trace_call_path to understand entry-point flow")
			break
		}
	}
	lowerQuery := strings.ToLower(query)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lowerQuery) && !strings.EqualFold(n, query) {
			actions = append(actions, "Consider an exact name match for precision")
			break
		}
	}
	return actions
}

// distinctCounts tallies occurrences of each non-empty item. The map keeps
// no order; mode() makes its tie-break deterministic by sorting keys.
func distinctCounts(items []string) map[string]int {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		counts[it]++
	}
	return counts
}

// mode returns the most frequent key, breaking ties lexicographically for
// determinism (the original's HashMap iteration order is not reproducible;
// this is a deliberate, spec-silent improvement).
func mode(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestCount := "", -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, bestCount
}
