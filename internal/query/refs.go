package query

import (
	"context"
	"sort"
	"strconv"

	"github.com/juliecode/julie/internal/model"
)

// RefHit is one fast_refs result: either a resolved relationship edge or a
// raw identifier usage, both normalized to (file, line, kind) plus an
// optional naming-variant similarity score when the hit came from a
// cross-language match rather than an exact name.
type RefHit struct {
	FilePath   string  `json:"file_path"`
	Line       int     `json:"line"`
	Kind       string  `json:"kind"`
	FromName   string  `json:"from_name,omitempty"`
	Variant    string  `json:"variant,omitempty"`
	Similarity float32 `json:"similarity,omitempty"`
}

// RefsParams bundles fast_refs' inputs (spec.md §4.I: "name,
// reference_kind?").
type RefsParams struct {
	Name           string
	ReferenceKind  model.IdentifierKind // empty = no filter
	CrossLanguage  bool
}

// FastRefs unions relationship edges targeting any symbol named Name with
// identifier usages of Name (optionally kind-filtered), then, when
// CrossLanguage is set, repeats both lookups for every naming-convention
// variant of Name (spec.md §4.I fast_refs).
func (svc *Service) FastRefs(ctx context.Context, p RefsParams) (Response[RefHit], error) {
	names := []string{p.Name}
	if p.CrossLanguage {
		names = append(names, namingVariants(p.Name)...)
	}

	var hits []RefHit
	for i, name := range names {
		variantLabel, sim := "", float32(0)
		if i > 0 {
			variantLabel, sim = name, similarity(p.Name, name)
		}

		targets, err := svc.store.SymbolsByName(ctx, name)
		if err != nil {
			return Response[RefHit]{}, err
		}
		if len(targets) > 0 {
			ids := make([]string, len(targets))
			for j, s := range targets {
				ids[j] = s.ID
			}
			rels, err := svc.store.GetRelationshipsTo(ctx, ids)
			if err != nil {
				return Response[RefHit]{}, err
			}
			for _, r := range rels {
				hits = append(hits, RefHit{
					FilePath: r.FilePath, Line: r.LineNumber, Kind: string(r.Kind),
					Variant: variantLabel, Similarity: sim,
				})
			}
		}

		var idents []*model.Identifier
		var err error
		if p.ReferenceKind != "" {
			idents, err = svc.store.GetIdentifiersByNamesAndKind(ctx, []string{name}, p.ReferenceKind)
		} else {
			idents, err = svc.store.GetIdentifiersByNames(ctx, []string{name})
		}
		if err != nil {
			return Response[RefHit]{}, err
		}
		for _, id := range idents {
			hits = append(hits, RefHit{
				FilePath: id.FilePath, Line: id.StartLine, Kind: string(id.Kind),
				Variant: variantLabel, Similarity: sim,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].FilePath != hits[j].FilePath {
			return hits[i].FilePath < hits[j].FilePath
		}
		return hits[i].Line < hits[j].Line
	})
	hits = dedupeRefHits(hits)

	confidence := float32(0.5)
	if len(hits) > 0 {
		confidence = 0.8
	}
	if len(hits) > 20 {
		confidence -= 0.1
	}
	resp := newResponse("fast_refs", hits, confidence)
	if len(hits) == 0 {
		resp.Insights = "No references found; the symbol may be unused, dynamically dispatched, or only called from an unresolved (pending) edge"
	}
	return resp, nil
}

func dedupeRefHits(hits []RefHit) []RefHit {
	seen := make(map[string]bool, len(hits))
	out := hits[:0]
	for _, h := range hits {
		key := h.FilePath + ":" + strconv.Itoa(h.Line) + ":" + h.Kind
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
