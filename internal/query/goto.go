package query

import (
	"context"
	"sort"

	"github.com/juliecode/julie/internal/model"
)

// GotoHit is one fast_goto result.
type GotoHit struct {
	Symbol     *model.Symbol `json:"symbol"`
	Ambiguous  bool          `json:"ambiguous"`
}

// GotoFilter narrows fast_goto by language/kind, the same pair
// fast_search's symbol query accepts (spec.md §4.E/§4.I).
type GotoFilter struct {
	Language string
	Kind     model.SymbolKind
}

// kindPreference ranks symbol kinds so definitions outrank references when
// fast_goto has to pick a top hit among same-named symbols (spec.md §4.I:
// "rank by kind preference (definitions over references)"). Lower is
// better.
var kindPreference = map[model.SymbolKind]int{
	model.KindClass:       0,
	model.KindStruct:      0,
	model.KindInterface:   0,
	model.KindTrait:       0,
	model.KindEnum:        0,
	model.KindFunction:    1,
	model.KindMethod:      1,
	model.KindConstructor: 1,
	model.KindType:        2,
	model.KindConstant:    3,
	model.KindVariable:    4,
	model.KindField:       4,
	model.KindProperty:    4,
	model.KindModule:      5,
	model.KindNamespace:   5,
	model.KindImport:      9,
	model.KindExport:      9,
}

func preferenceOf(k model.SymbolKind) int {
	if p, ok := kindPreference[k]; ok {
		return p
	}
	return 6
}

// FastGoto looks up every symbol named exactly name, ranks them by kind
// preference, and reports whether more than one candidate remains after
// filtering (spec.md §4.I fast_goto).
func (svc *Service) FastGoto(ctx context.Context, name string, filter GotoFilter) (Response[GotoHit], error) {
	syms, err := svc.store.SymbolsByName(ctx, name)
	if err != nil {
		return Response[GotoHit]{}, err
	}

	filtered := syms[:0:0]
	for _, s := range syms {
		if filter.Language != "" && s.Language != filter.Language {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		pi, pj := preferenceOf(filtered[i].Kind), preferenceOf(filtered[j].Kind)
		if pi != pj {
			return pi < pj
		}
		if filtered[i].FilePath != filtered[j].FilePath {
			return filtered[i].FilePath < filtered[j].FilePath
		}
		return filtered[i].StartLine < filtered[j].StartLine
	})

	ambiguous := len(filtered) > 1
	hits := make([]GotoHit, 0, len(filtered))
	for _, s := range filtered {
		hits = append(hits, GotoHit{Symbol: s, Ambiguous: ambiguous})
	}

	confidence := float32(0)
	if len(hits) == 1 {
		confidence = 1
	} else if len(hits) > 1 {
		confidence = 0.6
	}
	resp := newResponse("fast_goto", hits, confidence)
	return resp, nil
}
