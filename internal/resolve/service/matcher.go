package service

import "shade-resolver/internal/resolve/model"

// MatchReason explains an empty or non-empty shade match.
type MatchReason string

const (
	ReasonMatched    MatchReason = "matched"      // по нормализованному имени
	ReasonByNumber   MatchReason = "by_number"    // по ведущему номеру оттенка
	ReasonNoBrand    MatchReason = "no_brand"     // бренда нет в каталоге
	ReasonEmptyShade MatchReason = "empty_shade"  // оттенок отсутствует или пустой после нормализации
	ReasonNoShade    MatchReason = "no_shade"     // бренд есть, оттенка нет
)

// ShadeMatcher: только точное совпадение нормализованного оттенка.
// Fuzzy здесь нет, оттенок считается надёжным ключом; неоднозначность решает
// Disambiguator по линейке.
type ShadeMatcher struct {
	idx            *Index
	numberFallback bool
}

func NewShadeMatcher(idx *Index, numberFallback bool) ShadeMatcher {
	return ShadeMatcher{idx: idx, numberFallback: numberFallback}
}

// Match returns the candidates verbatim, in catalogue order.
func (m ShadeMatcher) Match(brand string, rawShade *string) ([]model.MatchCandidate, MatchReason) {
	bs, ok := m.idx.brand(brand)
	if !ok {
		return nil, ReasonNoBrand
	}
	if rawShade == nil {
		return nil, ReasonEmptyShade
	}
	key := m.idx.norm.Shade(*rawShade)
	if key == "" {
		return nil, ReasonEmptyShade
	}
	if cands := bs.shades[key]; len(cands) > 0 {
		return cands, ReasonMatched
	}
	if m.numberFallback {
		if num := ShadeNumber(key); num != "" {
			if cands := bs.numbers[num]; len(cands) > 0 {
				return cands, ReasonByNumber
			}
		}
	}
	return nil, ReasonNoShade
}
