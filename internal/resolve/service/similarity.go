package service

import (
	"math"
	"sort"
	"strings"
)

// ratio: normalized Damerau-Levenshtein similarity in [0..100].
// Пустая строка с любой стороны даёт 0.
func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 100 * (1 - float64(damerauLevenshtein(a, b))/float64(m))
}

// TokenSetScore compares two normalized strings ignoring token order and
// repetition. Общие токены t0 сравниваются с t0+остаток каждой стороны и
// остатки между собой; берётся лучшее выравнивание. Rounded to 0.01.
func TokenSetScore(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range sb {
		if _, ok := sa[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(inter, " ")
	t1 := joinNonEmpty(t0, strings.Join(onlyA, " "))
	t2 := joinNonEmpty(t0, strings.Join(onlyB, " "))

	best := ratio(t1, t2)
	if t0 != "" {
		best = math.Max(best, math.Max(ratio(t0, t1), ratio(t0, t2)))
	}
	return round2(best)
}

func tokenSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range Tokens(s) {
		m[t] = struct{}{}
	}
	return m
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
