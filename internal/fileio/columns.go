package fileio

import (
	"regexp"
	"sort"
	"strings"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, служебные символы → пробел
func normHeaderKey(s string) string {
	s = strings.ToLower(normalizeCell(s))
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey ищет реальный заголовок по списку допустимых имён.
// Сначала точное совпадение, потом нормализованное, потом вхождение
// (самое длинное). "" если ничего не подошло.
func resolveKey(headers []string, want []string) string {
	for _, w := range want {
		for _, h := range headers {
			if h == w {
				return h
			}
		}
	}

	norms := make([]string, len(want))
	for i, w := range want {
		norms[i] = normHeaderKey(w)
	}
	for _, n := range norms {
		for _, h := range headers {
			if normHeaderKey(h) == n {
				return h
			}
		}
	}

	best, bestScore := "", 0
	for _, h := range headers {
		nh := normHeaderKey(h)
		for _, n := range norms {
			if n != "" && strings.Contains(nh, n) && len(n) > bestScore {
				best, bestScore = h, len(n)
			}
		}
	}
	return best
}

// заголовки в стабильном порядке (map не гарантирует порядок)
func headersOf(rows []map[string]string) []string {
	if len(rows) == 0 {
		return nil
	}
	out := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
