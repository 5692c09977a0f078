package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Таблица свёртки по умолчанию: то, что NFD не раскладывает.
var defaultFold = map[string]string{
	"ß": "ss",
	"æ": "ae",
	"œ": "oe",
	"ø": "o",
	"ł": "l",
	"đ": "d",
	"&": " and ",
	"+": " plus ",
}

// 0,5 → 0.5
var decComma = regexp.MustCompile(`(\d),(\d)`)

// Маркеры номера оттенка: "No. 02", "#02", "№02"
var reShadeMarker = regexp.MustCompile(`(?i)(?:\bno\.|#|№)`)

// Ведущий номер оттенка: "02", "1.5"
var reShadeNumber = regexp.MustCompile(`^\d+(?:\.\d+)?`)

// Normalizer folds text the same way at index build and at query time.
// Safe for concurrent use.
type Normalizer struct {
	fold *strings.Replacer
}

// NewNormalizer merges rules over the default fold table. Keys are matched
// after lower-casing.
func NewNormalizer(rules map[string]string) *Normalizer {
	merged := make(map[string]string, len(defaultFold)+len(rules))
	for k, v := range defaultFold {
		merged[k] = v
	}
	for k, v := range rules {
		if k == "" {
			continue
		}
		merged[strings.ToLower(k)] = strings.ToLower(v)
	}
	// длинные ключи первыми, иначе Replacer зависит от порядка map
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, merged[k])
	}
	return &Normalizer{fold: strings.NewReplacer(pairs...)}
}

// Normalize keeps absence: nil in, nil out. A non-nil result may be empty.
func (n *Normalizer) Normalize(s *string) *string {
	if s == nil {
		return nil
	}
	out := n.Text(*s)
	return &out
}

// Text: регистр, таблица свёртки, диакритика, транслитерация,
// пунктуация, пробелы.
func (n *Normalizer) Text(s string) string {
	if s == "" {
		return ""
	}
	out := strings.ToLower(s)
	out = n.fold.Replace(out)
	out = stripDiacritics(out)
	out = transliterate(out)
	out = decComma.ReplaceAllString(out, "$1.$2")
	out = removePunct(out)
	return collapseSpaces(out)
}

// Shade additionally drops shade number markers before folding.
func (n *Normalizer) Shade(s string) string {
	return n.Text(reShadeMarker.ReplaceAllString(s, " "))
}

// ShadeNumber returns the leading shade number of a normalized shade key.
func ShadeNumber(key string) string {
	return reShadeNumber.FindString(key)
}

// Tokens splits normalized text into tokens.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// ===== helpers =====

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// остаток не-ASCII (кириллица, греческий и т.п.) → латиница
func transliterate(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return strings.ToLower(unidecode.Unidecode(s))
		}
	}
	return s
}

// Всё, кроме букв и цифр, → пробел. Точка остаётся только между цифрами (1.5).
func removePunct(s string) string {
	rs := []rune(s)
	b := make([]rune, 0, len(rs))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b = append(b, r)
		case r == '.' && i > 0 && i < len(rs)-1 && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]):
			b = append(b, r)
		default:
			b = append(b, ' ')
		}
	}
	return string(b)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
