package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// только десятичная запись: без экспоненты, hex и лишних символов
var rxDecimal = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d*)?|\.\d+)$`)

// ParseFloat парсит "60", "72,5", " 72.5 ", "1 000" (NBSP/NNBSP тоже).
// Всё остальное ("6O", "abc60", "1e2", NaN/Inf) не число.
func ParseFloat(s string) (float64, bool) {
	s = strings.NewReplacer(" ", "", "\u00A0", "", "\u202F", "", ",", ".").Replace(strings.TrimSpace(s))
	if !rxDecimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool понимает 1/0, true/false, yes/no, y/n, on/off.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
