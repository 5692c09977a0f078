package model

import (
	"errors"
	"fmt"
)

// MatchStatus: итог разрешения одной записи.
type MatchStatus string

const (
	StatusExact               MatchStatus = "exact"
	StatusDisambiguated       MatchStatus = "disambiguated"
	StatusNoBrand             MatchStatus = "no_brand"
	StatusNoShadeMatch        MatchStatus = "no_shade_match"
	StatusAmbiguousUnresolved MatchStatus = "ambiguous_unresolved"
)

// Statuses lists every terminal status in report order.
var Statuses = []MatchStatus{
	StatusExact,
	StatusDisambiguated,
	StatusNoBrand,
	StatusNoShadeMatch,
	StatusAmbiguousUnresolved,
}

// Resolved reports whether the status carries a standardized product line.
func (s MatchStatus) Resolved() bool {
	return s == StatusExact || s == StatusDisambiguated
}

// How the shade key was found.
const (
	ShadeByName   = "exact"
	ShadeByNumber = "number"
)

var (
	ErrMalformedRecord    = errors.New("malformed record")
	ErrMalformedCatalogue = errors.New("malformed catalogue")
)

// MalformedRecordError: обязательное поле отсутствует или не того типа.
type MalformedRecordError struct {
	Index int
	Field string
	Cause string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: field %q: %s", e.Index, e.Field, e.Cause)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// CatalogueEntry is one product line of a brand with its shades in catalogue order.
type CatalogueEntry struct {
	Brand       string   `json:"brand"`
	ProductLine string   `json:"product_line"`
	Shades      []string `json:"shades"`
}

// MatchCandidate: пара (линейка, оттенок), живёт в пределах одной записи.
type MatchCandidate struct {
	Entry CatalogueEntry
	Shade string
	// LineKey: нормализованное имя линейки (считается при построении индекса)
	LineKey string
}

// InputRecord is never mutated by the resolver.
type InputRecord struct {
	BrandStandardized string
	ProductLineRaw    string
	ShadeRaw          *string        // nil = поле отсутствует
	Fields            map[string]any // все исходные поля, как пришли
}

type ResolvedRecord struct {
	ProductLineStandardized *string     `json:"product_line_standardized"`
	ShadeStandardized       *string     `json:"shade_standardized"`
	MatchStatus             MatchStatus `json:"match_status"`
	DisambiguationScore     *float64    `json:"disambiguation_score"`
	ShadeMatch              string      `json:"shade_match,omitempty"`          // exact | number
	ReviewProductLines      []string    `json:"review_product_lines,omitempty"` // только ambiguous_unresolved
}

// Options: настраиваемая политика движка.
type Options struct {
	Threshold           float64           `json:"threshold"` // 0..100, принимаем score >= Threshold
	ShadeNumberFallback bool              `json:"shadeNumberFallback"`
	Fold                map[string]string `json:"fold,omitempty"`
}

const DefaultThreshold = 60.0

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// BatchItem pairs one input row with its outcome. Err is set only for malformed rows.
type BatchItem struct {
	Index    int
	Key      string
	Record   InputRecord
	Resolved *ResolvedRecord
	Err      error
}

type Summary struct {
	Total     int                 `json:"total"`
	Malformed int                 `json:"malformed"`
	ByStatus  map[MatchStatus]int `json:"byStatus"`
}

// NonMatch: строка отчёта о неразрешённых записях.
type NonMatch struct {
	Brand          string      `json:"brand"`
	ProductLineRaw string      `json:"product_raw"`
	ShadeRaw       string      `json:"shade_raw"`
	Reason         MatchStatus `json:"reason"`
	Count          int         `json:"count"`
}
