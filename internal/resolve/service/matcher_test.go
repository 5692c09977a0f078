package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadeMatcher_Match(t *testing.T) {
	idx := mustIndex(t, acmeCatalogue())
	m := NewShadeMatcher(idx, false)

	tests := []struct {
		name   string
		brand  string
		shade  *string
		n      int
		reason MatchReason
	}{
		{"unknown brand", "Unknown Co", sp("Rose"), 0, ReasonNoBrand},
		{"absent shade", "Acme", nil, 0, ReasonEmptyShade},
		{"shade normalizes to empty", "Acme", sp(" # "), 0, ReasonEmptyShade},
		{"unknown shade", "Acme", sp("Plum"), 0, ReasonNoShade},
		{"single", "Acme", sp("02 nude"), 1, ReasonMatched},
		{"ambiguous", "acme", sp("ROSE"), 2, ReasonMatched},
		{"marker stripped", "Beta Beauty", sp("no.3 light"), 1, ReasonMatched},
		{"number only without fallback", "Acme", sp("02"), 0, ReasonNoShade},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := m.Match(tc.brand, tc.shade)
			assert.Len(t, got, tc.n)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestShadeMatcher_NumberFallback(t *testing.T) {
	idx := mustIndex(t, acmeCatalogue())
	m := NewShadeMatcher(idx, true)

	got, reason := m.Match("Acme", sp("No. 02 Beige"))
	require.Len(t, got, 1)
	assert.Equal(t, ReasonByNumber, reason)
	assert.Equal(t, "02 Nude", got[0].Shade)

	// точное имя важнее номера
	got, reason = m.Match("Acme", sp("01 rose"))
	require.Len(t, got, 1)
	assert.Equal(t, ReasonMatched, reason)
	assert.Equal(t, "01 Rose", got[0].Shade)

	_, reason = m.Match("Acme", sp("99 Plum"))
	assert.Equal(t, ReasonNoShade, reason)
}
