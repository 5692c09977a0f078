package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shade-resolver/internal/resolve/model"
)

func cand(line, shade string) model.MatchCandidate {
	return model.MatchCandidate{
		Entry:   model.CatalogueEntry{Brand: "Acme", ProductLine: line, Shades: []string{shade}},
		Shade:   shade,
		LineKey: NewNormalizer(nil).Text(line),
	}
}

func TestDisambiguate_PicksBestScore(t *testing.T) {
	d := Disambiguator{Threshold: model.DefaultThreshold}
	cands := []model.MatchCandidate{cand("Satin Gloss", "Rose"), cand("Velvet Matte", "Rose")}

	dec := d.Disambiguate("velvet matt", cands)
	require.NotNil(t, dec.Selected)
	assert.Equal(t, "Velvet Matte", dec.Selected.Entry.ProductLine)
	assert.Equal(t, 91.67, dec.Score)
	require.Len(t, dec.Scored, 2)
	assert.Equal(t, "Satin Gloss", dec.Scored[0].Candidate.Entry.ProductLine, "scores keep input order")
}

func TestDisambiguate_BelowThreshold(t *testing.T) {
	d := Disambiguator{Threshold: model.DefaultThreshold}
	dec := d.Disambiguate("xyz123", []model.MatchCandidate{cand("Velvet Matte", "Rose"), cand("Satin Gloss", "Rose")})

	assert.Nil(t, dec.Selected)
	assert.Less(t, dec.Score, model.DefaultThreshold)
}

func TestDisambiguate_ThresholdBoundary(t *testing.T) {
	cands := []model.MatchCandidate{cand("Velvet Matte", "Rose"), cand("Satin Gloss", "Rose")}
	score := TokenSetScore("velvet matt", "velvet matte")

	at := Disambiguator{Threshold: score}.Disambiguate("velvet matt", cands)
	require.NotNil(t, at.Selected, "score equal to threshold is accepted")
	assert.Equal(t, "Velvet Matte", at.Selected.Entry.ProductLine)

	above := Disambiguator{Threshold: score + 1}.Disambiguate("velvet matt", cands)
	assert.Nil(t, above.Selected, "one point below threshold is rejected")
	assert.Equal(t, score, above.Score)
}

func TestDisambiguate_TieBreakLexicographic(t *testing.T) {
	d := Disambiguator{Threshold: model.DefaultThreshold}
	// "matte": подмножество обеих линеек, обе дают 100
	orders := [][]model.MatchCandidate{
		{cand("Velvet Matte", "Rose"), cand("Satin Matte", "Rose")},
		{cand("Satin Matte", "Rose"), cand("Velvet Matte", "Rose")},
	}
	for _, cands := range orders {
		dec := d.Disambiguate("matte", cands)
		require.NotNil(t, dec.Selected)
		assert.Equal(t, 100.0, dec.Score)
		assert.Equal(t, "Satin Matte", dec.Selected.Entry.ProductLine)
	}
}

func TestDisambiguate_TieBreakFirstSeen(t *testing.T) {
	d := Disambiguator{Threshold: model.DefaultThreshold}
	first := cand("Velvet Matte", "Rose")
	first.Entry.Shades = []string{"Rose", "first"}
	second := cand("velvet  matte", "Rose")
	second.Entry.Shades = []string{"Rose", "second"}

	dec := d.Disambiguate("velvet matte", []model.MatchCandidate{first, second})
	require.NotNil(t, dec.Selected)
	assert.Equal(t, "first", dec.Selected.Entry.Shades[1])

	dec = d.Disambiguate("velvet matte", []model.MatchCandidate{second, first})
	require.NotNil(t, dec.Selected)
	assert.Equal(t, "second", dec.Selected.Entry.Shades[1])
}

func TestDisambiguate_EmptyProductLine(t *testing.T) {
	d := Disambiguator{Threshold: model.DefaultThreshold}
	dec := d.Disambiguate("", []model.MatchCandidate{cand("Velvet Matte", "Rose"), cand("Satin Gloss", "Rose")})
	assert.Nil(t, dec.Selected)
	assert.Equal(t, 0.0, dec.Score)
}
