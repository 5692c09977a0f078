package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shade-resolver/internal/resolve/model"
)

func acmeCatalogue() []model.CatalogueEntry {
	return []model.CatalogueEntry{
		{Brand: "Acme", ProductLine: "Velvet Matte", Shades: []string{"01 Rose", "02 Nude", "Rose"}},
		{Brand: "Acme", ProductLine: "Satin Gloss", Shades: []string{"Rose", "Coral"}},
		{Brand: "Beta Beauty", ProductLine: "Skin Tint", Shades: []string{"No. 3 Light", "#4 Medium"}},
	}
}

func mustIndex(t *testing.T, entries []model.CatalogueEntry) *Index {
	t.Helper()
	idx, err := Build(entries, NewNormalizer(nil))
	require.NoError(t, err)
	return idx
}

func mustEngine(t *testing.T, entries []model.CatalogueEntry, opt model.Options) *Engine {
	t.Helper()
	return NewEngine(mustIndex(t, entries), opt)
}

func rec(brand, line string, shade *string) model.InputRecord {
	return model.InputRecord{
		BrandStandardized: brand,
		ProductLineRaw:    line,
		ShadeRaw:          shade,
		Fields:            map[string]any{},
	}
}

func sp(s string) *string { return &s }
