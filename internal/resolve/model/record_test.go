package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(0, map[string]any{
		FieldBrand:       " Acme ",
		FieldProductLine: "Velvet Matt",
		FieldShade:       json.Number("2"),
		"views":          10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.BrandStandardized)
	assert.Equal(t, "Velvet Matt", rec.ProductLineRaw)
	require.NotNil(t, rec.ShadeRaw)
	assert.Equal(t, "2", *rec.ShadeRaw)
	assert.Equal(t, 10, rec.Fields["views"])
}

func TestParseRecord_Aliases(t *testing.T) {
	rec, err := ParseRecord(0, map[string]any{
		FieldBrand:                  "Acme",
		"product_line_raw_examples": "Velvet",
		"shade_raw_examples":        "Rose",
	})
	require.NoError(t, err)
	assert.Equal(t, "Velvet", rec.ProductLineRaw)
	assert.Equal(t, "Rose", *rec.ShadeRaw)
}

func TestParseRecord_AbsentShade(t *testing.T) {
	rec, err := ParseRecord(0, map[string]any{FieldBrand: "Acme", FieldShade: nil})
	require.NoError(t, err)
	assert.Nil(t, rec.ShadeRaw)
	assert.Equal(t, "", rec.ProductLineRaw)
}

func TestParseRecord_Malformed(t *testing.T) {
	cases := map[string]struct {
		fields map[string]any
		field  string
	}{
		"missing brand":  {map[string]any{FieldShade: "Rose"}, FieldBrand},
		"empty brand":    {map[string]any{FieldBrand: "   "}, FieldBrand},
		"brand not text": {map[string]any{FieldBrand: []any{"Acme"}}, FieldBrand},
		"shade not text": {map[string]any{FieldBrand: "Acme", FieldShade: map[string]any{}}, FieldShade},
		"line not text":  {map[string]any{FieldBrand: "Acme", FieldProductLine: true}, FieldProductLine},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecord(7, tc.fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))

			var me *MalformedRecordError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, 7, me.Index)
			assert.Equal(t, tc.field, me.Field)
		})
	}
}

func TestInputRecord_Key(t *testing.T) {
	shade := "Rose"
	rec := InputRecord{
		BrandStandardized: "Acme",
		ProductLineRaw:    "Velvet",
		ShadeRaw:          &shade,
		Fields:            map[string]any{FieldVideoID: "v1"},
	}
	assert.Equal(t, "v1|Acme|Velvet|Rose", rec.Key())

	rec.Fields = map[string]any{FieldVideoID: json.Number("42")}
	rec.ShadeRaw = nil
	assert.Equal(t, "42|Acme|Velvet|", rec.Key())
}

func TestBatchItem_Output(t *testing.T) {
	line, shade, score := "Velvet Matte", "Rose", 91.67
	it := BatchItem{
		Record: InputRecord{Fields: map[string]any{FieldBrand: "Acme", "views": 3}},
		Resolved: &ResolvedRecord{
			ProductLineStandardized: &line,
			ShadeStandardized:       &shade,
			MatchStatus:             StatusDisambiguated,
			DisambiguationScore:     &score,
			ShadeMatch:              ShadeByName,
		},
	}
	b, err := json.Marshal(it.Output())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"brand_standardized": "Acme",
		"views": 3,
		"product_line_standardized": "Velvet Matte",
		"shade_standardized": "Rose",
		"match_status": "disambiguated",
		"disambiguation_score": 91.67,
		"shade_match": "exact"
	}`, string(b))

	bad := BatchItem{
		Record: InputRecord{Fields: map[string]any{"views": 3}},
		Err:    &MalformedRecordError{Index: 1, Field: FieldBrand, Cause: "missing"},
	}
	out := bad.Output()
	assert.Equal(t, `record 1: field "brand_standardized": missing`, out["error"])
	assert.NotContains(t, out, "match_status")
}

func TestMatchStatus_Resolved(t *testing.T) {
	for _, st := range Statuses {
		want := st == StatusExact || st == StatusDisambiguated
		assert.Equal(t, want, st.Resolved(), st)
	}
}
