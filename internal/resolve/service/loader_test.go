package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shade-resolver/internal/resolve/model"
)

func TestLoadEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"brand,product_line,shade\n"+
			"Acme,Velvet Matte,Rose\n"+
			"Acme,Satin Gloss,Rosé|Rose & Gold\n"), 0o644))

	opt := model.Options{Threshold: 70, Fold: map[string]string{"&": " n "}}
	eng, err := LoadEngine(path, opt, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 70.0, eng.Options().Threshold)
	assert.Equal(t, 2, eng.Index().Stats().Entries)
	require.Len(t, eng.Index().Collisions(), 1)

	got, err := eng.Resolve(rec("Acme", "", sp("rose n gold")))
	require.NoError(t, err)
	assert.Equal(t, model.StatusExact, got.MatchStatus)
	assert.Equal(t, "Rose & Gold", *got.ShadeStandardized)
}

func TestLoadEngine_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"brand":"","product_line":"X","shades":["A"]}]`), 0o644))

	_, err := LoadEngine(path, model.DefaultOptions(), zerolog.Nop())
	assert.ErrorIs(t, err, model.ErrMalformedCatalogue)

	_, err = LoadEngine(filepath.Join(t.TempDir(), "none.json"), model.DefaultOptions(), zerolog.Nop())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, model.ErrMalformedCatalogue)
}
