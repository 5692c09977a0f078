package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shade-resolver/internal/fileio"
	"shade-resolver/internal/resolve/model"
)

// LoadEngine reads the catalogue file and builds a ready engine. Any
// failure is an initialization error and nothing is published.
func LoadEngine(path string, opt model.Options, logger zerolog.Logger) (*Engine, error) {
	start := time.Now()
	entries, err := fileio.ReadCatalogueFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := Build(entries, NewNormalizer(opt.Fold))
	if err != nil {
		return nil, fmt.Errorf("build index from %s: %w", path, err)
	}

	st := idx.Stats()
	for _, c := range idx.Collisions() {
		logger.Warn().
			Str("brand", c.Brand).
			Str("key", c.Key).
			Strs("shades", c.Shades).
			Msg("shade spellings collapse to one key, kept as separate candidates")
	}
	logger.Info().
		Str("path", path).
		Int("brands", st.Brands).
		Int("entries", st.Entries).
		Int("shades", st.Shades).
		Int("skipped_shades", st.SkippedShades).
		Int("collisions", st.Collisions).
		Dur("elapsed", time.Since(start)).
		Msg("catalogue indexed")

	return NewEngine(idx, opt), nil
}
