package service

import (
	"fmt"
	"sort"
	"strings"

	"shade-resolver/internal/resolve/model"
)

// Index: неизменяемый индекс каталога по брендам. После Build не
// мутируется, поэтому читается без блокировок из любого числа горутин.
type Index struct {
	norm       *Normalizer
	brands     map[string]*brandShades
	stats      Stats
	collisions []Collision
}

type brandShades struct {
	entries []model.CatalogueEntry
	// нормализованный оттенок -> кандидаты в порядке каталога
	shades map[string][]model.MatchCandidate
	// ведущий номер оттенка -> кандидаты (для fallback по номеру)
	numbers map[string][]model.MatchCandidate
}

// Collision: разные написания оттенков одного бренда свелись к одному ключу.
// Both spellings stay in the table as separate candidates.
type Collision struct {
	Brand  string   `json:"brand"`
	Key    string   `json:"key"`
	Shades []string `json:"shades"`
}

type Stats struct {
	Brands        int `json:"brands"`
	Entries       int `json:"entries"`
	Shades        int `json:"shades"`
	SkippedShades int `json:"skippedShades"` // оттенок нормализуется в пустую строку
	Collisions    int `json:"collisions"`
}

// Build indexes the catalogue in one pass over all shades. The result is
// returned only when complete. Empty brand or a shade repeated (after
// normalization) inside one entry make the catalogue malformed.
func Build(entries []model.CatalogueEntry, nz *Normalizer) (*Index, error) {
	if nz == nil {
		nz = NewNormalizer(nil)
	}
	idx := &Index{
		norm:   nz,
		brands: make(map[string]*brandShades),
	}

	for i, e := range entries {
		brandKey := nz.Text(e.Brand)
		if brandKey == "" {
			return nil, fmt.Errorf("%w: entry %d (%q): empty brand", model.ErrMalformedCatalogue, i, e.ProductLine)
		}
		bs, ok := idx.brands[brandKey]
		if !ok {
			bs = &brandShades{
				shades:  make(map[string][]model.MatchCandidate),
				numbers: make(map[string][]model.MatchCandidate),
			}
			idx.brands[brandKey] = bs
		}

		// копия, чтобы индекс не зависел от чужого среза
		entry := model.CatalogueEntry{
			Brand:       e.Brand,
			ProductLine: e.ProductLine,
			Shades:      append([]string(nil), e.Shades...),
		}
		bs.entries = append(bs.entries, entry)
		idx.stats.Entries++

		lineKey := nz.Text(entry.ProductLine)
		seen := make(map[string]string, len(entry.Shades))
		for _, shade := range entry.Shades {
			key := nz.Shade(shade)
			if key == "" {
				idx.stats.SkippedShades++
				continue
			}
			if prev, dup := seen[key]; dup {
				return nil, fmt.Errorf("%w: brand %q, product line %q: shades %q and %q normalize to %q",
					model.ErrMalformedCatalogue, entry.Brand, entry.ProductLine, prev, shade, key)
			}
			seen[key] = shade

			c := model.MatchCandidate{Entry: entry, Shade: shade, LineKey: lineKey}
			bs.shades[key] = append(bs.shades[key], c)
			if num := ShadeNumber(key); num != "" {
				bs.numbers[num] = append(bs.numbers[num], c)
			}
			idx.stats.Shades++
		}
	}

	idx.stats.Brands = len(idx.brands)
	idx.collisions = findCollisions(idx.brands)
	idx.stats.Collisions = len(idx.collisions)
	return idx, nil
}

func findCollisions(brands map[string]*brandShades) []Collision {
	var out []Collision
	for _, bs := range brands {
		for key, cands := range bs.shades {
			distinct := make([]string, 0, 2)
			seen := make(map[string]struct{})
			for _, c := range cands {
				if _, ok := seen[c.Shade]; ok {
					continue
				}
				seen[c.Shade] = struct{}{}
				distinct = append(distinct, c.Shade)
			}
			if len(distinct) > 1 {
				out = append(out, Collision{Brand: cands[0].Entry.Brand, Key: key, Shades: distinct})
			}
		}
	}
	// детерминированный порядок для логов и API
	sort.Slice(out, func(i, j int) bool {
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Normalizer returns the normalizer the index was built with.
func (idx *Index) Normalizer() *Normalizer { return idx.norm }

func (idx *Index) Stats() Stats { return idx.stats }

func (idx *Index) Collisions() []Collision { return idx.collisions }

func (idx *Index) brand(brand string) (*brandShades, bool) {
	bs, ok := idx.brands[idx.norm.Text(brand)]
	return bs, ok
}

// HasBrand reports whether the brand is present in the catalogue.
func (idx *Index) HasBrand(brand string) bool {
	_, ok := idx.brand(brand)
	return ok
}

// LookupByBrand returns the brand's entries in catalogue order; nil for an unknown brand.
func (idx *Index) LookupByBrand(brand string) []model.CatalogueEntry {
	bs, ok := idx.brand(brand)
	if !ok {
		return nil
	}
	return bs.entries
}

// ShadeTableForBrand returns normalized shade -> candidates. The map is
// shared with the index and must not be modified.
func (idx *Index) ShadeTableForBrand(brand string) map[string][]model.MatchCandidate {
	bs, ok := idx.brand(brand)
	if !ok {
		return nil
	}
	return bs.shades
}

// Brands returns the catalogue spelling of every brand, sorted.
func (idx *Index) Brands() []string {
	out := make([]string, 0, len(idx.brands))
	for _, bs := range idx.brands {
		if len(bs.entries) > 0 {
			out = append(out, bs.entries[0].Brand)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}
