package service

import (
	"sort"

	"shade-resolver/internal/resolve/model"
)

type nonMatchKey struct {
	brand, product, shade string
	status                model.MatchStatus
}

// NonMatches aggregates records left without a product line by
// (brand, product_raw, shade_raw, status). Rows with an empty raw product
// line are not counted. Order: count desc, then key.
func NonMatches(items []model.BatchItem) []model.NonMatch {
	counts := make(map[nonMatchKey]int)
	for _, it := range items {
		if it.Err != nil || it.Resolved == nil || it.Resolved.MatchStatus.Resolved() {
			continue
		}
		if it.Record.ProductLineRaw == "" {
			continue
		}
		shade := ""
		if it.Record.ShadeRaw != nil {
			shade = *it.Record.ShadeRaw
		}
		counts[nonMatchKey{
			brand:   it.Record.BrandStandardized,
			product: it.Record.ProductLineRaw,
			shade:   shade,
			status:  it.Resolved.MatchStatus,
		}]++
	}

	out := make([]model.NonMatch, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.NonMatch{
			Brand:          k.brand,
			ProductLineRaw: k.product,
			ShadeRaw:       k.shade,
			Reason:         k.status,
			Count:          n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		if a.ProductLineRaw != b.ProductLineRaw {
			return a.ProductLineRaw < b.ProductLineRaw
		}
		if a.ShadeRaw != b.ShadeRaw {
			return a.ShadeRaw < b.ShadeRaw
		}
		return a.Reason < b.Reason
	})
	return out
}
