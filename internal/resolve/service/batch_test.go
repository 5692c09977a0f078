package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shade-resolver/internal/resolve/model"
)

func row(brand, line, shade string) map[string]any {
	return map[string]any{
		model.FieldBrand:       brand,
		model.FieldProductLine: line,
		model.FieldShade:       shade,
	}
}

func TestResolveBatch(t *testing.T) {
	eng := mustEngine(t, acmeCatalogue(), model.DefaultOptions())
	rows := []map[string]any{
		row("Acme", "", "02 nude"),
		{model.FieldProductLine: "Velvet Matte", model.FieldShade: "rose"},
		row("Acme", "velvet matt", "rose"),
		row("Acme", "xyz123", "rose"),
		row("Unknown Co", "", "rose"),
	}

	var calls atomic.Int32
	items, err := ResolveBatch(context.Background(), eng, rows, BatchOptions{
		Workers: 3,
		Logger:  zerolog.Nop(),
		OnItem:  func(model.BatchItem) { calls.Add(1) },
	})
	require.NoError(t, err)
	require.Len(t, items, len(rows))
	assert.EqualValues(t, len(rows), calls.Load())

	for i, it := range items {
		assert.Equal(t, i, it.Index, "input order")
	}

	assert.ErrorIs(t, items[1].Err, model.ErrMalformedRecord)
	assert.Nil(t, items[1].Resolved)

	want := []model.MatchStatus{model.StatusExact, "", model.StatusDisambiguated, model.StatusAmbiguousUnresolved, model.StatusNoBrand}
	for i, st := range want {
		if st == "" {
			continue
		}
		require.NotNil(t, items[i].Resolved, "row %d", i)
		assert.Equal(t, st, items[i].Resolved.MatchStatus, "row %d", i)
	}

	sum := Summarize(items)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 1, sum.Malformed)
	assert.Equal(t, 1, sum.ByStatus[model.StatusExact])
	assert.Equal(t, 0, sum.ByStatus[model.StatusNoShadeMatch])
	assert.Len(t, sum.ByStatus, len(model.Statuses))
}

func TestResolveBatch_Skip(t *testing.T) {
	eng := mustEngine(t, acmeCatalogue(), model.DefaultOptions())
	rows := []map[string]any{
		row("Acme", "", "02 nude"),
		row("Acme", "velvet matt", "rose"),
	}
	first, err := model.ParseRecord(0, rows[0])
	require.NoError(t, err)

	var skipped []int
	var done atomic.Int32
	items, err := ResolveBatch(context.Background(), eng, rows, BatchOptions{
		Workers: 1,
		Skip:    map[string]struct{}{first.Key(): {}},
		OnSkip:  func(i int) { skipped = append(skipped, i) },
		OnItem:  func(model.BatchItem) { done.Add(1) },
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Index)
	assert.Equal(t, []int{0}, skipped)
	assert.Equal(t, len(rows), len(skipped)+int(done.Load()), "every row is either skipped or processed")
}

func TestResolveBatch_Cancelled(t *testing.T) {
	eng := mustEngine(t, acmeCatalogue(), model.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := ResolveBatch(ctx, eng, []map[string]any{row("Acme", "", "02 nude")}, BatchOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, items)
}

func TestNonMatches(t *testing.T) {
	eng := mustEngine(t, acmeCatalogue(), model.DefaultOptions())
	rows := []map[string]any{
		row("Acme", "xyz123", "rose"),
		row("Acme", "xyz123", "rose"),
		row("Acme", "Velvet Matte", "plum"),
		row("Unknown Co", "Glow", "1"),
		row("Unknown Co", "", "1"),
		row("Acme", "velvet matt", "rose"),
	}
	items, err := ResolveBatch(context.Background(), eng, rows, BatchOptions{Workers: 2})
	require.NoError(t, err)

	got := NonMatches(items)
	require.Len(t, got, 3)
	assert.Equal(t, model.NonMatch{
		Brand: "Acme", ProductLineRaw: "xyz123", ShadeRaw: "rose",
		Reason: model.StatusAmbiguousUnresolved, Count: 2,
	}, got[0])
	assert.Equal(t, "Velvet Matte", got[1].ProductLineRaw)
	assert.Equal(t, model.StatusNoShadeMatch, got[1].Reason)
	assert.Equal(t, "Unknown Co", got[2].Brand)
	assert.Equal(t, model.StatusNoBrand, got[2].Reason)
}
