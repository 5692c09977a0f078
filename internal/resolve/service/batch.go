package service

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shade-resolver/internal/resolve/model"
)

// BatchOptions: параметры пакетного прогона.
type BatchOptions struct {
	Workers int
	// Skip: ключи уже обработанных записей (resume по чекпойнту)
	Skip map[string]struct{}
	// OnItem is called from worker goroutines and must be safe for concurrent use.
	OnItem func(model.BatchItem)
	// OnSkip вызывается для строк, пропущенных по Skip (из вызывающей горутины)
	OnSkip func(index int)
	Logger zerolog.Logger
}

// ResolveBatch resolves rows in parallel. A malformed row is logged and
// kept with its error; it never stops the batch. Only ctx cancellation
// stops submitting further rows. Items come back in input order; skipped
// rows are omitted.
func ResolveBatch(ctx context.Context, e *Engine, rows []map[string]any, bo BatchOptions) ([]model.BatchItem, error) {
	workers := bo.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := bo.Logger

	items := make([]model.BatchItem, len(rows))
	done := make([]bool, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		rec, perr := model.ParseRecord(i, row)
		key := rec.Key()
		if perr == nil {
			if _, skip := bo.Skip[key]; skip {
				if bo.OnSkip != nil {
					bo.OnSkip(i)
				}
				continue
			}
		}
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			it :=model.BatchItem{Index: i, Key: key, Record: rec}
			if perr != nil {
				it.Err = perr
				log.Warn().Err(perr).Int("row", i).Msg("malformed record skipped")
			} else if rr, err := e.Resolve(rec); err != nil {
				it.Err = err
				log.Warn().Err(err).Int("row", i).Msg("malformed record skipped")
			} else {
				it.Resolved = &rr
			}
			items[i] = it
			done[i] = true
			if bo.OnItem != nil {
				bo.OnItem(it)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.BatchItem, 0, len(rows))
	for i := range items {
		if done[i] {
			out = append(out, items[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Summarize counts outcomes per status.
func Summarize(items []model.BatchItem) model.Summary {
	s := model.Summary{Total: len(items), ByStatus: make(map[model.MatchStatus]int, len(model.Statuses))}
	for _, st := range model.Statuses {
		s.ByStatus[st] = 0
	}
	for _, it := range items {
		switch {
		case it.Err != nil:
			s.Malformed++
		case it.Resolved != nil:
			s.ByStatus[it.Resolved.MatchStatus]++
		}
	}
	return s
}
