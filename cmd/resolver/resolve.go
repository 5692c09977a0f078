package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shade-resolver/internal/fileio"
	"shade-resolver/internal/resolve/model"
	"shade-resolver/internal/resolve/service"
	"shade-resolver/internal/store"
)

type resolveFlags struct {
	input          string
	out            string
	report         string
	checkpoint     string
	noCheckpoint   bool
	threshold      float64
	workers        int
	headerRow      int
	numberFallback bool
	noProgress     bool
}

func newResolveCmd() *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a record file and write standardized output",
		Long: `Resolve reads records (json/csv/xls/xlsx), resolves each against the
catalogue and writes a JSON array of records with product_line_standardized,
shade_standardized, match_status and disambiguation_score.

With --checkpoint (or CHECKPOINT_DB) the run is resumable: finished records
are stored in SQLite and skipped on the next run over the same input. Results
are kept per input contents, so one database can serve several files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("threshold") && (f.threshold < 0 || f.threshold > 100) {
				return fmt.Errorf("--threshold must be in [0,100], got %v", f.threshold)
			}
			return runResolve(cmd.Context(), engineOptions(cmd, f.threshold, f.numberFallback), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "records file (required)")
	fl.StringVarP(&f.out, "out", "o", "", "output JSON file (default: stdout)")
	fl.StringVar(&f.report, "report", "", "non-match report path (.json or .xlsx)")
	fl.StringVar(&f.checkpoint, "checkpoint", "", "SQLite checkpoint for resumable runs (default: config CHECKPOINT_DB)")
	fl.BoolVar(&f.noCheckpoint, "no-checkpoint", false, "ignore CHECKPOINT_DB for this run")
	fl.Float64Var(&f.threshold, "threshold", model.DefaultThreshold, "minimum disambiguation score (0-100)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (default: config WORKERS)")
	fl.IntVar(&f.headerRow, "header-row", 1, "header row for csv/xls/xlsx (1-based)")
	fl.BoolVar(&f.numberFallback, "shade-number-fallback", false, "match by leading shade number when the name is not found")
	fl.BoolVar(&f.noProgress, "no-progress", false, "disable progress bar")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runResolve(ctx context.Context, opt model.Options, f resolveFlags) error {
	eng, err := service.LoadEngine(cfg.CataloguePath, opt, logger)
	if err != nil {
		return err
	}

	rows, err := fileio.ReadRecordsFile(f.input, f.headerRow)
	if err != nil {
		return err
	}

	var run *store.Run
	skip := map[string]struct{}{}
	if path := checkpointPath(f); path != "" {
		source, err := store.Digest(f.input)
		if err != nil {
			return err
		}
		ckpt, err := store.Open(ctx, path)
		if err != nil {
			return err
		}
		defer ckpt.Close()
		if run, err = ckpt.BeginRun(ctx, uuid.NewString(), source, f.input); err != nil {
			return err
		}
		if skip, err = run.Keys(ctx); err != nil {
			return err
		}
		logger.Info().
			Str("run", run.ID).
			Str("checkpoint", path).
			Str("source", source[:12]).
			Int("previous_runs", run.Previous).
			Int("already_processed", len(skip)).
			Msg("checkpoint opened")
	}

	workers := f.workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	bar := newProgress(len(rows), "resolving", !f.noProgress)
	items, runErr := service.ResolveBatch(ctx, eng, rows, service.BatchOptions{
		Workers: workers,
		Skip:    skip,
		Logger:  logger,
		OnSkip:  func(int) { bar.Add() },
		OnItem: func(it model.BatchItem) {
			bar.Add()
			if run == nil {
				return
			}
			// context.Background: результат уже посчитан, сохраняем даже при отмене
			if err := run.Save(context.Background(), it); err != nil {
				logger.Error().Err(err).Str("key", it.Key).Msg("checkpoint save")
			}
		},
	})
	bar.Finish()
	if runErr != nil {
		logger.Warn().Err(runErr).Int("done", len(items)).Msg("run interrupted")
	}

	// при чекпойнте итог собирается из базы: там и прошлые прогоны
	var outRows []map[string]any
	if run != nil {
		stored, err := run.All(context.Background())
		if err != nil {
			return err
		}
		items = items[:0]
		for _, r := range stored {
			outRows = append(outRows, r.Payload)
			items = append(items, r.Item())
		}
	} else {
		for _, it := range items {
			outRows = append(outRows, it.Output())
		}
	}

	if err := writeOutput(f.out, outRows); err != nil {
		return err
	}
	if f.report != "" {
		if err := writeReport(f.report, service.NonMatches(items)); err != nil {
			return err
		}
	}

	sum := service.Summarize(items)
	ev := logger.Info().Int("total", sum.Total).Int("malformed", sum.Malformed)
	for _, st := range model.Statuses {
		ev = ev.Int(string(st), sum.ByStatus[st])
	}
	ev.Msg("resolve summary")
	return runErr
}

// флаг важнее конфига; --no-checkpoint отключает оба
func checkpointPath(f resolveFlags) string {
	switch {
	case f.noCheckpoint:
		return ""
	case f.checkpoint != "":
		return f.checkpoint
	}
	return cfg.CheckpointDB
}

func writeOutput(path string, rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	if path == "" {
		return fileio.WriteJSON(os.Stdout, rows)
	}
	return writeFile(path, func(buf *bytes.Buffer) error { return fileio.WriteJSON(buf, rows) })
}

func writeReport(path string, rows []model.NonMatch) error {
	if rows == nil {
		rows = []model.NonMatch{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeFile(path, func(buf *bytes.Buffer) error { return fileio.WriteNonMatchesXLSX(buf, rows) })
	case ".json":
		return writeFile(path, func(buf *bytes.Buffer) error { return fileio.WriteJSON(buf, rows) })
	default:
		return fmt.Errorf("report must be .json or .xlsx: %s", path)
	}
}

// пишем целиком во временный файл и переименовываем
func writeFile(path string, fill func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("bytes", buf.Len()).Msg("written")
	return nil
}
