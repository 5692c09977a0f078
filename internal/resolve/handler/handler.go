package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"shade-resolver/internal/config"
	"shade-resolver/internal/fileio"
	"shade-resolver/internal/resolve/model"
	"shade-resolver/internal/resolve/service"
	"shade-resolver/internal/utils"
)

type resolveRequest struct {
	Records   []map[string]any `json:"records"`
	Threshold *float64         `json:"threshold,omitempty"`
}

type resolveResponse struct {
	Threshold  float64          `json:"threshold"`
	Summary    model.Summary    `json:"summary"`
	Items      []map[string]any `json:"items"`
	NonMatches []model.NonMatch `json:"nonMatches"`
}

// Resolve: POST /resolve с JSON {"records":[...], "threshold": 60}.
func Resolve(live *service.Live, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)

		eng, err := live.Load()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}

		var req resolveRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad json: %w", err))
			return
		}
		if req.Threshold != nil {
			if !validThreshold(*req.Threshold) {
				writeError(w, http.StatusBadRequest, fmt.Errorf("threshold must be in [0,100]"))
				return
			}
			eng = eng.WithThreshold(*req.Threshold)
		}

		run(w, r, eng, req.Records, cfg, log)
	}
}

// ResolveFile: POST /resolve/file, multipart с полем file (csv/xls/xlsx/json),
// опционально threshold и header_row.
func ResolveFile(live *service.Live, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)

		eng, err := live.Load()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad multipart form: %w", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
			return
		}
		defer file.Close()

		if v := r.FormValue("threshold"); v != "" {
			t, ok := utils.ParseFloat(v)
			if !ok || !validThreshold(t) {
				writeError(w, http.StatusBadRequest, fmt.Errorf("threshold must be a number in [0,100], got %q", v))
				return
			}
			eng = eng.WithThreshold(t)
		}

		rows, err := fileio.ReadRecords(file, header.Filename, atoi(r.FormValue("header_row"), 1))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		log.Debug().Str("file", header.Filename).Int("rows", len(rows)).Msg("records uploaded")

		run(w, r, eng, rows, cfg, log)
	}
}

func run(w http.ResponseWriter, r *http.Request, eng *service.Engine, rows []map[string]any, cfg config.Config, log zerolog.Logger) {
	start := time.Now()
	items, err := service.ResolveBatch(r.Context(), eng, rows, service.BatchOptions{
		Workers: cfg.Workers,
		Logger:  log,
	})
	if err != nil {
		// клиент ушёл: отвечать некому
		log.Warn().Err(err).Int("done", len(items)).Int("rows", len(rows)).Msg("resolve cancelled")
		return
	}

	resp := resolveResponse{
		Threshold:  eng.Options().Threshold,
		Summary:    service.Summarize(items),
		Items:      make([]map[string]any, 0, len(items)),
		NonMatches: service.NonMatches(items),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, it.Output())
	}
	writeJSON(w, http.StatusOK, resp)

	log.Info().
		Int("rows", len(rows)).
		Int("malformed", resp.Summary.Malformed).
		Interface("by_status", resp.Summary.ByStatus).
		Dur("elapsed", time.Since(start)).
		Msg("resolve done")
}

type catalogueInfo struct {
	Path       string              `json:"path"`
	Stats      service.Stats       `json:"stats"`
	Collisions []service.Collision `json:"collisions"`
	Options    model.Options       `json:"options"`
}

// Catalogue: GET /catalogue: статистика живого индекса.
func Catalogue(live *service.Live, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng, err := live.Load()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, catalogueInfo{
			Path:       cfg.CataloguePath,
			Stats:      eng.Index().Stats(),
			Collisions: eng.Index().Collisions(),
			Options:    eng.Options(),
		})
	}
}

// Reload: POST /catalogue/reload: перечитать каталог и атомарно подменить
// индекс. При ошибке остаётся прежний.
func Reload(live *service.Live, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		eng, err := service.LoadEngine(cfg.CataloguePath, cfg.Options(), log)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.CataloguePath).Msg("catalogue reload failed, keeping previous")
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrMalformedCatalogue) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err)
			return
		}
		live.Swap(eng)
		writeJSON(w, http.StatusOK, catalogueInfo{
			Path:       cfg.CataloguePath,
			Stats:      eng.Index().Stats(),
			Collisions: eng.Index().Collisions(),
			Options:    eng.Options(),
		})
	}
}
