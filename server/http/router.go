package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shade-resolver/internal/config"
	"shade-resolver/internal/middleware"
	resHnd "shade-resolver/internal/resolve/handler"
	"shade-resolver/internal/resolve/service"
	"shade-resolver/server/http/handlers"
)

func NewRouter(cfg config.Config, live *service.Live, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) << 20))

	r.Get("/health", handlers.Health(live))

	r.Route("/catalogue", func(r chi.Router) {
		r.Get("/", resHnd.Catalogue(live, cfg))
		r.Post("/reload", resHnd.Reload(live, cfg, logger))
	})

	r.Post("/resolve", resHnd.Resolve(live, cfg, logger))
	r.Post("/resolve/file", resHnd.ResolveFile(live, cfg, logger))

	return r
}
