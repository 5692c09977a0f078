package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"shade-resolver/internal/config"
	"shade-resolver/internal/resolve/service"
	serverhttp "shade-resolver/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg, os.Stdout)

	// битый каталог: ошибка старта, записи не принимаем
	eng, err := service.LoadEngine(cfg.CataloguePath, cfg.Options(), logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.CataloguePath).Msg("catalogue")
	}
	live := service.NewLive(eng)

	r := serverhttp.NewRouter(cfg, live, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// SIGHUP: перечитать каталог (новый индекс, затем атомарная подмена)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-hup:
			next, err := service.LoadEngine(cfg.CataloguePath, cfg.Options(), logger)
			if err != nil {
				logger.Error().Err(err).Msg("catalogue reload failed, keeping previous")
				continue
			}
			live.Swap(next)
			logger.Info().Msg("catalogue swapped")
		case <-quit:
			logger.Info().Msg("server shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = srv.Shutdown(ctx)
			cancel()
			logger.Info().Msg("bye")
			return
		}
	}
}
