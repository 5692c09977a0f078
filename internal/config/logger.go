package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger: человекочитаемый вывод в консоль + файл с ротацией.
// console: куда писать консольный вывод (CLI пишет в stderr, чтобы не
// мешать JSON в stdout).
func SetupLogger(cfg Config, console io.Writer) zerolog.Logger {
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
