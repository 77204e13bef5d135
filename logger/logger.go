package logger

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/ns1-tools/ns1-sync/config"
)

func Configure(cfg config.Log) {
	level := parseLogLevel(cfg.Level)
	w := os.Stdout
	var handler slog.Handler

	if cfg.Env == "dev" || cfg.Env == "development" {
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
