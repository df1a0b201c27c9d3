package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/anatolykoptev/go-kit/env"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging installs the default slog logger. Logs go to stderr so stdout
// carries only the generated post; LOG_FILE adds a rotated copy on disk.
// The returned func flushes and closes the file, if any.
func setupLogging() func() {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if path := env.Str("LOG_FILE", ""); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closeFn = func() { _ = lj.Close() }
	}

	opts := &slog.HandlerOptions{Level: parseLevel(env.Str("LOG_LEVEL", "info"))}
	var h slog.Handler
	if env.Str("LOG_FORMAT", "text") == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return closeFn
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
