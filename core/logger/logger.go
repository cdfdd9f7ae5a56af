package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	instance *slog.Logger
	once     sync.Once
	level    = new(slog.LevelVar)
)

func get() *slog.Logger {
	once.Do(func() {
		instance = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	})
	return instance
}

// Init sets the minimum log level. Accepts debug, info, warn, error.
func Init(l string) {
	switch strings.ToLower(l) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func Debug(msg string, kv ...any) {
	get().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	get().Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	get().Warn(msg, kv...)
}

// Error accepts either a bare error as the first argument or regular
// key/value pairs.
func Error(msg string, args ...any) {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			args = append([]any{"error", err}, args[1:]...)
		}
	}
	get().Error(msg, args...)
}
