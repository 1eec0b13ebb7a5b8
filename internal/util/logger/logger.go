package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	loggerInstance *slog.Logger
	once           sync.Once
)

// GetLogger returns the process-wide logger. Output goes to stderr so that
// stdout stays free for rendered tables.
func GetLogger() *slog.Logger {
	once.Do(func() {
		loggerInstance = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	})

	return loggerInstance
}
