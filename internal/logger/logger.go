package logger

import (
	"log/slog"
	"os"
)

// New builds the process-wide JSON logger. Info and above only.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
