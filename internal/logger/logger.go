// Package logger provides the structured slog logger for the daemon. All
// logs are written in JSON format to a size-rotated file, tee'd to stderr.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// NewSystemLogger creates a JSON slog.Logger that writes to
// <logDir>/hyttevakt.log with rotation, and to stderr. The directory is
// created if it does not exist.
func NewSystemLogger(logDir string, level slog.Level) (*slog.Logger, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "hyttevakt.log"),
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	handler := slog.NewJSONHandler(
		io.MultiWriter(rotated, os.Stderr),
		&slog.HandlerOptions{Level: level},
	)
	return slog.New(handler), nil
}
