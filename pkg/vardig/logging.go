package vardig

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mabhi256/vardig/internal/config"
)

// initDebugLogging returns a JSON logger writing to the configured debug log
// file, or a discarding logger when debugging is off.
func initDebugLogging(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if !cfg.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}

	if cfg.DebugLogFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		cfg.DebugLogFile = fmt.Sprintf("vardig_debug_%s.log", timestamp)
	}

	file, err := os.OpenFile(cfg.DebugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("debug session started", "config", cfg.DebugLogFile)
	return logger, file, nil
}
