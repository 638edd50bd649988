// Package logging builds the structured logger used across the vault:
// human-readable text on stderr, fanned out to a JSON file alongside the
// audit log when one is configured.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// New builds a slog.Logger writing to stderr at Info (or Debug when
// verbose is true). When logFilePath is non-empty, a second JSON handler
// fans out to that file as well; failures to open it are non-fatal — the
// stderr handler alone is returned.
func New(verbose bool, logFilePath string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	if logFilePath == "" {
		return slog.New(stderrHandler)
	}

	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fallback := slog.New(stderrHandler)
		fallback.Warn("could not open log file, logging to stderr only", "path", logFilePath, "error", err)
		return fallback
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	handler := slogmulti.Fanout(stderrHandler, fileHandler)
	return slog.New(handler)
}

// NewDiscard returns a logger that drops everything, for tests that don't
// care about log output but still need a non-nil logger.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AuditLogPath derives the sibling log file path for a given audit
// database path, e.g. "/home/x/.passvault-audit.db" -> "/home/x/passvault.log".
func AuditLogPath(auditDBPath string) string {
	if auditDBPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(auditDBPath), "passvault.log")
}
