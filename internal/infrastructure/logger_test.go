package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automlcli/internal/config"
)

// newFileLogger initializes the global logger against a temp log file
// and returns the file path.
func newFileLogger(t *testing.T, level string) (*slog.Logger, string) {
	t.Helper()
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logFile := filepath.Join(t.TempDir(), "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    level,
		Format:   "json",
		Output:   "both",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	return logger, logFile
}

// lastLogEntry closes the log file and parses its final line.
func lastLogEntry(t *testing.T, logFile string) map[string]interface{} {
	t.Helper()
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLoggerWritesJSON(t *testing.T) {
	logger, logFile := newFileLogger(t, "info")

	_, err := os.Stat(logFile)
	require.NoError(t, err, "log file should exist after initialization")

	logger.Info("test message", "key", "value")

	entry := lastLogEntry(t, logFile)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLoggerInjectsTraceID(t *testing.T) {
	_, logFile := newFileLogger(t, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	LoggerWithContext(ctx).InfoContext(ctx, "test with trace")

	entry := lastLogEntry(t, logFile)
	assert.Equal(t, "test-trace-123", entry["trace_id"])
}

func TestLogLevels(t *testing.T) {
	levels := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
	}

	for level, want := range levels {
		t.Run(level, func(t *testing.T) {
			logger, logFile := newFileLogger(t, level)

			switch level {
			case "debug":
				logger.Debug("leveled message")
			case "info":
				logger.Info("leveled message")
			case "warn":
				logger.Warn("leveled message")
			case "error":
				logger.Error("leveled message")
			}

			entry := lastLogEntry(t, logFile)
			assert.Equal(t, want, entry["level"])
		})
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	newFileLogger(t, "info")

	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)

	// Ensure must not replace an existing id.
	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))

	// Ensure must mint one when missing.
	assert.NotEmpty(t, GetTraceID(EnsureTraceID(context.Background())))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	globalLogger = logger

	decode := func() map[string]interface{} {
		t.Helper()
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		return entry
	}

	WithComponent(logger, "test-component").Info("component message")
	assert.Equal(t, "test-component", decode()["component"])

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error message")
	assert.Contains(t, decode()["error"], "file does not exist")

	buf.Reset()
	WithFields(logger, map[string]interface{}{
		"dataset_id": "d1",
		"action":     "upload",
	}).Info("fields message")
	entry := decode()
	assert.Equal(t, "d1", entry["dataset_id"])
	assert.Equal(t, "upload", entry["action"])
}
