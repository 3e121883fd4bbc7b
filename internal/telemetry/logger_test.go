package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock handler to inspect log records
type mockHandler struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	group   string
	enabled bool
}

func (h *mockHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.enabled
}

func (h *mockHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *mockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	newHandler := &mockHandler{enabled: h.enabled, group: h.group}
	newHandler.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return newHandler
}

func (h *mockHandler) WithGroup(name string) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	newHandler := &mockHandler{enabled: h.enabled, attrs: h.attrs, group: name}
	if h.group != "" {
		newHandler.group = h.group + "." + name
	}
	return newHandler
}

func (h *mockHandler) getRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records
}

func TestMultiHandler(t *testing.T) {
	h1 := &mockHandler{enabled: true}
	h2 := &mockHandler{enabled: true}

	multi := &multiHandler{handlers: []slog.Handler{h1, h2}}

	t.Run("Handle", func(t *testing.T) {
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
		err := multi.Handle(context.Background(), record)
		assert.NoError(t, err)
		assert.Len(t, h1.getRecords(), 1)
		assert.Len(t, h2.getRecords(), 1)
		assert.Equal(t, "test message", h1.getRecords()[0].Message)
	})

	t.Run("Handle skips disabled handlers", func(t *testing.T) {
		h2.enabled = false
		defer func() { h2.enabled = true }()

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "only first", 0)
		require.NoError(t, multi.Handle(context.Background(), record))
		assert.Len(t, h1.getRecords(), 2)
		assert.Len(t, h2.getRecords(), 1)
	})

	t.Run("Enabled", func(t *testing.T) {
		assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))

		h1.enabled = false
		h2.enabled = false
		assert.False(t, multi.Enabled(context.Background(), slog.LevelInfo))
		h1.enabled = true
		h2.enabled = true
	})

	t.Run("WithAttrs", func(t *testing.T) {
		attrs := []slog.Attr{slog.String("key", "value")}
		handlerWithAttrs := multi.WithAttrs(attrs)

		newMulti, ok := handlerWithAttrs.(*multiHandler)
		require.True(t, ok, "WithAttrs should return a *multiHandler")

		for _, h := range newMulti.handlers {
			mockH, ok := h.(*mockHandler)
			require.True(t, ok)
			assert.Equal(t, attrs, mockH.attrs)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		handlerWithGroup := multi.WithGroup("pipeline")

		newMulti, ok := handlerWithGroup.(*multiHandler)
		require.True(t, ok, "WithGroup should return a *multiHandler")

		for _, h := range newMulti.handlers {
			mockH, ok := h.(*mockHandler)
			require.True(t, ok)
			assert.Equal(t, "pipeline", mockH.group)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Default level hides debug and info", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer := NewLogger(&buf, LoggerOptions{})
		defer closer()

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		assert.NotContains(t, buf.String(), "debug message")
		assert.NotContains(t, buf.String(), "info message")
		assert.Contains(t, buf.String(), "warn message")
	})

	t.Run("Debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer := NewLogger(&buf, LoggerOptions{Debug: true})
		defer closer()

		logger.Debug("debug message")
		assert.Contains(t, buf.String(), "debug message")
	})

	t.Run("JSON format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer := NewLogger(&buf, LoggerOptions{Format: "json"})
		defer closer()

		logger.Warn("structured", "path", "out.json")

		var logOutput map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logOutput))
		assert.Equal(t, "structured", logOutput["msg"])
		assert.Equal(t, "WARN", logOutput["level"])
		assert.Equal(t, "out.json", logOutput["path"])
	})

	t.Run("File logging", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "benchtrim.log")

		var buf bytes.Buffer
		logger, closer := NewLogger(&buf, LoggerOptions{File: path})
		logger.Warn("file message")
		require.NoError(t, closer())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "file message")
		assert.Contains(t, buf.String(), "file message")
	})

	t.Run("No handlers", func(t *testing.T) {
		logger, closer := NewLogger(nil, LoggerOptions{})
		defer closer()
		assert.NotNil(t, logger)
		logger.Error("this goes to dev/null")
	})
}

func TestNewLogger_FileError(t *testing.T) {
	// Save original logger and restore it after the test
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	invalidPath := filepath.Join(t.TempDir(), "nonexistent", "test.log")
	logger, closer := NewLogger(nil, LoggerOptions{File: invalidPath})
	defer closer()
	assert.NotNil(t, logger)

	output := buf.String()
	assert.True(t, strings.Contains(output, "Failed to open log file"), "Expected log file error message, got: "+output)
}

func TestInitLogger(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	var buf bytes.Buffer
	closer := InitLogger(&buf, LoggerOptions{Debug: true})
	defer closer()

	LogDebugf("loaded %d results", 2)
	LogWarn("extra arguments ignored", "count", 1)
	LogError("write failed", os.ErrPermission)

	out := buf.String()
	assert.Contains(t, out, "loaded 2 results")
	assert.Contains(t, out, "extra arguments ignored")
	assert.Contains(t, out, "permission denied")
}
