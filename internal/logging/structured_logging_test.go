package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStructuredLogger(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		logger.Info("test message", slog.String("provider", "RealTimeTrains"))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"test message"`)
		assert.Contains(t, output, `"provider":"RealTimeTrains"`)
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewTextLogger(&buf, slog.LevelWarn)

		logger.Info("info message")
		logger.Warn("warning message")

		output := buf.String()
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warning message")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerHelpers(t *testing.T) {
	t.Run("LogError", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogError(logger, "all providers failed", assert.AnError, slog.String("stage", "departures"))

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"stage":"departures"`)
		assert.Contains(t, output, assert.AnError.Error())
	})

	t.Run("LogOperation skips zero durations", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogOperation(logger, "journey", slog.Duration("duration", 0), slog.Int("departures", 3))
		assert.NotContains(t, buf.String(), `"duration"`)
		assert.Contains(t, buf.String(), `"departures":3`)

		buf.Reset()
		LogOperation(logger, "journey", slog.Duration("duration", time.Second))
		assert.Contains(t, buf.String(), `"duration"`)
	})

	t.Run("nil logger is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogError(nil, "x", assert.AnError)
			LogOperation(nil, "x")
		})
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx, nil))
	assert.Same(t, slog.Default(), FromContext(context.Background(), nil))

	fallback := NewTextLogger(&buf, slog.LevelWarn)
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.Same(t, logger, FromContext(ctx, fallback))
}
