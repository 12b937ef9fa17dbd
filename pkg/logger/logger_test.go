package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func TestNew_JSONWithExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(logger.StringExtractor("request_id", requestID)),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "dispatched", slog.String("controller", "Users"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "dispatched", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "Users", rec["controller"])
}

func TestNew_SkipsEmptyExtractedValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(logger.StringExtractor("request_id", requestID), nil),
	)
	log.Info("no request")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestNew_TextAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithFormat(logger.FormatText),
		logger.WithLevel(slog.LevelWarn),
	).With(slog.String("component", "router"))

	log.Info("hidden")
	log.Warn("method not allowed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="method not allowed"`)
	assert.Contains(t, out, "component=router")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewWithSentry_NoDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithSentry(logger.SentryConfig{}, logger.WithWriter(&buf))
	log.Error("boom")

	assert.Contains(t, buf.String(), `"msg":"boom"`)
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
