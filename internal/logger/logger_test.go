package logger_test

import (
	"bytes"
	"encoding/json/v2"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelInfo,
	})

	log.Info("order created", "order_number", "ORD-20260901-ABC123")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "order created", record["msg"])
	assert.Equal(t, "ORD-20260901-ABC123", record["order_number"])
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("ping")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestPrettyHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(h)

	log.Info("product indexed", "slug", "wireless-mouse")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "product indexed")
	assert.Contains(t, out, "slug=wireless-mouse")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	log := slog.New(h)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil)
	log := slog.New(h).With("service", "orders").WithGroup("req")

	log.Info("handled", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "service=orders")
	assert.Contains(t, out, "req.status=200")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Writer: &buf, Format: "json"})

	log.WithError(assert.AnError).Error("save failed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, assert.AnError.Error(), record["error"])
}
