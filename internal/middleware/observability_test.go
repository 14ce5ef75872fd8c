package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-plagiarism-api/internal/observability"
)

func TestObservabilityLogsAPIRequests(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(Observability(zerolog.New(&buf)))
	app.Get("/api/probe/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "missing")
	})
	app.Get("/metrics-like", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	before := testutil.ToFloat64(observability.HTTPErrors().WithLabelValues(http.MethodGet, "/api/probe/:id", "404"))

	req := httptest.NewRequest(http.MethodGet, "/api/probe/7", nil)
	req.Header.Set("X-Correlation-ID", "corr-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "/api/probe/:id", entry["route"])
	require.Equal(t, float64(404), entry["status"])
	require.Equal(t, "corr-1", entry["correlation_id"])

	after := testutil.ToFloat64(observability.HTTPErrors().WithLabelValues(http.MethodGet, "/api/probe/:id", "404"))
	require.Equal(t, before+1, after)

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics-like", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Zero(t, buf.Len())
}

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=500ms", latencyBucket(300*time.Millisecond))
	require.Equal(t, ">2s", latencyBucket(3*time.Second))
}
