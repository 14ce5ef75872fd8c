package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func newCorrelationApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"local":   GetCorrelationID(c),
			"context": CorrelationIDFromContext(c.UserContext()),
		})
	})
	return app
}

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	app := newCorrelationApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))

	var body map[string]string
	decodeJSON(t, resp, &body)
	require.Equal(t, "req-123", body["local"])
	require.Equal(t, "req-123", body["context"])
}

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	app := newCorrelationApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	generated := resp.Header.Get("X-Correlation-ID")
	require.Len(t, generated, 36)

	var body map[string]string
	decodeJSON(t, resp, &body)
	require.Equal(t, generated, body["context"])
}
