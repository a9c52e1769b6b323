package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func correlationTestApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c))
	})
	return app
}

func TestCorrelationIDGeneratesWhenAbsent(t *testing.T) {
	app := correlationTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(CorrelationHeader))
}

func TestCorrelationIDEchoesClientValue(t *testing.T) {
	app := correlationTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "submission-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "submission-42", resp.Header.Get(CorrelationHeader))

	body := readAll(t, resp)
	require.Equal(t, "submission-42", body)
}

func TestCorrelationIDHonoursRequestIDFallback(t *testing.T) {
	app := correlationTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-7", resp.Header.Get(CorrelationHeader))
}
