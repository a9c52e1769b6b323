package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRateLimitReturnsEnvelopeWhenExceeded(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit("execute", 2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(readAll(t, resp)), &payload))
	require.False(t, payload.Success)
	require.Contains(t, payload.Message, "rate limit")
}

func TestRateLimitKeysAuthenticatedUsersSeparately(t *testing.T) {
	app := fiber.New()
	user := uint(0)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user)
		return c.Next()
	})
	app.Use(RateLimit("submit", 1, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	user = 1
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A different user gets a fresh budget even from the same address.
	user = 2
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
