package middlewares

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(time.Second))
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusConflict, "sudah ada") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("db mati") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })
	return app
}

func body(t *testing.T, app *fiber.App, path string) (int, map[string]any, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-1")
	res, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(res.Body)
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return res.StatusCode, out, res.Header.Get(fiber.HeaderXRequestID)
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()

	code, out, reqID := body(t, app, "/fiber")
	assert.Equal(t, 409, code)
	assert.Equal(t, "sudah ada", out["message"])
	assert.Equal(t, "CONFLICT", out["error_code"])
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "req-1", reqID)

	// error non-fiber tidak membocorkan pesan internal
	code, out, _ = body(t, app, "/plain")
	assert.Equal(t, 500, code)
	assert.Equal(t, "Terjadi kesalahan pada server", out["message"])
}

func TestRecoveryRendersPanicAs500(t *testing.T) {
	code, out, _ := body(t, newTestApp(), "/panic")
	assert.Equal(t, 500, code)
	assert.Equal(t, "INTERNAL_ERROR", out["error_code"])
}
