package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/middlewares"
)

const testSecret = "rahasia-test"

type fakeGuard struct {
	black    map[string]bool
	inactive map[string]bool
}

func (f fakeGuard) IsBlacklisted(_ context.Context, tok string) (bool, error) {
	return f.black[tok], nil
}

func (f fakeGuard) IsUserActive(_ context.Context, id string) (bool, error) {
	return !f.inactive[id], nil
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newApp(g Guard) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(AuthJWT(AuthJWTOpts{Secret: testSecret, Guard: g, AllowCookieFallback: true}))
	app.Get("/admin", OnlyRoles("khusus admin", "admin"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocUserID).(string))
	})
	app.Get("/any", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocRole).(string))
	})
	return app
}

func doReq(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthJWT(t *testing.T) {
	uid := uuid.NewString()
	inactiveID := uuid.NewString()
	good := sign(t, jwt.MapClaims{"id": uid, "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	siswa := sign(t, jwt.MapClaims{"id": uid, "role": "calon_siswa", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, jwt.MapClaims{"id": uid, "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()})
	withinLeeway := sign(t, jwt.MapClaims{"id": uid, "role": "admin", "exp": time.Now().Add(-10 * time.Second).Unix()})
	noID := sign(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	inactive := sign(t, jwt.MapClaims{"id": inactiveID, "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	black := sign(t, jwt.MapClaims{"id": uid, "role": "admin", "exp": time.Now().Add(2 * time.Hour).Unix()})

	app := newApp(fakeGuard{
		black:    map[string]bool{black: true},
		inactive: map[string]bool{inactiveID: true},
	})

	assert.Equal(t, 200, doReq(t, app, "/admin", good))
	assert.Equal(t, 200, doReq(t, app, "/admin", withinLeeway))
	assert.Equal(t, 403, doReq(t, app, "/admin", siswa))
	assert.Equal(t, 200, doReq(t, app, "/any", siswa))
	assert.Equal(t, 401, doReq(t, app, "/admin", expired))
	assert.Equal(t, 401, doReq(t, app, "/admin", noID))
	assert.Equal(t, 401, doReq(t, app, "/admin", black))
	assert.Equal(t, 403, doReq(t, app, "/admin", inactive))
	assert.Equal(t, 401, doReq(t, app, "/admin", ""))
	assert.Equal(t, 401, doReq(t, app, "/admin", "garbage"))
}

func TestAuthJWTCookieFallback(t *testing.T) {
	app := newApp(nil)
	tok := sign(t, jwt.MapClaims{"id": uuid.NewString(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Cookie", "access_token="+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthJWTRejectsOtherAlgorithms(t *testing.T) {
	app := newApp(nil)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": uuid.NewString(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Equal(t, 401, doReq(t, app, "/admin", tok))
}
