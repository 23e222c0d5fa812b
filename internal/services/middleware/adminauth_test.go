package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedApp(secret string) *fiber.App {
	auth := NewAdminAuth(models.AdminConfig{JWTSecret: secret})

	app := fiber.New()
	app.Get("/admin/ping", auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireAdminAcceptsValidToken(t *testing.T) {
	app := newAuthedApp("test-secret")
	resp := adminRequest(t, app, signToken(t, "test-secret"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdminRejectsMissingToken(t *testing.T) {
	app := newAuthedApp("test-secret")
	resp := adminRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminRejectsWrongSecret(t *testing.T) {
	app := newAuthedApp("test-secret")
	resp := adminRequest(t, app, signToken(t, "other-secret"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminRejectsExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	app := newAuthedApp("test-secret")
	resp := adminRequest(t, app, signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminDisabledWithoutSecret(t *testing.T) {
	app := newAuthedApp("")
	resp := adminRequest(t, app, signToken(t, "anything"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
