package middleware

import (
	"strings"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminAuth guards the admin routes with a bearer JWT signed by a shared
// secret. With no secret configured the admin surface is disabled entirely
// rather than left open.
type AdminAuth struct {
	secret    []byte
	responses *response.BaseService
}

func NewAdminAuth(config models.AdminConfig) *AdminAuth {
	return &AdminAuth{
		secret:    []byte(config.JWTSecret),
		responses: response.NewBaseService(),
	}
}

// Enabled reports whether a signing secret is configured.
func (a *AdminAuth) Enabled() bool {
	return len(a.secret) > 0
}

// RequireAdmin validates the Authorization bearer token. Only HMAC-signed
// tokens are accepted; an RS256 token signed with a leaked public key must
// not pass.
func (a *AdminAuth) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !a.Enabled() {
			return a.responses.Error(c, fiber.StatusForbidden, "admin API is not configured", "")
		}

		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return a.responses.Error(c, fiber.StatusUnauthorized, "missing bearer token", "")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid {
			return a.responses.Error(c, fiber.StatusUnauthorized, "invalid token", "")
		}

		return c.Next()
	}
}
