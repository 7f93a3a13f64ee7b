// Package user reads the caller's identity from the JWT placed in the fiber
// context by the auth middleware.
package user

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`. Numeric and string ids are both accepted.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case string:
		if v == "" {
			return "", fiber.ErrUnauthorized
		}
		return v, nil
	}
	return "", fiber.ErrUnauthorized
}

// BearerToken returns the raw token the caller authenticated with, so it can
// be forwarded to the storefront API.
func BearerToken(c *fiber.Ctx) string {
	if tok, ok := c.Locals("user").(*jwt.Token); ok && tok != nil && tok.Raw != "" {
		return tok.Raw
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// TokenExpired reports whether raw carries an exp claim that has passed at
// now. Tokens that cannot be read are not treated as expired; the backend
// has the final say on those.
func TokenExpired(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}
