// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie carrying the signed session token for browser flows.
const SessionCookie = "inkwell_session"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// tokenFromRequest extracts the session token from the session cookie or,
// failing that, from a Bearer Authorization header.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// parseUserID validates the token and extracts the user ID from the "sub"
// claim (subject claim per RFC 7519).
func parseUserID(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userIDVal), true
}

// ResolveIdentity resolves the requesting identity when a valid session is
// present and stores it in the request context. It never rejects: read views
// serve anonymous visitors too.
func ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFromRequest(c); token != "" {
			if userID, ok := parseUserID(token); ok {
				c.Locals("userID", userID)
			}
		}
		return c.Next()
	}
}

// LoginRequired gates mutation endpoints and the following feed. Anonymous
// requests are redirected to the login entry point with a continuation back
// to the original action, never rejected with an error status.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); !ok {
			return c.Redirect("/auth/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user ID stored by ResolveIdentity
// or LoginRequired, and whether the request is authenticated at all.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
		return uid, true
	}
	return 0, false
}
