package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, secret string, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: "test-secret"})

	app := fiber.New()
	app.Use(ResolveIdentity())
	app.Get("/open", func(c *fiber.Ctx) error {
		uid, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"user_id": uid, "authenticated": ok})
	})
	app.Get("/gated", LoginRequired(), func(c *fiber.Ctx) error {
		return c.SendString("in")
	})
	return app
}

func TestResolveIdentityFromCookie(t *testing.T) {
	app := setupAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Cookie", SessionCookie+"="+testToken(t, "test-secret", 42))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolveIdentityFromBearerHeader(t *testing.T) {
	app := setupAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "test-secret", 42))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolveIdentityIgnoresBadToken(t *testing.T) {
	app := setupAuthApp(t)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", testToken(t, "other-secret", 42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Open routes still serve, just anonymously.
			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			req.Header.Set("Cookie", SessionCookie+"="+tt.token)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			// Gated routes redirect.
			req = httptest.NewRequest(http.MethodGet, "/gated", nil)
			req.Header.Set("Cookie", SessionCookie+"="+tt.token)
			resp, err = app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
		})
	}
}

func TestLoginRequiredRedirectsWithContinuation(t *testing.T) {
	app := setupAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fgated", resp.Header.Get("Location"))
}

func TestLoginRequiredEscapesContinuationQuery(t *testing.T) {
	app := setupAuthApp(t)

	// The gated URL's own query string must survive as part of the next
	// value instead of being re-parsed as login parameters.
	req := httptest.NewRequest(http.MethodGet, "/gated?page=2", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/gated?page=2", loc.Query().Get("next"))
}

func TestExpiredTokenIsAnonymous(t *testing.T) {
	app := setupAuthApp(t)

	claims := jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Cookie", SessionCookie+"="+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
