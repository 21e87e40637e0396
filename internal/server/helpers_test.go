package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer builds a full app on an in-memory database. Redis is nil
// by default so pages render fresh on every request; cache behavior has its
// own setup.
func setupTestServer(t *testing.T, redisClient *redis.Client) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "test-secret",
		Port:      "8080",
		MediaRoot: t.TempDir(),
		Env:       "test",
	}

	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return srv, app, db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	testUserSeq++
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s%d@example.com", username, testUserSeq),
		Password: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "test group"}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: time.Now()}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// sessionCookie issues a valid session token for the user, ready to attach
// to a request as a Cookie header value.
func sessionCookie(t *testing.T, srv *Server, user *models.User) string {
	t.Helper()
	token, err := srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return middleware.SessionCookie + "=" + token
}

// formRequest builds an urlencoded form POST.
func formRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// doRequest runs the request and returns the response with its body read.
func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}
