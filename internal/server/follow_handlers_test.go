package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFeedRequiresLogin(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/follow", nil))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Ffollow", resp.Header.Get("Location"))
}

func TestFollowUnfollowScenario(t *testing.T) {
	srv, app, db := setupTestServer(t, nil)

	reader := createTestUser(t, db, "reader", "password123")
	author := createTestUser(t, db, "author", "password123")
	createTestPost(t, db, author, nil, "words by author")
	cookie := sessionCookie(t, srv, reader)

	feed := func() string {
		req := httptest.NewRequest(http.MethodGet, "/follow", nil)
		req.Header.Set("Cookie", cookie)
		resp, body := doRequest(t, app, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		return body
	}

	assert.Contains(t, feed(), `"total_items":0`, "feed starts empty")

	req := formRequest(http.MethodPost, "/profile/author/follow", nil)
	req.Header.Set("Cookie", cookie)
	resp, _ := doRequest(t, app, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author", resp.Header.Get("Location"))

	assert.Contains(t, feed(), "words by author", "followed author's posts appear")

	req = formRequest(http.MethodPost, "/profile/author/unfollow", nil)
	req.Header.Set("Cookie", cookie)
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author", resp.Header.Get("Location"))

	assert.Contains(t, feed(), `"total_items":0`, "feed empties after unfollow")

	// A second unfollow has no edge to remove.
	req = formRequest(http.MethodPost, "/profile/author/unfollow", nil)
	req.Header.Set("Cookie", cookie)
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFollowIsIdempotentOverHTTP(t *testing.T) {
	srv, app, db := setupTestServer(t, nil)

	reader := createTestUser(t, db, "reader", "password123")
	createTestUser(t, db, "author", "password123")
	cookie := sessionCookie(t, srv, reader)

	for i := 0; i < 2; i++ {
		req := formRequest(http.MethodPost, "/profile/author/follow", nil)
		req.Header.Set("Cookie", cookie)
		resp, _ := doRequest(t, app, req)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	}

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSelfFollowIsSilentNoOp(t *testing.T) {
	srv, app, db := setupTestServer(t, nil)

	user := createTestUser(t, db, "narcissus", "password123")

	req := formRequest(http.MethodPost, "/profile/narcissus/follow", nil)
	req.Header.Set("Cookie", sessionCookie(t, srv, user))
	resp, _ := doRequest(t, app, req)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/narcissus", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "self-follow must never create an edge")
}

func TestFollowAnonymousRedirectsToLogin(t *testing.T) {
	_, app, db := setupTestServer(t, nil)
	createTestUser(t, db, "author", "password123")

	req := formRequest(http.MethodPost, "/profile/author/follow", nil)
	resp, _ := doRequest(t, app, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fprofile%2Fauthor%2Ffollow", resp.Header.Get("Location"))
}

func TestProfileReportsFollowingFlag(t *testing.T) {
	srv, app, db := setupTestServer(t, nil)

	reader := createTestUser(t, db, "reader", "password123")
	author := createTestUser(t, db, "author", "password123")
	require.NoError(t, db.Create(&models.Follow{UserID: reader.ID, AuthorID: author.ID}).Error)

	// Anonymous viewers are never "following".
	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/profile/author", nil))
	assert.Contains(t, body, `"following":false`)

	req := httptest.NewRequest(http.MethodGet, "/profile/author", nil)
	req.Header.Set("Cookie", sessionCookie(t, srv, reader))
	_, body = doRequest(t, app, req)
	assert.Contains(t, body, `"following":true`)
}
