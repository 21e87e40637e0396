package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPagination(t *testing.T) {
	_, app, db := setupTestServer(t, nil)

	author := createTestUser(t, db, "prolific", "password123")
	for i := 0; i < 13; i++ {
		createTestPost(t, db, author, nil, "post")
	}

	var payload struct {
		Page struct {
			Items      []json.RawMessage `json:"items"`
			Number     int               `json:"number"`
			TotalPages int               `json:"total_pages"`
			HasNext    bool              `json:"has_next"`
		} `json:"page"`
	}

	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Len(t, payload.Page.Items, 10)
	assert.Equal(t, 1, payload.Page.Number)
	assert.Equal(t, 2, payload.Page.TotalPages)
	assert.True(t, payload.Page.HasNext)

	_, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/?page=2", nil))
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Len(t, payload.Page.Items, 3, "last page holds the remainder")
	assert.False(t, payload.Page.HasNext)

	// Out-of-range and junk page values never error.
	_, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/?page=99", nil))
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, 2, payload.Page.Number)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/?page=banana", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// The index page is cached whole: a post created inside the TTL window is
// invisible until the entry expires or the cache is flushed.
func TestIndexCacheServesStalePage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	srv, app, db := setupTestServer(t, client)
	author := createTestUser(t, db, "author", "password123")

	_, before := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, before, "fresh words")

	createTestPost(t, db, author, nil, "fresh words")

	_, cached := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, before, cached, "the cached body is byte-identical despite the new post")

	mr.FastForward(cache.PageTTL + time.Second)

	_, after := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, after, "fresh words", "expiry makes the new post visible")

	// An explicit flush has the same effect as expiry.
	createTestPost(t, db, author, nil, "even fresher")
	require.NoError(t, srv.PageCache().Flush(context.Background()))
	_, flushed := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, flushed, "even fresher")
}

// Only the index route is cached; group and profile feeds always render
// fresh.
func TestGroupFeedIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, app, db := setupTestServer(t, client)
	author := createTestUser(t, db, "author", "password123")
	group := createTestGroup(t, db, "Letters", "letters")

	_, before := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/group/letters", nil))
	assert.Contains(t, before, `"total_items":0`)

	createTestPost(t, db, author, group, "straight through")

	_, after := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/group/letters", nil))
	assert.Contains(t, after, "straight through")
}

func TestHealthzReportsStatus(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"database":"healthy"`)
	assert.Contains(t, body, `"redis":"unavailable"`)
}

func TestAboutPages(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	for _, path := range []string{"/about/author", "/about/tech"} {
		resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestProfileShowsAuthorPostsOnly(t *testing.T) {
	_, app, db := setupTestServer(t, nil)

	alice := createTestUser(t, db, "alice", "password123")
	bob := createTestUser(t, db, "bob", "password123")
	createTestPost(t, db, alice, nil, "words by alice")
	createTestPost(t, db, bob, nil, "words by bob")

	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/profile/alice", nil))
	assert.Contains(t, body, "words by alice")
	assert.NotContains(t, body, "words by bob")

	var follow models.Follow
	err := db.First(&follow).Error
	assert.Error(t, err, "viewing a profile must not create follow edges")
}
