package repository

import (
	"fmt"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s%d@example.com", username, userSeq),
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "test group",
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, text string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Text:      text,
		AuthorID:  author.ID,
		CreatedAt: createdAt,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}
