// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a fake identity and the given plaintext
// password (stored hashed).
func (f *Factory) CreateUser(password string, overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), f.rng.Intn(10000)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup persists a group with a slug derived from its title.
func (f *Factory) CreateGroup(overrides ...func(*models.Group)) (*models.Group, error) {
	title := gofakeit.BookTitle()
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	group := &models.Group{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", slug, f.rng.Intn(10000)),
		Description: gofakeit.Sentence(12),
	}
	for _, override := range overrides {
		override(group)
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// CreatePost persists a post for the author, optionally in a group, with a
// realistic creation time spread over the past 90 days.
func (f *Factory) CreatePost(author *models.User, group *models.Group, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
		AuthorID: author.ID,
		CreatedAt: time.Now().
			Add(-time.Duration(f.rng.Intn(90*24)) * time.Hour).
			Add(-time.Duration(f.rng.Intn(60)) * time.Minute),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the author on the post.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     gofakeit.Sentence(10),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists a follow edge; duplicate pairs are skipped.
func (f *Factory) CreateFollow(follower, author *models.User) error {
	if follower.ID == author.ID {
		return nil
	}
	var count int64
	if err := f.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", follower.ID, author.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return f.db.Create(&models.Follow{UserID: follower.ID, AuthorID: author.ID}).Error
}
