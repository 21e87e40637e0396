package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options controls how much demo data Run creates.
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	Password        string
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:           8,
		Groups:          3,
		PostsPerUser:    12,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		Password:        "inkwell-demo",
	}
}

// Run populates the database with users, groups, posts, comments and a
// follow mesh. Every seeded user shares the same password so demo logins
// are easy.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		group, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("seeding group: %w", err)
		}
		groups = append(groups, group)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser(opts.Password)
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}

	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			// Roughly a third of posts stay groupless.
			var group *models.Group
			if len(groups) > 0 && f.rng.Intn(3) > 0 {
				group = groups[f.rng.Intn(len(groups))]
			}
			post, err := f.CreatePost(user, group)
			if err != nil {
				return fmt.Errorf("seeding post: %w", err)
			}
			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[f.rng.Intn(len(users))]
				if _, err := f.CreateComment(post, commenter); err != nil {
					return fmt.Errorf("seeding comment: %w", err)
				}
			}
		}
	}

	for _, user := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			author := users[f.rng.Intn(len(users))]
			if err := f.CreateFollow(user, author); err != nil {
				return fmt.Errorf("seeding follow: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d groups, ~%d posts",
		len(users), len(groups), len(users)*opts.PostsPerUser)
	return nil
}
