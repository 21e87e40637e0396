package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// Index handles the global feed: every post, newest first.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.Context()

	total, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := pagination.Paginate(total, c.Query("page"))
	posts, err := s.postRepo.ListAll(ctx, params.Limit, params.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"title": "Latest posts",
		"page":  pagination.NewPage(posts, total, params.Number),
	})
}

// GroupFeed handles the per-group feed, resolved by slug.
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	ctx := c.Context()

	group, err := s.groupRepo.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := pagination.Paginate(total, c.Query("page"))
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, params.Limit, params.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"page":  pagination.NewPage(posts, total, params.Number),
	})
}

// Profile handles the author feed: the user's posts plus, for an
// authenticated viewer, whether they currently follow this author.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := pagination.Paginate(total, c.Query("page"))
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, params.Limit, params.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Anonymous viewers never follow anyone.
	following := false
	if viewerID, ok := middleware.CurrentUserID(c); ok {
		following, err = s.followRepo.IsFollowing(ctx, viewerID, author.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(fiber.Map{
		"author":      author,
		"posts_count": total,
		"following":   following,
		"page":        pagination.NewPage(posts, total, params.Number),
	})
}

// FollowIndex handles the following feed: posts by every author the
// requesting user follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	total, err := s.postRepo.CountFollowed(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := pagination.Paginate(total, c.Query("page"))
	posts, err := s.postRepo.ListFollowed(ctx, userID, params.Limit, params.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"title": "Posts from authors you follow",
		"page":  pagination.NewPage(posts, total, params.Number),
	})
}
