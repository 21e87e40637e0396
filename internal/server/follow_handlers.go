package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowAuthor creates a follow edge from the requesting user to the named
// author and returns to the author's profile. Following yourself or someone
// you already follow is a silent no-op; the uniqueness constraint on the
// edge is the backstop against concurrent duplicates.
func (s *Server) FollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if author.ID != userID {
		if err := s.followRepo.Follow(ctx, userID, author.ID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.Redirect("/profile/"+author.Username, fiber.StatusFound)
}

// UnfollowAuthor removes the follow edge to the named author. Unlike
// FollowAuthor this is strict: unfollowing someone you do not follow is a
// not-found condition, not a no-op.
func (s *Server) UnfollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.followRepo.Unfollow(ctx, userID, author.ID); err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+author.Username, fiber.StatusFound)
}
