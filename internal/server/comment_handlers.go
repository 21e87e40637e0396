package server

import (
	"fmt"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// commentForm carries the submitted comment text and per-field errors.
type commentForm struct {
	Text   string            `json:"text"`
	Errors map[string]string `json:"errors"`
}

// AddComment attaches a comment to an existing post and returns to the
// post's detail view. An empty comment re-renders the form and stores
// nothing.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return s.NotFound(c)
	}

	post, err := s.postRepo.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	form := commentForm{
		Text:   strings.TrimSpace(c.FormValue("text")),
		Errors: map[string]string{},
	}
	if form.Text == "" {
		form.Errors["text"] = "This field is required."
		return c.JSON(fiber.Map{"comment_form": form})
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     form.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect(fmt.Sprintf("/posts/%d", post.ID), fiber.StatusFound)
}
