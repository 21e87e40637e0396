package server

import (
	"fmt"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// postForm carries the submitted field values and per-field errors for
// re-rendering after a failed validation.
type postForm struct {
	Text   string            `json:"text"`
	Group  string            `json:"group"`
	Errors map[string]string `json:"errors"`
}

// resolvePostForm validates the submitted post fields. The returned group is
// nil when no group was selected. Validation failure leaves Errors non-empty
// and must not mutate anything.
func (s *Server) resolvePostForm(c *fiber.Ctx) (*postForm, *models.Group) {
	form := &postForm{
		Text:   strings.TrimSpace(c.FormValue("text")),
		Group:  strings.TrimSpace(c.FormValue("group")),
		Errors: map[string]string{},
	}

	if form.Text == "" {
		form.Errors["text"] = "This field is required."
	}

	var group *models.Group
	if form.Group != "" {
		g, err := s.groupRepo.GetBySlug(c.Context(), form.Group)
		if err != nil {
			form.Errors["group"] = "Select a valid group."
		} else {
			group = g
		}
	}
	return form, group
}

// saveImage stores an uploaded image if one was attached. Returns the stored
// path, or "" when the form carried no image.
func (s *Server) saveImage(c *fiber.Ctx, form *postForm) string {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return ""
	}
	path, err := s.media.Save(file)
	if err != nil {
		form.Errors["image"] = "Upload a valid image."
		return ""
	}
	return path
}

// CreatePostForm renders the empty post form with the selectable groups.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"form":   postForm{Errors: map[string]string{}},
		"groups": groups,
	})
}

// CreatePost handles post submission. A valid post redirects to the author's
// profile; an invalid one re-renders the form with errors and creates nothing.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	form, group := s.resolvePostForm(c)
	imagePath := ""
	if len(form.Errors) == 0 {
		imagePath = s.saveImage(c, form)
	}
	if len(form.Errors) > 0 {
		return c.JSON(fiber.Map{"form": form})
	}

	post := &models.Post{
		Text:      form.Text,
		AuthorID:  userID,
		ImagePath: imagePath,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Redirect("/profile/"+author.Username, fiber.StatusFound)
}

// PostDetail renders a single post with its comments and comment sub-form.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return s.NotFound(c)
	}

	post, err := s.postRepo.GetDetail(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	authorTotal, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":         post,
		"posts_count":  authorTotal,
		"comment_form": commentForm{Errors: map[string]string{}},
	})
}

// EditPostForm renders the pre-filled edit form. Only the author may edit;
// anyone else is silently sent back to the post.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
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
	if post.AuthorID != userID {
		return c.Redirect(fmt.Sprintf("/posts/%d", post.ID), fiber.StatusFound)
	}

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	form := postForm{Text: post.Text, Errors: map[string]string{}}
	if post.Group != nil {
		form.Group = post.Group.Slug
	}
	return c.JSON(fiber.Map{
		"form":    form,
		"groups":  groups,
		"is_edit": true,
	})
}

// EditPost handles edit submission with the same validation as creation.
// The creation timestamp is never touched.
func (s *Server) EditPost(c *fiber.Ctx) error {
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
	if post.AuthorID != userID {
		return c.Redirect(fmt.Sprintf("/posts/%d", post.ID), fiber.StatusFound)
	}

	form, group := s.resolvePostForm(c)
	imagePath := ""
	if len(form.Errors) == 0 {
		imagePath = s.saveImage(c, form)
	}
	if len(form.Errors) > 0 {
		return c.JSON(fiber.Map{"form": form, "is_edit": true})
	}

	oldImage := ""
	post.Text = form.Text
	post.GroupID = nil
	if group != nil {
		post.GroupID = &group.ID
	}
	if imagePath != "" {
		oldImage = post.ImagePath
		post.ImagePath = imagePath
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if oldImage != "" {
		_ = s.media.Remove(oldImage)
	}

	return c.Redirect(fmt.Sprintf("/posts/%d", post.ID), fiber.StatusFound)
}
