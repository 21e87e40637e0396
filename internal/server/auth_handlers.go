package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// sessionTTL is how long an issued session stays valid.
const sessionTTL = 7 * 24 * time.Hour

// authForm carries submitted credentials and per-field errors for
// re-rendering a failed signup or login.
type authForm struct {
	Username string            `json:"username"`
	Email    string            `json:"email,omitempty"`
	Errors   map[string]string `json:"errors"`
}

// SignupForm renders the empty registration form.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"form": authForm{Errors: map[string]string{}}})
}

// Signup registers a new user, opens a session and redirects to the
// continuation target or the global feed.
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.Context()

	form := authForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Errors:   map[string]string{},
	}
	password := c.FormValue("password")

	if form.Username == "" {
		form.Errors["username"] = "This field is required."
	}
	if form.Email == "" {
		form.Errors["email"] = "This field is required."
	}
	if len(password) < 8 {
		form.Errors["password"] = "Password must be at least 8 characters."
	}

	if len(form.Errors) == 0 {
		if _, err := s.userRepo.GetByUsername(ctx, form.Username); err == nil {
			form.Errors["username"] = "This username is taken."
		} else if !models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}
	if len(form.Errors) == 0 {
		if _, err := s.userRepo.GetByEmail(ctx, form.Email); err == nil {
			form.Errors["email"] = "This email is already registered."
		} else if !models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}
	if len(form.Errors) > 0 {
		return c.JSON(fiber.Map{"form": form})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return s.openSession(c, user)
}

// LoginForm renders the empty login form.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form": authForm{Errors: map[string]string{}},
		"next": c.Query("next"),
	})
}

// Login authenticates the submitted credentials, opens a session and
// redirects to the continuation target or the global feed. A failed login
// re-renders the form without saying which field was wrong.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.Context()

	form := authForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Errors:   map[string]string{},
	}
	password := c.FormValue("password")

	user, err := s.userRepo.GetByUsername(ctx, form.Username)
	if err != nil {
		if models.IsNotFound(err) {
			form.Errors["__all__"] = "Invalid username or password."
			return c.JSON(fiber.Map{"form": form})
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		form.Errors["__all__"] = "Invalid username or password."
		return c.JSON(fiber.Map{"form": form})
	}

	return s.openSession(c, user)
}

// Logout drops the session cookie and returns to the global feed.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

// openSession issues a token, sets the session cookie and redirects to the
// `next` continuation target, falling back to the global feed.
func (s *Server) openSession(c *fiber.Ctx, user *models.User) error {
	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	if !isLocalPath(next) {
		// Only same-site continuations; anything else goes home.
		next = "/"
	}
	return c.Redirect(next, fiber.StatusFound)
}

// isLocalPath reports whether target is a same-site absolute path. A leading
// "//" or "/\" is rejected too: browsers resolve those as scheme-relative
// hosts, which would send the redirect off-site.
func isLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") {
		return false
	}
	return !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\")
}

// generateToken creates a signed session token for the given user.
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      "inkwell",
		"aud":      "inkwell-web",
		"exp":      now.Add(sessionTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
