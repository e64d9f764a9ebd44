package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"wings-inventory/internal/middleware"
	"wings-inventory/internal/model"
	"wings-inventory/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	secure      bool
}

func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secure: secureCookies}
}

// CredentialsRequest represents the sign-in and sign-up request body
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string         `json:"token,omitempty"`
	Session *model.Session `json:"session"`
	Screen  string         `json:"redirect"`
}

// SignUp creates an account and signs it in
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sess, err := h.authService.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return h.started(c, fiber.StatusCreated, sess)
}

// SignIn handles user authentication
// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	sess, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return h.started(c, fiber.StatusOK, sess)
}

// SignOut always ends in the signed-out state; failures are only logged.
// POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	token, err := middleware.TokenFrom(c)
	if err == nil && token != "" {
		err = h.authService.SignOut(c.UserContext(), token)
	}
	if err != nil {
		zap.L().Info("sign out", zap.Error(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Signed out", "redirect": "/"})
}

// Session returns the current session
// GET /api/v1/auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess := middleware.Session(c)
	if sess == nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{"authenticated": true, "session": sess})
}

func (h *AuthHandler) started(c *fiber.Ctx, status int, sess *model.Session) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	token := sess.Token
	out := *sess
	out.Token = ""
	return c.Status(status).JSON(sessionResponse{Token: token, Session: &out, Screen: "/"})
}
