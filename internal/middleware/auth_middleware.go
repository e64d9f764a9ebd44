package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"wings-inventory/internal/model"
	"wings-inventory/internal/service"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

const localSession = "session"

// TokenFrom extracts the session token from "Authorization: Bearer <token>" or
// the session cookie. The header wins when both are present.
func TokenFrom(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("Invalid authorization format. Use: Bearer <token>")
		}
		return parts[1], nil
	}
	return c.Cookies(SessionCookie), nil
}

// RequireAuth is middleware that resolves the session and sets user info in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := TokenFrom(c)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		sess, err := auth.CurrentSession(c.UserContext(), token)
		if errors.Is(err, service.ErrNoSession) {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired session"})
		}
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"error": "Session check failed, please try again"})
		}

		setSession(c, sess)
		return c.Next()
	}
}

// OptionalAuth resolves the session when one is present and never rejects.
func OptionalAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := TokenFrom(c)
		if err == nil && token != "" {
			if sess, err := auth.CurrentSession(c.UserContext(), token); err == nil {
				setSession(c, sess)
			}
		}
		return c.Next()
	}
}

// Session returns the session resolved for this request, or nil.
func Session(c *fiber.Ctx) *model.Session {
	sess, _ := c.Locals(localSession).(*model.Session)
	return sess
}

func setSession(c *fiber.Ctx, sess *model.Session) {
	// Set user info in context for downstream handlers
	c.Locals(localSession, sess)
	c.Locals("user_id", sess.AccountID)
	c.Locals("user_email", sess.Email)
	c.Locals("user_role", sess.Role)
	c.Locals("user_privileges", sess.Privileges)
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get privileges from context (set by RequireAuth)
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		// Check if user has the required privilege
		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
