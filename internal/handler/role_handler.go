package handler

import (
	"github.com/gofiber/fiber/v2"

	"wings-inventory/internal/config"
	"wings-inventory/internal/model"
	"wings-inventory/internal/theme"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(model.DefaultRoles)
}

// GetPrivileges lists all privileges
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	return c.JSON(model.DefaultPrivileges)
}

// ConfigHandler serves the public client bootstrap data.
type ConfigHandler struct {
	backend config.Backend
	themes  theme.Catalog
	active  theme.Theme
}

func NewConfigHandler(backend config.Backend, themes theme.Catalog, active theme.Theme) *ConfigHandler {
	return &ConfigHandler{backend: backend, themes: themes, active: active}
}

// GET /api/v1/config
func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"backend": h.backend, "theme": h.active})
}

// GET /api/v1/theme?name=amber
func (h *ConfigHandler) GetTheme(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.JSON(fiber.Map{"active": h.active, "available": h.themes.Keys()})
	}
	t, err := h.themes.Get(name)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(t)
}
