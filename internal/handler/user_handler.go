package handler

import (
	"github.com/gofiber/fiber/v2"

	"wings-inventory/internal/middleware"
	"wings-inventory/internal/service"
)

// UserHandler manages members: role assignments of registered accounts.
type UserHandler struct {
	service service.MemberService
}

func NewUserHandler(s service.MemberService) *UserHandler {
	return &UserHandler{service: s}
}

// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	members, err := h.service.GetAllMembers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}

// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	member, err := h.service.GetMember(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	member, err := h.service.CreateMember(c.UserContext(), fields, middleware.Session(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": member})
}

// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.UpdateMember(c.UserContext(), c.Params("id"), fields, middleware.Session(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated"})
}

// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteMember(c.UserContext(), c.Params("id"), middleware.Session(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
