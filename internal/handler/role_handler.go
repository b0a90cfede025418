package handler

import (
	"go-tabung-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// GetRoles returns the role -> privilege policy
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"roles":      model.DefaultRoles,
		"privileges": model.DefaultPrivileges,
	})
}
