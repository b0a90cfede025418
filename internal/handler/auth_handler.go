package handler

import (
	"strings"

	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles staff authentication
// POST /api/v1/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	response, err := h.authService.LoginStaff(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

// LoginPelanggan handles customer authentication
// POST /api/v1/auth/pelanggan
func (h *AuthHandler) LoginPelanggan(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	response, err := h.authService.LoginPelanggan(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

// Validate echoes the principal of a valid token
// GET /api/v1/auth/validate
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))
	response, err := h.authService.ValidateToken(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"valid": true, "user": response})
}

// ResetPassword handles password change of the logged-in staff
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), actorFrom(c), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
