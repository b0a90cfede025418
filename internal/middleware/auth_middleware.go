package middleware

import (
	"crypto/subtle"
	"strings"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys yang diisi RequireAuth.
const (
	LocalUserID        = "user_id"
	LocalUserName      = "user_name"
	LocalUserRole      = "user_role"
	LocalKodePelanggan = "kode_pelanggan"
)

func abort(c *fiber.Ctx, e *apperror.Error) error {
	return c.Status(e.HTTPStatus()).JSON(e.Body())
}

// RequireAuth is middleware that validates JWT token and sets the principal in context.
// Token diverifikasi ulang setiap request, tanpa state sesi.
func RequireAuth(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return abort(c, apperror.Unauthorized("Missing authorization token"))
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return abort(c, apperror.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
		}
		return authenticate(c, tokens, token)
	}
}

// RequireWSAuth sama dengan RequireAuth untuk upgrade websocket.
// Browser tidak bisa mengirim header, jadi token boleh lewat query ?token=.
func RequireWSAuth(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			token, ok := bearerToken(authHeader)
			if !ok {
				return abort(c, apperror.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			}
			return authenticate(c, tokens, token)
		}

		token := c.Query("token")
		if token == "" {
			return abort(c, apperror.Unauthorized("Missing authorization token"))
		}
		return authenticate(c, tokens, token)
	}
}

// RequireStaticToken melindungi endpoint operasional (scrape /metrics) dengan
// token tetap dari konfigurasi. Token kosong berarti endpoint dimatikan.
func RequireStaticToken(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return c.SendStatus(fiber.StatusNotFound)
		}
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			return abort(c, apperror.Unauthorized("Invalid or missing token"))
		}
		return c.Next()
	}
}

// Extract token from "Bearer <token>"
func bearerToken(authHeader string) (string, bool) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

func authenticate(c *fiber.Ctx, tokens *jwt.Manager, token string) error {
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return abort(c, apperror.Unauthorized("Invalid or expired token"))
	}
	if _, ok := model.RoleByCode(claims.Role); !ok {
		return abort(c, apperror.Unauthorized("Unknown role"))
	}

	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalUserName, claims.Name)
	c.Locals(LocalUserRole, claims.Role)
	c.Locals(LocalKodePelanggan, claims.KodePelanggan)

	return c.Next()
}

// RequirePrivilege checks the caller's role against the capability policy.
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		if role == "" {
			return abort(c, apperror.Unauthorized("Unauthorized"))
		}
		if model.RoleHasPrivilege(role, requiredPrivilege) {
			return c.Next()
		}
		return abort(c, apperror.Forbidden("Forbidden: requires '"+requiredPrivilege+"' privilege"))
	}
}

// RequireAnyPrivilege checks if the role has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		if role == "" {
			return abort(c, apperror.Unauthorized("Unauthorized"))
		}
		for _, p := range requiredPrivileges {
			if model.RoleHasPrivilege(role, p) {
				return c.Next()
			}
		}
		return abort(c, apperror.Forbidden("Forbidden: requires one of "+strings.Join(requiredPrivileges, ", ")+" privileges"))
	}
}
