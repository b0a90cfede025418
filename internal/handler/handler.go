package handler

import (
	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/middleware"
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

// actorFrom membaca principal yang diisi RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	name, _ := c.Locals(middleware.LocalUserName).(string)
	role, _ := c.Locals(middleware.LocalUserRole).(string)
	return service.Actor{ID: id, Name: name, Role: role}
}

func kodePelangganFrom(c *fiber.Ctx) string {
	kode, _ := c.Locals(middleware.LocalKodePelanggan).(string)
	return kode
}

func respondError(c *fiber.Ctx, err error) error {
	e := apperror.From(err)
	return c.Status(e.HTTPStatus()).JSON(e.Body())
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid JSON")
	}
	return nil
}

// ErrorHandler renders errors that escape handlers (unknown route, panics
// recovered by fiber) in the same JSON shape as domain errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "error": fe.Message})
	}
	return respondError(c, err)
}
