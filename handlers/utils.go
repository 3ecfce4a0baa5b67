package handlers

import (
	"errors"
	"log/slog"

	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}

func message(c *fiber.Ctx, text string) error {
	return c.JSON(fiber.Map{"message": text})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  remote.Code(remote.ErrValidation),
	})
}

// respondError writes err as {error, code}. Errors without a user-facing kind
// are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var rerr *remote.Error
	if errors.As(err, &rerr) && rerr.Kind != remote.ErrServer {
		return c.Status(statusFor(rerr.Kind)).JSON(fiber.Map{
			"error": rerr.Error(),
			"code":  remote.Code(rerr.Kind),
		})
	}
	return serverErrorWithDetails(c, "internal server error", err)
}

func statusFor(kind error) int {
	switch kind {
	case remote.ErrValidation:
		return fiber.StatusBadRequest
	case remote.ErrAuthRequired:
		return fiber.StatusUnauthorized
	case remote.ErrNotFound:
		return fiber.StatusNotFound
	case remote.ErrAlreadyExists, remote.ErrReferenced:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func serverErrorWithDetails(c *fiber.Ctx, msg string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", msg,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
		"code":  remote.Code(remote.ErrServer),
	})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest(c, "invalid request body")
	}
	return nil
}
