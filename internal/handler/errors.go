package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"wings-inventory/internal/controller"
	"wings-inventory/internal/service"
	"wings-inventory/internal/store"
)

// errorStatus maps a domain error to an HTTP status and a user-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, controller.ErrIncompleteForm):
		return fiber.StatusUnprocessableEntity, controller.IncompleteFormMessage
	case errors.Is(err, controller.ErrInvalidField), errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, controller.ErrNoSuchItem):
		return fiber.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrInvalidCredential):
		return fiber.StatusUnauthorized, "Invalid credentials. Please try again."
	case errors.Is(err, service.ErrNoSession):
		return fiber.StatusUnauthorized, "Invalid or expired session"
	case errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrMemberExists),
		errors.Is(err, service.ErrLastMaster),
		errors.Is(err, controller.ErrSubmitInFlight),
		errors.Is(err, controller.ErrClosed),
		errors.Is(err, context.Canceled):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrWeakCredential),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, store.ErrValidationRejected),
		errors.Is(err, controller.ErrUnknownField),
		errors.Is(err, controller.ErrNotEditing):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrRemoteUnavailable):
		return fiber.StatusServiceUnavailable, "Service unavailable, please try again later"
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

func respondError(c *fiber.Ctx, err error) error {
	status, msg := errorStatus(err)
	if status >= 500 {
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// parseFields reads a flat JSON object and stringifies its values, so clients
// may send numbers for numeric fields.
func parseFields(c *fiber.Ctx) (map[string]string, error) {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(body))
	for k, v := range body {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		fields[k] = s
	}
	return fields, nil
}
