package handlers

import (
	"errors"
	"strconv"

	"football-analysis/services"
	"football-analysis/utils"

	"github.com/gofiber/fiber/v2"
)

var log = utils.Component("handlers")

// respondError maps service errors onto HTTP statuses. Anything unknown is logged and answered
// with a 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation failed",
			"field": verr.Field,
			"cause": verr.Message,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found", "cause": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "cause": err.Error()})
	case errors.Is(err, services.ErrDuplicatePrediction),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrMatchNotSettled),
		errors.Is(err, services.ErrMatchClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "cause": err.Error()})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request body",
		"cause": err.Error(),
	})
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}
