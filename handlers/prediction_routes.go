package handlers

import (
	"strconv"

	"football-analysis/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPredictionRoutes(app *fiber.App, admin fiber.Router, predictionService *services.PredictionService,
	statsService *services.StatsService, rankingService *services.RankingService) {

	app.Post("/predictions", func(c *fiber.Ctx) error {
		var in services.SubmitPredictionInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		pred, err := predictionService.Submit(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pred)
	})

	app.Get("/predictions/mine", func(c *fiber.Ctx) error {
		preds, err := predictionService.ForUser(c.UserContext(), c.Query("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(preds)
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		rows, err := statsService.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	})

	app.Get("/stats/ranking", func(c *fiber.Ctx) error {
		limit := services.DefaultRankingLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return respondError(c, &services.ValidationError{Field: "limit", Message: "must be a positive integer"})
			}
			limit = n
		}
		ranking, err := rankingService.GetRanking(c.UserContext(), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(ranking)
	})

	app.Get("/stats/:email", func(c *fiber.Ctx) error {
		st, err := statsService.Get(c.UserContext(), c.Params("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(st)
	})

	admin.Post("/stats/reconcile", func(c *fiber.Ctx) error {
		fixed, err := statsService.ReconcileAll(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":     "reconciliation incomplete",
				"cause":     err.Error(),
				"corrected": fixed,
			})
		}
		return c.JSON(fiber.Map{"corrected": fixed})
	})
}
