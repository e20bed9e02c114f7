package handlers

import (
	"time"

	"football-analysis/models"
	"football-analysis/services"
	"football-analysis/store"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, admin fiber.Router, matchService *services.MatchService, predictionService *services.PredictionService) {
	app.Get("/matches", func(c *fiber.Ctx) error {
		f := store.MatchFilter{
			Status:      models.MatchStatus(c.Query("status")),
			Competition: c.Query("competition"),
			Limit:       c.QueryInt("limit", 0),
		}
		for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
			raw := c.Query(key)
			if raw == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return respondError(c, &services.ValidationError{Field: key, Message: "must be an RFC 3339 timestamp"})
			}
			*dst = &t
		}

		matches, err := matchService.List(c.UserContext(), f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(matches)
	})

	app.Get("/matches/upcoming", func(c *fiber.Ctx) error {
		matches, err := matchService.Upcoming(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(matches)
	})

	app.Get("/matches/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		m, err := matchService.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	})

	app.Get("/matches/:id/predictions", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		preds, err := predictionService.ForMatch(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(preds)
	})

	// admin
	admin.Post("/matches", func(c *fiber.Ctx) error {
		var in services.CreateMatchInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		m, err := matchService.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	admin.Patch("/matches/:id/result", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var in services.MatchResultInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		m, summary, err := matchService.UpdateResult(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"match": m, "judged": summary})
	})

	admin.Post("/matches/:id/judge", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		summary, err := matchService.JudgeMatch(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})

	admin.Delete("/matches/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		if err := matchService.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/matches/sync", func(c *fiber.Ctx) error {
		res, err := matchService.SyncFixtures(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  "fixture sync failed",
				"cause":  err.Error(),
				"result": res,
			})
		}
		return c.JSON(res)
	})
}
