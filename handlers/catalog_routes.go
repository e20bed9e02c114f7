package handlers

import (
	"football-analysis/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes wires categories, tags, teams and comment moderation.
func SetupCatalogRoutes(app *fiber.App, admin fiber.Router, contentService *services.ContentService, teamService *services.TeamService) {
	app.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := contentService.Categories(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cats)
	})

	app.Get("/tags", func(c *fiber.Ctx) error {
		tags, err := contentService.Tags(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tags)
	})

	app.Get("/teams", func(c *fiber.Ctx) error {
		teams, err := teamService.List(c.UserContext(), c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(teams)
	})

	app.Get("/teams/:slug", func(c *fiber.Ctx) error {
		team, err := teamService.Get(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(team)
	})

	admin.Post("/categories", func(c *fiber.Ctx) error {
		var in services.CategoryInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		cat, err := contentService.CreateCategory(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	admin.Post("/tags", func(c *fiber.Ctx) error {
		var in struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		tag, err := contentService.CreateTag(c.UserContext(), in.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	})

	admin.Post("/teams", func(c *fiber.Ctx) error {
		var in services.TeamInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		team, err := teamService.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})

	admin.Patch("/comments/:id/approve", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		comment, err := contentService.ApproveComment(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(comment)
	})
}
