package handlers

import (
	"football-analysis/middleware"
	"football-analysis/services"

	"github.com/gofiber/fiber/v2"
)

func currentAuthor(c *fiber.Ctx) services.Author {
	id, name := middleware.CurrentUser(c)
	return services.Author{ID: id, Name: name}
}

func SetupPostRoutes(app *fiber.App, postService *services.PostService, contentService *services.ContentService) {
	app.Get("/posts", func(c *fiber.Ctx) error {
		page, err := postService.List(c.UserContext(), services.PostQuery{
			Category: c.Query("category"),
			Tag:      c.Query("tag"),
			Search:   c.Query("search"),
			Page:     c.QueryInt("page", 1),
			Size:     c.QueryInt("size", services.DefaultPageSize),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	})

	app.Get("/posts/popular", func(c *fiber.Ctx) error {
		posts, err := postService.Popular(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	})

	app.Get("/posts/recent", func(c *fiber.Ctx) error {
		posts, err := postService.Recent(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	})

	app.Get("/posts/:slug", func(c *fiber.Ctx) error {
		post, err := postService.View(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(post)
	})

	app.Post("/posts/:slug/like", func(c *fiber.Ctx) error {
		likes, err := postService.Like(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"likes": likes})
	})

	app.Get("/posts/:slug/comments", func(c *fiber.Ctx) error {
		comments, err := contentService.Comments(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(comments)
	})

	app.Post("/posts/:slug/comments", func(c *fiber.Ctx) error {
		var in services.CommentInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		comment, err := contentService.AddComment(c.UserContext(), c.Params("slug"), in)
		if err != nil {
			return respondError(c, err)
		}
		// held for moderation until an admin approves it
		return c.Status(fiber.StatusAccepted).JSON(comment)
	})

	// 🔐 author routes, identity forwarded by the gateway
	app.Post("/posts", middleware.RequireUser(), func(c *fiber.Ctx) error {
		var in services.PostInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		post, err := postService.Create(c.UserContext(), currentAuthor(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	app.Put("/posts/:slug", middleware.RequireUser(), func(c *fiber.Ctx) error {
		var in services.PostInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		post, err := postService.Update(c.UserContext(), currentAuthor(c), c.Params("slug"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(post)
	})

	app.Post("/posts/:slug/image", middleware.RequireUser(), func(c *fiber.Ctx) error {
		fh, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "image file is required",
				"cause": err.Error(),
			})
		}
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err)
		}
		defer f.Close()

		post, err := postService.AttachImage(c.UserContext(), currentAuthor(c), c.Params("slug"),
			fh.Filename, fh.Header.Get("Content-Type"), f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(post)
	})
}
