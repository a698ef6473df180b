package community

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/posts", func(c *fiber.Ctx) error {
		var input Post
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		input.UserID, _ = c.Locals("user_id").(string)
		if input.UserName == "" {
			input.UserName, _ = c.Locals("user_name").(string)
		}
		post, err := svc.CreatePost(c.Context(), input)
		if err != nil {
			if isValidation(err) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Get("/feed", func(c *fiber.Ctx) error {
		var filter PostType
		if raw := c.Query("type"); raw != "" {
			parsed, err := ParsePostType(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			filter = parsed
		}
		viewerID, _ := c.Locals("user_id").(string)
		feed, err := svc.Feed(c.Context(), viewerID, filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(feed)
	})

	r.Post("/posts/:id/like", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		likes, liked, err := svc.ToggleLike(c.Context(), c.Params("id"), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"likes": likes, "liked": liked})
	})

	r.Post("/posts/:id/comments", func(c *fiber.Ctx) error {
		var body struct {
			UserName string `json:"user_name"`
			Text     string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.UserName == "" {
			body.UserName, _ = c.Locals("user_name").(string)
		}
		comment, err := svc.AddComment(c.Context(), c.Params("id"), body.UserName, body.Text)
		if err != nil {
			if isValidation(err) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})
}

func isValidation(err error) bool {
	return errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrEmptyPost) ||
		errors.Is(err, ErrEmptyComment) ||
		errors.Is(err, ErrMissingReport)
}
