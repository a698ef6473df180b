package challenge

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes exposes the catalogue to riders and the full CRUD surface
// to admins.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, adminMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		list, err := svc.Active(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})

	admin := r.Group("/admin", authMiddleware, adminMiddleware)

	admin.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.List(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})

	admin.Post("/", func(c *fiber.Ctx) error {
		var input Challenge
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		created, err := svc.Create(c.Context(), input)
		if err != nil {
			return challengeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	admin.Put("/:id", func(c *fiber.Ctx) error {
		var input Challenge
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		updated, err := svc.Update(c.Context(), c.Params("id"), input)
		if err != nil {
			return challengeError(err)
		}
		return c.JSON(updated)
	})

	admin.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return challengeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func challengeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
