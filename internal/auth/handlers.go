package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/otp/request", func(c *fiber.Ctx) error {
		var req struct {
			Phone string `json:"phone"`
		}
		if err := c.BodyParser(&req); err != nil || req.Phone == "" {
			return fiber.NewError(fiber.StatusBadRequest, "phone required")
		}
		code, err := svc.RequestOTP(c.Context(), req.Phone)
		if err != nil {
			if errors.Is(err, ErrInvalidPhone) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		// Prototype only: without an SMS gateway the code rides back in
		// the response so the client can show it.
		return c.JSON(fiber.Map{"sent": true, "code": code})
	})

	r.Post("/otp/verify", func(c *fiber.Ctx) error {
		var req struct {
			Phone string `json:"phone"`
			Code  string `json:"code"`
			Name  string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil || req.Phone == "" || req.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "phone and code required")
		}
		resp, err := svc.VerifyOTP(c.Context(), req.Phone, req.Code, req.Name)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidPhone):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, ErrInvalidOTP):
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(resp)
	})

	r.Post("/admin/login", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		resp, err := svc.AdminLogin(req.Email, req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(resp)
	})
}
