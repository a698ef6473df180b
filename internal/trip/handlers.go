package trip

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, m *Manager, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/sessions", func(c *fiber.Ctx) error {
		var body struct {
			Mode     string `json:"mode"`
			Simulate bool   `json:"simulate"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := m.Start(userID(c), mode, body.Simulate)
		if err != nil {
			return flowError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		return c.JSON(s.Snapshot())
	})

	r.Post("/sessions/:id/mode", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		var body struct {
			Mode     string `json:"mode"`
			Simulate bool   `json:"simulate"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := s.SelectMode(mode, body.Simulate)
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/capture", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		var body struct {
			Image string `json:"image"`
		}
		if err := c.BodyParser(&body); err != nil || body.Image == "" {
			return fiber.NewError(fiber.StatusBadRequest, "image required")
		}
		verdict, snap, err := s.Capture(c.Context(), body.Image)
		if err != nil {
			return flowError(err)
		}
		return c.JSON(fiber.Map{"verdict": verdict, "session": snap})
	})

	r.Post("/sessions/:id/riders", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		var body struct {
			Name string `json:"name"`
		}
		_ = c.BodyParser(&body)
		snap, err := s.JoinRider(body.Name)
		if err != nil {
			return flowError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Post("/sessions/:id/code", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.RegenerateCode()
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/launch", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.Launch()
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/samples", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		var sample Sample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := s.PushSample(sample)
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/pause", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.Pause()
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/resume", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.Resume()
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/stop", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.Stop(c.Context())
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/reset", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		snap, err := s.Reset()
		if err != nil {
			return flowError(err)
		}
		return c.JSON(snap)
	})

	r.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		s, err := ownedSession(c, m)
		if err != nil {
			return err
		}
		m.Remove(s.ID)
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/plausibility", func(c *fiber.Ctx) error {
		var body struct {
			Mode        string  `json:"mode"`
			DistanceKm  float64 `json:"distance_km"`
			DurationSec int64   `json:"duration_sec"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		possible := m.CheckPlausibility(c.Context(), mode, body.DistanceKm, body.DurationSec)
		return c.JSON(fiber.Map{"possible": possible})
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func ownedSession(c *fiber.Ctx, m *Manager) (*Session, error) {
	s, ok := m.Get(c.Params("id"))
	if !ok || s.UserID != userID(c) {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return s, nil
}

func flowError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrVerificationPending), errors.Is(err, ErrLobbyNotReady):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrLobbyFull), errors.Is(err, ErrRiderExists):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
