package tracking

import (
	"errors"

	"travelogy-engine/internal/geosource"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, tracker *Tracker, feed *geosource.Feed, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			TransportMode string `json:"transport_mode"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		trip, err := tracker.Start(c.UserContext(), req.TransportMode)
		if errors.Is(err, ErrAlreadyTracking) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		trip, err := tracker.Stop(c.UserContext())
		if errors.Is(err, ErrNotTracking) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trip)
	})

	r.Get("/status", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(tracker.Status())
	})

	r.Post("/samples", authMiddleware, func(c *fiber.Ctx) error {
		var sample geosource.Sample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		feed.Push(sample)
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/errors", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Message string `json:"message"`
		}
		if err := c.BodyParser(&body); err != nil || body.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "message required")
		}
		feed.Fail(errors.New(body.Message))
		return c.SendStatus(fiber.StatusAccepted)
	})

	// Continuous ingest: the device streams fixes as JSON frames. The
	// session id only scopes the connection; all fixes land on the one feed.
	r.Get("/feed/:sessionID", authMiddleware, websocket.New(func(c *websocket.Conn) {
		for {
			var sample geosource.Sample
			if err := c.ReadJSON(&sample); err != nil {
				break
			}
			feed.Push(sample)
		}
	}))
}
