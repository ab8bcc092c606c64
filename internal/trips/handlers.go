package trips

import (
	"context"
	"log"

	"travelogy-engine/internal/gamification"

	"github.com/gofiber/fiber/v2"
)

// History is the backend slice the read endpoints proxy.
type History interface {
	GetTrips(ctx context.Context) ([]gamification.Trip, error)
	GetTripStats(ctx context.Context) (gamification.Stats, error)
}

// RegisterRoutes mounts read-only trip history endpoints. The engine keeps
// no trip archive of its own; both routes proxy the backend.
func RegisterRoutes(r fiber.Router, history History, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		list, err := history.GetTrips(c.UserContext())
		if err != nil {
			log.Printf("trip history fetch failed: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "trip history unavailable")
		}
		return c.JSON(fiber.Map{"trips": list})
	})

	r.Get("/stats", authMiddleware, func(c *fiber.Ctx) error {
		stats, err := history.GetTripStats(c.UserContext())
		if err != nil {
			log.Printf("trip stats fetch failed: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "trip stats unavailable")
		}
		return c.JSON(stats)
	})
}
