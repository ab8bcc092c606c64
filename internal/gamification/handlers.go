package gamification

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Backend is the slice of the remote API the handlers consume.
type Backend interface {
	GetTrips(ctx context.Context) ([]Trip, error)
	GetTripStats(ctx context.Context) (Stats, error)
	GetProfile(ctx context.Context) (Profile, error)
}

func RegisterRoutes(r fiber.Router, backend Backend, authMiddleware fiber.Handler) {
	// Client-side score computed from trip history. Remote failures degrade
	// to whatever inputs are available, never to an error page.
	r.Get("/score", authMiddleware, func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var trips []Trip
		if backend != nil {
			var err error
			if trips, err = backend.GetTrips(ctx); err != nil {
				log.Printf("trip history unavailable, scoring locally: %v", err)
				trips = nil
			}
		}

		var stats Stats
		if backend != nil {
			var err error
			if stats, err = backend.GetTripStats(ctx); err != nil {
				log.Printf("trip stats unavailable: %v", err)
				stats = Stats{}
			}
		}

		return c.JSON(Score(stats, trips))
	})

	// Server-computed profile with the local score as fallback.
	r.Get("/profile", authMiddleware, func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if backend != nil {
			if profile, err := backend.GetProfile(ctx); err == nil {
				return c.JSON(profile)
			} else {
				log.Printf("remote profile unavailable, falling back to local score: %v", err)
			}
		}

		var trips []Trip
		var stats Stats
		if backend != nil {
			trips, _ = backend.GetTrips(ctx)
			stats, _ = backend.GetTripStats(ctx)
		}
		return c.JSON(Score(stats, trips))
	})
}
