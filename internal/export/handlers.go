package export

import (
	"github.com/gofiber/fiber/v2"

	"travelogy-engine/internal/tracking"
)

// TripSource exposes the trip a route export should render. It reports
// false when no trip has been started yet.
type TripSource interface {
	Snapshot() (tracking.Trip, bool)
}

// RegisterRoutes mounts the route export endpoints on the given router.
func RegisterRoutes(r fiber.Router, trips TripSource, authMiddleware fiber.Handler) {
	r.Get("/export.geojson", authMiddleware, func(c *fiber.Ctx) error {
		trip, ok := trips.Snapshot()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no trip recorded")
		}
		return c.JSON(ToGeoJSON(trip), "application/geo+json")
	})

	r.Get("/export.gpx", authMiddleware, func(c *fiber.Ctx) error {
		trip, ok := trips.Snapshot()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no trip recorded")
		}
		body, err := MarshalGPX(ToGPX(trip))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "gpx encoding failed")
		}
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="trip.gpx"`)
		return c.Send(body)
	})
}
