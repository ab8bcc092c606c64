package nearby

import (
	"time"

	"travelogy-engine/internal/geosource"
	"travelogy-engine/internal/shared/geo"
)

// Refresh records where and when the place list was last refreshed.
type Refresh struct {
	Lat float64
	Lon float64
	At  time.Time
}

// Throttle decides whether a new sample justifies another nearby lookup.
// Either axis firing is enough.
type Throttle struct {
	MinMoveMeters float64
	MinInterval   time.Duration
}

// DefaultThrottle matches the product's tracking defaults.
func DefaultThrottle() Throttle {
	return Throttle{MinMoveMeters: 150, MinInterval: 60 * time.Second}
}

// ShouldRefresh reports whether a refresh is due for the given sample.
// A nil last marker always refreshes.
func (t Throttle) ShouldRefresh(s geosource.Sample, last *Refresh) bool {
	if last == nil {
		return true
	}
	if geo.HaversineMeters(last.Lat, last.Lon, s.Lat, s.Lon) >= t.MinMoveMeters {
		return true
	}
	return s.Timestamp.Sub(last.At) >= t.MinInterval
}
