package export

import (
	"time"

	"travelogy-engine/internal/tracking"
)

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature wraps a single geometry with its properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a LineString and its coordinate list.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates LineCoordinates `json:"coordinates"`
}

// PointCoordinates is [longitude, latitude], the GeoJSON coordinate order.
type PointCoordinates [2]float64

// LineCoordinates is the ordered coordinate list of a LineString.
type LineCoordinates []PointCoordinates

// ToGeoJSON renders a trip path as a FeatureCollection containing exactly
// one LineString feature. An empty path yields an empty coordinates array,
// never an error.
func ToGeoJSON(trip tracking.Trip) *FeatureCollection {
	coords := make(LineCoordinates, len(trip.Path))
	for i, p := range trip.Path {
		coords[i] = PointCoordinates{p.Lon, p.Lat}
	}

	props := map[string]any{
		"trip_id":     trip.LocalID,
		"distance_m":  trip.DistanceM,
		"point_count": len(trip.Path),
		"start_time":  trip.StartTime.Format(time.RFC3339),
	}
	if !trip.EndTime.IsZero() {
		props["end_time"] = trip.EndTime.Format(time.RFC3339)
	}
	if trip.TransportMode != "" {
		props["transport_mode"] = trip.TransportMode
	}

	return &FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{
				Type: "Feature",
				Geometry: Geometry{
					Type:        "LineString",
					Coordinates: coords,
				},
				Properties: props,
			},
		},
	}
}
