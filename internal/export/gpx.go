package export

import (
	"encoding/xml"
	"time"

	"travelogy-engine/internal/tracking"
)

const gpxCreator = "travelogy-engine"

// GPX is a minimal GPX 1.1 document with a single track.
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	XMLNS   string   `xml:"xmlns,attr"`
	Tracks  []Track  `xml:"trk"`
}

// Track holds the trip name and its segments.
type Track struct {
	Name     string         `xml:"name,omitempty"`
	Segments []TrackSegment `xml:"trkseg"`
}

// TrackSegment is an uninterrupted run of track points.
type TrackSegment struct {
	Points []TrackPoint `xml:"trkpt"`
}

// TrackPoint carries lat/lon as attributes and the sample time as a child.
type TrackPoint struct {
	Lat  float64   `xml:"lat,attr"`
	Lon  float64   `xml:"lon,attr"`
	Time time.Time `xml:"time,omitempty"`
}

// ToGPX renders a trip path as a GPX 1.1 track with one segment.
// An empty path yields a track with an empty segment.
func ToGPX(trip tracking.Trip) *GPX {
	points := make([]TrackPoint, len(trip.Path))
	for i, p := range trip.Path {
		points[i] = TrackPoint{Lat: p.Lat, Lon: p.Lon, Time: p.Timestamp.UTC()}
	}

	name := trip.LocalID
	if trip.RemoteID != "" {
		name = trip.RemoteID
	}

	return &GPX{
		Version: "1.1",
		Creator: gpxCreator,
		XMLNS:   "http://www.topografix.com/GPX/1/1",
		Tracks: []Track{
			{
				Name:     name,
				Segments: []TrackSegment{{Points: points}},
			},
		},
	}
}

// MarshalGPX serializes the document with the XML declaration prepended.
func MarshalGPX(doc *GPX) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
