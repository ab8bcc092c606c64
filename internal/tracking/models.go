package tracking

import (
	"time"

	"travelogy-engine/internal/diary"
)

// State is the trip lifecycle position. There is no resume from Stopped; a
// new Start begins a fresh trip.
type State int

const (
	StateIdle State = iota
	StateTracking
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateTracking:
		return "tracking"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// RoutePoint is one captured path position, ordered by capture time.
type RoutePoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// Trip is the single tracked outing owned by the Tracker. RemoteID stays
// empty while the backend is unreachable; the local object remains the
// source of truth for the UI either way.
type Trip struct {
	LocalID       string        `json:"local_id"`
	RemoteID      string        `json:"remote_id,omitempty"`
	TransportMode string        `json:"transport_mode,omitempty"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time,omitempty"`
	Path          []RoutePoint  `json:"path"`
	DistanceM     float64       `json:"distance_m"`
	Diary         []diary.Entry `json:"diary_entries"`
}

func (t *Trip) clone() Trip {
	cp := *t
	cp.Path = make([]RoutePoint, len(t.Path))
	copy(cp.Path, t.Path)
	cp.Diary = make([]diary.Entry, len(t.Diary))
	copy(cp.Diary, t.Diary)
	return cp
}

// Status is the UI-facing view of the tracker.
type Status struct {
	State     string `json:"state"`
	Trip      *Trip  `json:"trip,omitempty"`
	LastError string `json:"last_error,omitempty"`
}
