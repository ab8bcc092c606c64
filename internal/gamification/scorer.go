package gamification

import (
	"math"
	"time"
)

// Trip is one completed outing as the backend reports it.
type Trip struct {
	ID            string    `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DistanceKm    float64   `json:"distance_km"`
	TransportMode string    `json:"transport_mode"`
}

// Stats are the backend's aggregate trip statistics. Zero values fall back
// to what can be derived from the trip list.
type Stats struct {
	TotalTrips      int     `json:"total_trips"`
	TotalDistanceKm float64 `json:"total_distance"`
	CarbonSavedKg   float64 `json:"carbon_saved"`
	TripsThisWeek   int     `json:"trips_this_week"`
	TripsThisMonth  int     `json:"trips_this_month"`
	EcoScore        float64 `json:"eco_score"`
}

type Points struct {
	Total         int `json:"total"`
	Level         int `json:"level"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type Badge struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

type Profile struct {
	Points Points  `json:"points"`
	Badges []Badge `json:"badges"`
}

// badgeCatalog is fixed; output order follows definition order, not
// discovery order.
var badgeCatalog = []struct {
	badge  Badge
	earned func(trips, streak int, eco float64) bool
}{
	{Badge{"First Steps", "directions_walk", "Complete your first trip"},
		func(trips, _ int, _ float64) bool { return trips >= 1 }},
	{Badge{"Trailblazer", "explore", "Complete 10 trips"},
		func(trips, _ int, _ float64) bool { return trips >= 10 }},
	{Badge{"Voyager", "public", "Complete 50 trips"},
		func(trips, _ int, _ float64) bool { return trips >= 50 }},
	{Badge{"Eco Warrior", "eco", "Reach an eco score of 80"},
		func(_, _ int, eco float64) bool { return eco >= 80 }},
	{Badge{"Streak Starter", "local_fire_department", "Travel 3 days in a row"},
		func(_, streak int, _ float64) bool { return streak >= 3 }},
	{Badge{"Weekly Streak", "emoji_events", "Travel 7 days in a row"},
		func(_, streak int, _ float64) bool { return streak >= 7 }},
}

// StreakOn counts consecutive calendar days ending at today that contain at
// least one trip. A trip's day comes from its end time, falling back to its
// start time. The first missing day, today included, ends the count.
func StreakOn(today time.Time, trips []Trip) int {
	days := make(map[string]struct{}, len(trips))
	loc := today.Location()
	for _, trip := range trips {
		at := trip.EndTime
		if at.IsZero() {
			at = trip.StartTime
		}
		if at.IsZero() {
			continue
		}
		days[at.In(loc).Format("2006-01-02")] = struct{}{}
	}

	streak := 0
	for day := today; ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
	}
	return streak
}

// ComputeStreak is StreakOn anchored at the current day.
func ComputeStreak(trips []Trip) int {
	return StreakOn(time.Now(), trips)
}

// ScoreOn derives the full client-side profile from trips and aggregate
// stats. Pure and idempotent: same inputs, same output.
func ScoreOn(today time.Time, stats Stats, trips []Trip) Profile {
	totalTrips := stats.TotalTrips
	if totalTrips <= 0 {
		totalTrips = len(trips)
	}

	streak := StreakOn(today, trips)
	total := totalTrips*5 + streak*10 + int(math.Round(stats.EcoScore))

	level := total / 100
	if level < 1 {
		level = 1
	}

	// Always a list on the wire, matching the backend's profile payload.
	badges := []Badge{}
	for _, entry := range badgeCatalog {
		if entry.earned(totalTrips, streak, stats.EcoScore) {
			badges = append(badges, entry.badge)
		}
	}

	return Profile{
		Points: Points{
			Total:         total,
			Level:         level,
			CurrentStreak: streak,
			LongestStreak: streak,
		},
		Badges: badges,
	}
}

// Score is ScoreOn anchored at the current day.
func Score(stats Stats, trips []Trip) Profile {
	return ScoreOn(time.Now(), stats, trips)
}
