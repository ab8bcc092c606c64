package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000

// HaversineMeters returns the great-circle distance between two points in
// meters. Identical coordinates yield exactly 0.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// HaversineKm returns the great-circle distance in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineMeters(lat1, lon1, lat2, lon2) / 1000
}

// Accumulate adds the segment between the previous and current point to a
// running total. It never recomputes the whole path.
func Accumulate(totalM, prevLat, prevLon, lat, lon float64) float64 {
	return totalM + HaversineMeters(prevLat, prevLon, lat, lon)
}
