package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// CumulativeKm returns, for each coordinate, the running distance from the
// first one. The result is parallel to the input and non-decreasing;
// consecutive duplicate coordinates contribute zero.
func CumulativeKm(lats, lons []float64) []float64 {
	if len(lats) == 0 {
		return nil
	}
	cum := make([]float64, len(lats))
	for i := 1; i < len(lats); i++ {
		cum[i] = cum[i-1] + HaversineKm(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	return cum
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
