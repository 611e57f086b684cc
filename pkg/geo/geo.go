package geo

import "math"

// Constants for geographic calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusMeters is the Earth's mean radius in meters (WGS84 mean radius)
	EarthRadiusMeters = 6371000.0
)

// Position represents a point on Earth's surface in the WGS84 coordinate system.
type Position struct {
	// Lat is latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Lat float64

	// Lon is longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Lon float64
}

// Project calculates the destination point after travelling a given distance
// along a great circle from a starting point.
//
// Uses the spherical forward-projection formulas:
//
//	lat2 = asin(sin(lat1)*cos(d/R) + cos(lat1)*sin(d/R)*cos(heading))
//	lon2 = lon1 + atan2(sin(heading)*sin(d/R)*cos(lat1), cos(d/R)-sin(lat1)*sin(lat2))
//
// Parameters:
//   - lat, lon: Starting position in decimal degrees
//   - headingDeg: Heading in degrees (0-360, 0=North, 90=East)
//   - distanceMeters: Distance to travel in meters
//
// Returns: Destination latitude and longitude in decimal degrees.
// A zero distance returns the starting position exactly.
func Project(lat, lon, headingDeg, distanceMeters float64) (float64, float64) {
	if distanceMeters == 0 {
		return lat, lon
	}

	latRad := lat * DegreesToRadians
	lonRad := lon * DegreesToRadians
	headingRad := headingDeg * DegreesToRadians

	// Angular distance (distance / Earth radius)
	angularDistance := distanceMeters / EarthRadiusMeters

	newLatRad := math.Asin(
		math.Sin(latRad)*math.Cos(angularDistance) +
			math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(headingRad),
	)

	newLonRad := lonRad + math.Atan2(
		math.Sin(headingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(newLatRad),
	)

	newLat := newLatRad * RadiansToDegrees
	newLon := NormalizeLon(newLonRad * RadiansToDegrees)

	return newLat, newLon
}

// Distance calculates the great-circle distance between two points.
// Uses the Haversine formula for accuracy over short and long distances.
// Returns distance in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegreesToRadians
	lat2Rad := lat2 * DegreesToRadians

	dLat := (lat2 - lat1) * DegreesToRadians
	dLon := (lon2 - lon1) * DegreesToRadians

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Returns bearing in degrees (0-360), where 0/360 = North, 90 = East.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegreesToRadians
	lat2Rad := lat2 * DegreesToRadians
	dLon := (lon2 - lon1) * DegreesToRadians

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * RadiansToDegrees

	if bearing < 0 {
		bearing += 360
	}

	return bearing
}

// NormalizeLon normalizes a longitude to the range [-180, 180].
func NormalizeLon(lon float64) float64 {
	if lon > 180.0 {
		lon -= 360.0
	} else if lon < -180.0 {
		lon += 360.0
	}
	return lon
}

// NormalizeHeading ensures a heading is in the range [0, 360).
func NormalizeHeading(heading float64) float64 {
	h := math.Mod(heading, 360.0)
	if h < 0 {
		h += 360.0
	}
	return h
}
