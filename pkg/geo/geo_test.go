package geo

import (
	"math"
	"testing"
)

// TestProjectIdentity verifies that a zero-distance projection returns the
// starting coordinates exactly, regardless of heading.
func TestProjectIdentity(t *testing.T) {
	positions := []struct {
		name     string
		lat, lon float64
	}{
		{"Mid latitude", 52.0, 4.0},
		{"Equator", 0.0, 0.0},
		{"High latitude", 78.25, -15.5},
		{"Date line", -33.9, 179.99},
	}

	for _, pos := range positions {
		t.Run(pos.name, func(t *testing.T) {
			for heading := 0.0; heading < 360.0; heading += 45.0 {
				lat, lon := Project(pos.lat, pos.lon, heading, 0)
				if lat != pos.lat || lon != pos.lon {
					t.Errorf("Project(%f, %f, %f, 0) = (%f, %f), expected identity",
						pos.lat, pos.lon, heading, lat, lon)
				}
			}
		})
	}
}

// TestProjectEastbound tests the reference case: an aircraft at (52.000, 4.000)
// heading 90 degrees at 250 m/s, coasted for 10 seconds (2500 m).
func TestProjectEastbound(t *testing.T) {
	lat, lon := Project(52.0, 4.0, 90.0, 2500.0)

	// Latitude must stay unchanged to 3 decimal places
	if math.Abs(lat-52.0) > 0.0005 {
		t.Errorf("Expected latitude ~52.000, got %f", lat)
	}

	// Expected longitude shift: d / (R*cos(lat)) radians ~= 0.021 degrees
	expectedDLon := 2500.0 / (EarthRadiusMeters * math.Cos(52.0*DegreesToRadians)) * RadiansToDegrees
	if lon <= 4.0 {
		t.Fatalf("Expected longitude east of 4.000, got %f", lon)
	}
	if math.Abs((lon-4.0)-expectedDLon) > 0.001 {
		t.Errorf("Expected longitude shift ~%f deg, got %f", expectedDLon, lon-4.0)
	}
}

// TestProjectNorthbound verifies that a northbound projection moves latitude
// by the expected angular distance and leaves longitude unchanged.
func TestProjectNorthbound(t *testing.T) {
	distance := 10000.0
	lat, lon := Project(10.0, 20.0, 0.0, distance)

	expectedDLat := distance / EarthRadiusMeters * RadiansToDegrees
	if math.Abs((lat-10.0)-expectedDLat) > 1e-6 {
		t.Errorf("Expected latitude shift %f, got %f", expectedDLat, lat-10.0)
	}
	if math.Abs(lon-20.0) > 1e-9 {
		t.Errorf("Expected longitude unchanged, got %f", lon)
	}
}

// TestProjectSmallDistance checks numerical stability for near-zero distances.
func TestProjectSmallDistance(t *testing.T) {
	lat, lon := Project(52.0, 4.0, 135.0, 0.001)

	if math.IsNaN(lat) || math.IsNaN(lon) {
		t.Fatal("Projection produced NaN for tiny distance")
	}
	if Distance(52.0, 4.0, lat, lon) > 0.01 {
		t.Errorf("Tiny projection moved too far: (%f, %f)", lat, lon)
	}
}

// TestProjectDateLine verifies longitude normalization across the antimeridian.
func TestProjectDateLine(t *testing.T) {
	_, lon := Project(0.0, 179.999, 90.0, 5000.0)

	if lon > 180.0 || lon < -180.0 {
		t.Errorf("Expected normalized longitude, got %f", lon)
	}
	if lon > 0 {
		t.Errorf("Expected wrap to negative longitude, got %f", lon)
	}
}

// TestDistance tests the haversine distance calculation.
func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"Same point", 52.0, 4.0, 52.0, 4.0, 0.0, 0.001},
		{"One degree latitude", 0.0, 0.0, 1.0, 0.0, 111195.0, 100.0},
		{"One degree longitude at equator", 0.0, 0.0, 0.0, 1.0, 111195.0, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance = %f, want %f +/- %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

// TestProjectDistanceRoundTrip verifies that projecting a distance and then
// measuring it returns approximately the same distance.
func TestProjectDistanceRoundTrip(t *testing.T) {
	for _, d := range []float64{100.0, 2500.0, 50000.0} {
		lat, lon := Project(52.0, 4.0, 45.0, d)
		measured := Distance(52.0, 4.0, lat, lon)
		if math.Abs(measured-d) > d*0.001 {
			t.Errorf("Round trip for %f m gave %f m", d, measured)
		}
	}
}

// TestBearing tests the forward azimuth calculation.
func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"Due north", 0.0, 0.0, 1.0, 0.0, 0.0, 0.1},
		{"Due east", 0.0, 0.0, 0.0, 1.0, 90.0, 0.1},
		{"Due south", 1.0, 0.0, 0.0, 0.0, 180.0, 0.1},
		{"Due west", 0.0, 1.0, 0.0, 0.0, 270.0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Bearing = %f, want %f", got, tt.want)
			}
		})
	}
}

// TestBearingProjectConsistency verifies Bearing inverts Project for short hops.
func TestBearingProjectConsistency(t *testing.T) {
	lat, lon := Project(52.0, 4.0, 60.0, 10000.0)
	bearing := Bearing(52.0, 4.0, lat, lon)
	if math.Abs(bearing-60.0) > 0.1 {
		t.Errorf("Expected bearing ~60, got %f", bearing)
	}
}

// TestNormalizeHeading tests heading normalization.
func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {360, 0}, {450, 90}, {-90, 270}, {359.5, 359.5},
	}
	for _, tt := range tests {
		if got := NormalizeHeading(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeHeading(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
