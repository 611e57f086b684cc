package skyapi

import "time"

// Snapshot represents one aircraft's most recent reported state within an area.
// All position data is in WGS84 coordinates.
type Snapshot struct {
	// Callsign is the aircraft callsign (ICAO), unique within a batch
	Callsign string

	// Lat is latitude in decimal degrees (-90 to +90)
	Lat float64

	// Lon is longitude in decimal degrees (-180 to +180)
	Lon float64

	// Heading in degrees (0-360, 0 = North), nil when not reported
	Heading *float64

	// GroundSpeed is horizontal speed in m/s, nil when not reported
	GroundSpeed *float64

	// VerticalSpeed in m/s (positive = climbing), nil when not reported
	VerticalSpeed *float64

	// Altitude is barometric altitude in meters, nil when not reported
	Altitude *float64

	// Model is the aircraft model code, nil when unknown
	Model *string

	// ObservedAt is when this state was reported
	ObservedAt time.Time
}

// HistoryPoint is one point of an aircraft's track history.
type HistoryPoint struct {
	// Time is the state timestamp; unique per callsign
	Time time.Time

	// Lat, Lon is the position in decimal degrees
	Lat float64
	Lon float64

	// Heading in degrees, nil when not reported
	Heading *float64

	// Altitude is barometric altitude in meters, nil when not reported
	Altitude *float64
}

// State is the full last-known state of one aircraft. Its nested identifiers
// drive the dependent aircraft/airline/airport lookups.
type State struct {
	Time time.Time `json:"time"`

	AircraftIATA         string `json:"aircraft_iata"`
	AircraftICAO         string `json:"aircraft_icao"`
	AircraftICAO24       string `json:"aircraft_icao24"`
	AircraftRegistration string `json:"aircraft_registration"`

	AirlineIATA string `json:"airline_iata"`
	AirlineICAO string `json:"airline_icao"`

	ArrivalIATA string `json:"arrival_iata"`
	ArrivalICAO string `json:"arrival_icao"`

	DepartureIATA string `json:"departure_iata"`
	DepartureICAO string `json:"departure_icao"`

	// Position is [latitude, longitude] in degrees, nil when unknown
	Position *[2]float64 `json:"position"`

	GeoAltitude     *float64 `json:"geo_altitude"`
	BaroAltitude    *float64 `json:"baro_altitude"`
	Heading         *float64 `json:"heading"`
	SpeedHorizontal *float64 `json:"speed_horizontal"`
	SpeedVertical   *float64 `json:"speed_vertical"`
	IsOnGround      bool     `json:"is_on_ground"`

	Status     string `json:"status"`
	Squawk     *int   `json:"squawk"`
	SquawkTime *int64 `json:"squawk_time"`
}

// AircraftInfo describes one airframe, looked up by registration.
type AircraftInfo struct {
	Registration string  `json:"registration"`
	ICAO24       string  `json:"icao24"`
	Model        string  `json:"model"`
	TypeCode     string  `json:"type_code"`
	EngineCount  *int    `json:"engine_count"`
	EngineType   *string `json:"engine_type"`
	Country      string  `json:"country"`
	AirlineIATA  string  `json:"airline_iata"`
}

// Airline describes one airline, looked up by IATA code.
type Airline struct {
	IATA      string `json:"iata"`
	ICAO      string `json:"icao"`
	Name      string `json:"name"`
	Callsign  string `json:"callsign"`
	Country   string `json:"country_name"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	FleetSize *int   `json:"fleet_size"`
}

// Airport describes one airport, looked up by IATA code.
type Airport struct {
	IATA      string   `json:"iata"`
	ICAO      *string  `json:"icao"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  *string  `json:"timezone"`
	CityIATA  *string  `json:"city_iata"`
	Country   string   `json:"country_name"`
}

// Photo is one aircraft photo reference.
type Photo struct {
	// ImageURL is the URL to the image itself
	ImageURL string `json:"image_url"`

	// DetailURL is the URL to the photo's detail page
	DetailURL string `json:"detail_url"`
}

// Bounds is a geographic bounding box for area queries.
type Bounds struct {
	// South is the minimum latitude in decimal degrees
	South float64

	// West is the minimum longitude in decimal degrees
	West float64

	// North is the maximum latitude in decimal degrees
	North float64

	// East is the maximum longitude in decimal degrees
	East float64
}

// Contains reports whether a position lies within the bounding box.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}
