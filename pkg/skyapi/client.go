// Package skyapi provides a client for the SkyTracker backend query API.
//
// The backend exposes aircraft state queries (area batches, per-aircraft
// track history, latest state) and detail lookups (aircraft by registration,
// airline and airport by code, photos by registration). The client is a thin
// HTTP wrapper with rate limiting; all interpretation of the data happens in
// the store, fetcher, and animation packages.
package skyapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerSecond is the default client-side rate limit
	DefaultRequestsPerSecond = 4.0
)

// Client is an HTTP client for the SkyTracker backend API.
type Client struct {
	// baseURL is the API base URL including the version prefix,
	// e.g. "https://skytracker.example.com/api/v1"
	baseURL string

	// apiKey is sent as a bearer token when non-empty
	apiKey string

	// httpClient is the HTTP client used for API requests
	httpClient *http.Client

	// limiter throttles outgoing requests to stay within server limits
	limiter *rate.Limiter
}

// Config contains configuration for the API client.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// NewClient creates a new SkyTracker API client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// StatusError represents a non-200 API response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

// IsNotFound reports whether an error is a 404 API response.
func IsNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusNotFound
}

// areaState is the wire shape of one aircraft in an area response.
// Position is a [lat, lon] pair; pointer fields can be null.
type areaState struct {
	Callsign        string      `json:"callsign"`
	Position        *[2]float64 `json:"position"`
	Heading         *float64    `json:"heading"`
	SpeedHorizontal *float64    `json:"speed_horizontal"`
	SpeedVertical   *float64    `json:"speed_vertical"`
	Altitude        *float64    `json:"altitude"`
	Model           *string     `json:"model"`
	Time            *int64      `json:"time"`
}

// trackState is the wire shape of one point in a track response.
type trackState struct {
	Time     int64       `json:"time"`
	Callsign string      `json:"callsign"`
	Position *[2]float64 `json:"position"`
	Heading  *float64    `json:"heading"`
	Altitude *float64    `json:"altitude"`
}

// AreaStates returns the latest batch of aircraft states within a bounding box.
// Records without a position or outside the requested bounds are skipped.
func (c *Client) AreaStates(ctx context.Context, bounds Bounds) ([]Snapshot, error) {
	q := url.Values{}
	q.Set("south", fmt.Sprintf("%.4f", bounds.South))
	q.Set("west", fmt.Sprintf("%.4f", bounds.West))
	q.Set("north", fmt.Sprintf("%.4f", bounds.North))
	q.Set("east", fmt.Sprintf("%.4f", bounds.East))

	var states []areaState
	if err := c.get(ctx, "/state/all", q, &states); err != nil {
		return nil, fmt.Errorf("failed to fetch area states: %w", err)
	}

	now := time.Now().UTC()
	snapshots := make([]Snapshot, 0, len(states))
	for _, st := range states {
		if st.Position == nil || st.Callsign == "" {
			continue
		}
		if !bounds.Contains(st.Position[0], st.Position[1]) {
			continue
		}
		snap := Snapshot{
			Callsign:      st.Callsign,
			Lat:           st.Position[0],
			Lon:           st.Position[1],
			Heading:       st.Heading,
			GroundSpeed:   st.SpeedHorizontal,
			VerticalSpeed: st.SpeedVertical,
			Altitude:      st.Altitude,
			Model:         st.Model,
			ObservedAt:    now,
		}
		if st.Time != nil {
			snap.ObservedAt = time.Unix(*st.Time, 0).UTC()
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// Track returns the track history of one aircraft, most recent first.
// duration is a backend duration string like "1d" or "5h20m"; limit 0 = all.
// Points without a position are skipped.
func (c *Client) Track(ctx context.Context, callsign, duration string, limit int) ([]HistoryPoint, error) {
	q := url.Values{}
	if duration != "" {
		q.Set("duration", duration)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	var states []trackState
	if err := c.get(ctx, "/state/track/"+url.PathEscape(callsign), q, &states); err != nil {
		return nil, fmt.Errorf("failed to fetch track for %s: %w", callsign, err)
	}

	points := make([]HistoryPoint, 0, len(states))
	for _, st := range states {
		if st.Position == nil {
			continue
		}
		points = append(points, HistoryPoint{
			Time:     time.Unix(st.Time, 0).UTC(),
			Lat:      st.Position[0],
			Lon:      st.Position[1],
			Heading:  st.Heading,
			Altitude: st.Altitude,
		})
	}

	return points, nil
}

// LatestState returns the last known state of one aircraft.
func (c *Client) LatestState(ctx context.Context, callsign string) (*State, error) {
	var state State
	if err := c.get(ctx, "/state/"+url.PathEscape(callsign), nil, &state); err != nil {
		return nil, fmt.Errorf("failed to fetch state for %s: %w", callsign, err)
	}
	return &state, nil
}

// Aircraft returns the details of one aircraft by registration (tail number).
func (c *Client) Aircraft(ctx context.Context, registration string) (*AircraftInfo, error) {
	var info AircraftInfo
	if err := c.get(ctx, "/aircraft/"+url.PathEscape(registration), nil, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft %s: %w", registration, err)
	}
	return &info, nil
}

// Airline returns the details of one airline by IATA code.
func (c *Client) Airline(ctx context.Context, iata string) (*Airline, error) {
	q := url.Values{}
	q.Set("iata", iata)

	var airline Airline
	if err := c.get(ctx, "/airline", q, &airline); err != nil {
		return nil, fmt.Errorf("failed to fetch airline %s: %w", iata, err)
	}
	return &airline, nil
}

// Airport returns the details of one airport by IATA code.
func (c *Client) Airport(ctx context.Context, iata string) (*Airport, error) {
	var airport Airport
	if err := c.get(ctx, "/airport/"+url.PathEscape(iata), nil, &airport); err != nil {
		return nil, fmt.Errorf("failed to fetch airport %s: %w", iata, err)
	}
	return &airport, nil
}

// Photos returns photo references for one aircraft by registration.
func (c *Client) Photos(ctx context.Context, registration string) ([]Photo, error) {
	var photos []Photo
	path := "/aircraft/" + url.PathEscape(registration) + "/photos"
	if err := c.get(ctx, path, nil, &photos); err != nil {
		return nil, fmt.Errorf("failed to fetch photos for %s: %w", registration, err)
	}
	return photos, nil
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse API response: %w", err)
	}

	return nil
}
