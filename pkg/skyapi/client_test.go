package skyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
func int64Ptr(i int64) *int64     { return &i }

func testClient(url string) *Client {
	return NewClient(Config{BaseURL: url, RequestsPerSecond: 1000})
}

// TestNewClient tests client construction defaults.
func TestNewClient(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.test.com/api/v1"})

	if client == nil {
		t.Fatal("Expected client, got nil")
	}
	if client.baseURL != "https://api.test.com/api/v1" {
		t.Errorf("Expected baseURL https://api.test.com/api/v1, got %s", client.baseURL)
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", client.httpClient.Timeout)
	}
	if client.limiter == nil {
		t.Error("Expected rate limiter to be initialized")
	}
}

// TestAreaStates tests fetching the aircraft batch within a bounding box.
func TestAreaStates(t *testing.T) {
	t.Run("Successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/state/all" {
				t.Errorf("Expected path /state/all, got %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("south") != "51.0000" || q.Get("east") != "6.0000" {
				t.Errorf("Unexpected bounds query: %v", q)
			}

			states := []areaState{
				{
					Callsign:        "KLM1234",
					Position:        &[2]float64{52.3, 4.8},
					Heading:         floatPtr(90.0),
					SpeedHorizontal: floatPtr(250.0),
					Altitude:        floatPtr(10000.0),
					Model:           strPtr("B738"),
					Time:            int64Ptr(1700000000),
				},
				{
					// No position, must be skipped
					Callsign: "GHOST1",
					Heading:  floatPtr(180.0),
				},
				{
					// Outside the requested bounds, must be skipped
					Callsign: "FAR999",
					Position: &[2]float64{48.0, 11.5},
					Heading:  floatPtr(270.0),
				},
			}
			json.NewEncoder(w).Encode(states)
		}))
		defer server.Close()

		client := testClient(server.URL)
		snapshots, err := client.AreaStates(context.Background(), Bounds{South: 51, West: 3, North: 53, East: 6})

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(snapshots) != 1 {
			t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
		}

		snap := snapshots[0]
		if snap.Callsign != "KLM1234" {
			t.Errorf("Expected callsign KLM1234, got %s", snap.Callsign)
		}
		if snap.Lat != 52.3 || snap.Lon != 4.8 {
			t.Errorf("Expected position (52.3, 4.8), got (%f, %f)", snap.Lat, snap.Lon)
		}
		if snap.GroundSpeed == nil || *snap.GroundSpeed != 250.0 {
			t.Errorf("Expected ground speed 250, got %v", snap.GroundSpeed)
		}
		if !snap.ObservedAt.Equal(time.Unix(1700000000, 0).UTC()) {
			t.Errorf("Expected observed time from response, got %v", snap.ObservedAt)
		}
	})

	t.Run("Server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.AreaStates(context.Background(), Bounds{})
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}

// TestTrack tests fetching track history for one aircraft.
func TestTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/state/track/KLM1234" {
			t.Errorf("Expected path /state/track/KLM1234, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("duration") != "1d" {
			t.Errorf("Expected duration 1d, got %s", r.URL.Query().Get("duration"))
		}

		states := []trackState{
			{Time: 1700000060, Callsign: "KLM1234", Position: &[2]float64{52.4, 4.9}, Altitude: floatPtr(10100)},
			{Time: 1700000000, Callsign: "KLM1234", Position: &[2]float64{52.3, 4.8}, Altitude: floatPtr(10000)},
		}
		json.NewEncoder(w).Encode(states)
	}))
	defer server.Close()

	client := testClient(server.URL)
	points, err := client.Track(context.Background(), "KLM1234", "1d", 0)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if !points[0].Time.After(points[1].Time) {
		t.Error("Expected most-recent-first ordering preserved")
	}
	if points[0].Lat != 52.4 {
		t.Errorf("Expected first latitude 52.4, got %f", points[0].Lat)
	}
}

// TestLatestState tests fetching the detailed state of one aircraft.
func TestLatestState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/state/KLM1234" {
			t.Errorf("Expected path /state/KLM1234, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(State{
			AircraftRegistration: "PH-BXA",
			AirlineIATA:          "KL",
			DepartureIATA:        "AMS",
			ArrivalIATA:          "JFK",
			Position:             &[2]float64{52.3, 4.8},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	state, err := client.LatestState(context.Background(), "KLM1234")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if state.AircraftRegistration != "PH-BXA" {
		t.Errorf("Expected registration PH-BXA, got %s", state.AircraftRegistration)
	}
	if state.DepartureIATA != "AMS" || state.ArrivalIATA != "JFK" {
		t.Errorf("Unexpected route: %s -> %s", state.DepartureIATA, state.ArrivalIATA)
	}
}

// TestDetailLookups tests the dependent lookup endpoints.
func TestDetailLookups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/aircraft/PH-BXA":
			json.NewEncoder(w).Encode(AircraftInfo{Registration: "PH-BXA", Model: "Boeing 737-800"})
		case "/airline":
			if r.URL.Query().Get("iata") != "KL" {
				t.Errorf("Expected iata=KL, got %s", r.URL.Query().Get("iata"))
			}
			json.NewEncoder(w).Encode(Airline{IATA: "KL", Name: "KLM"})
		case "/airport/AMS":
			json.NewEncoder(w).Encode(Airport{IATA: "AMS", Name: "Schiphol"})
		case "/aircraft/PH-BXA/photos":
			json.NewEncoder(w).Encode([]Photo{{ImageURL: "https://img.test/1.jpg"}})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	aircraft, err := client.Aircraft(ctx, "PH-BXA")
	if err != nil || aircraft.Model != "Boeing 737-800" {
		t.Errorf("Aircraft lookup failed: %v %v", aircraft, err)
	}

	airline, err := client.Airline(ctx, "KL")
	if err != nil || airline.Name != "KLM" {
		t.Errorf("Airline lookup failed: %v %v", airline, err)
	}

	airport, err := client.Airport(ctx, "AMS")
	if err != nil || airport.Name != "Schiphol" {
		t.Errorf("Airport lookup failed: %v %v", airport, err)
	}

	photos, err := client.Photos(ctx, "PH-BXA")
	if err != nil || len(photos) != 1 {
		t.Errorf("Photos lookup failed: %v %v", photos, err)
	}
}

// TestIsNotFound tests 404 detection.
func TestIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Airline(context.Background(), "ZZ")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError in chain, got %T: %v", err, err)
	}
	if !IsNotFound(se) {
		t.Errorf("Expected IsNotFound for %v", se)
	}
}
