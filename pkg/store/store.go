// Package store holds all shared state of the tracker: the current snapshot
// batch, the selected aircraft with its history and detail records, the
// animated (extrapolated) position, and the map viewport. Every producer
// (fetchers, extrapolator) writes through the store's mutators and every
// consumer (renderers, readouts) reads through its accessors; mutations are
// mutex-serialized and subscribers are notified synchronously after each
// completed mutation.
package store

import (
	"sync"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

// Default settings for new stores.
const (
	// DefaultAnimationThresholdZoom is the minimum zoom at which markers animate
	DefaultAnimationThresholdZoom = 7.0

	// DefaultZoom is the initial map zoom level
	DefaultZoom = 8.0
)

// Event identifies which part of the store a mutation touched.
type Event int

const (
	// EventSelection fires on selection change (after the synchronous reset)
	EventSelection Event = iota

	// EventBatch fires when the snapshot batch is replaced
	EventBatch

	// EventHistory fires when history is replaced or grows
	EventHistory

	// EventAnimatedPosition fires when the extrapolated position updates
	EventAnimatedPosition

	// EventDetail fires when any detail slot changes
	EventDetail

	// EventViewport fires on viewport or zoom change
	EventViewport

	// EventSettings fires on display settings change
	EventSettings
)

// Batch is the current set of aircraft snapshots, keyed by callsign.
// It is replaced wholesale on every successful area fetch, never merged.
type Batch struct {
	// Snapshots maps callsign to the aircraft's latest snapshot
	Snapshots map[string]skyapi.Snapshot

	// RefreshedAt is when this batch was received; extrapolation measures
	// elapsed time against it
	RefreshedAt time.Time
}

// Detail holds the dependent lookup results for the selected aircraft.
// Each slot loads independently.
type Detail struct {
	State            Loadable[*skyapi.State]
	Aircraft         Loadable[*skyapi.AircraftInfo]
	Airline          Loadable[*skyapi.Airline]
	DepartureAirport Loadable[*skyapi.Airport]
	ArrivalAirport   Loadable[*skyapi.Airport]
	Photos           Loadable[[]skyapi.Photo]
}

// Settings are user-facing display settings.
type Settings struct {
	// MapStyle is the active base map style name
	MapStyle string

	// ShadowOffset enables the cosmetic marker shadow offset
	ShadowOffset bool
}

// AnimatedPosition is the selected aircraft's currently displayed
// (extrapolated) coordinate.
type AnimatedPosition struct {
	Lat float64
	Lon float64
}

// Store is the reactive state container. The zero value is not usable;
// call New.
type Store struct {
	mu sync.RWMutex

	selected string
	batch    Batch
	history  []skyapi.HistoryPoint
	animated *AnimatedPosition
	detail   Detail

	viewport               skyapi.Bounds
	zoom                   float64
	animationThresholdZoom float64
	settings               Settings

	subscribers map[int]func(Event)
	nextSubID   int
}

// New creates an empty store with default zoom settings.
func New() *Store {
	return &Store{
		batch:                  Batch{Snapshots: map[string]skyapi.Snapshot{}},
		zoom:                   DefaultZoom,
		animationThresholdZoom: DefaultAnimationThresholdZoom,
		settings:               Settings{MapStyle: "default"},
		subscribers:            make(map[int]func(Event)),
	}
}

// Subscribe registers a callback invoked synchronously after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// notify calls every subscriber outside the lock. Mutators must have
// finished their state change before calling it, so subscribers always
// observe a completed mutation.
func (s *Store) notify(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SelectAircraft changes the selected aircraft. An empty callsign deselects.
// History, animated position, and all detail slots are reset before the
// subscriber notification fires, so no stale data from the previous
// selection is ever observable under the new one.
func (s *Store) SelectAircraft(callsign string) {
	s.mu.Lock()
	s.selected = callsign
	s.history = nil
	s.animated = nil
	s.detail = Detail{}
	s.mu.Unlock()

	s.notify(EventSelection)
}

// Selected returns the selected callsign, or "" when nothing is selected.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// ReplaceBatch atomically replaces the snapshot batch. Duplicate callsigns
// in the input keep the snapshot with the latest ObservedAt.
func (s *Store) ReplaceBatch(snapshots []skyapi.Snapshot, refreshedAt time.Time) {
	m := make(map[string]skyapi.Snapshot, len(snapshots))
	for _, snap := range snapshots {
		if prev, ok := m[snap.Callsign]; ok && prev.ObservedAt.After(snap.ObservedAt) {
			continue
		}
		m[snap.Callsign] = snap
	}

	s.mu.Lock()
	s.batch = Batch{Snapshots: m, RefreshedAt: refreshedAt}
	s.mu.Unlock()

	s.notify(EventBatch)
}

// Batch returns a copy of the current batch.
func (s *Store) Batch() Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := make(map[string]skyapi.Snapshot, len(s.batch.Snapshots))
	for k, v := range s.batch.Snapshots {
		m[k] = v
	}
	return Batch{Snapshots: m, RefreshedAt: s.batch.RefreshedAt}
}

// BatchSize returns the number of aircraft in the current batch.
func (s *Store) BatchSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batch.Snapshots)
}

// Snapshot returns the batch snapshot for one callsign.
func (s *Store) Snapshot(callsign string) (skyapi.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.batch.Snapshots[callsign]
	return snap, ok
}

// SetHistoryFor replaces the selected aircraft's history wholesale.
// The write is dropped when callsign no longer matches the current
// selection (stale-response guard). Points must be most-recent-first.
func (s *Store) SetHistoryFor(callsign string, points []skyapi.HistoryPoint) bool {
	s.mu.Lock()
	if s.selected != callsign {
		s.mu.Unlock()
		return false
	}
	s.history = append([]skyapi.HistoryPoint(nil), points...)
	s.mu.Unlock()

	s.notify(EventHistory)
	return true
}

// PrependHistoryPointFor prepends a new live point to the selected
// aircraft's history. The write is dropped when the selection changed or
// when the point is not strictly newer than the current head; history is
// kept most recent first, so a lagging state refresh must not interleave
// behind points the track query already delivered.
func (s *Store) PrependHistoryPointFor(callsign string, p skyapi.HistoryPoint) bool {
	s.mu.Lock()
	if s.selected != callsign {
		s.mu.Unlock()
		return false
	}
	if len(s.history) > 0 && !p.Time.After(s.history[0].Time) {
		s.mu.Unlock()
		return false
	}
	s.history = append([]skyapi.HistoryPoint{p}, s.history...)
	s.mu.Unlock()

	s.notify(EventHistory)
	return true
}

// History returns a copy of the selected aircraft's history,
// most recent first.
func (s *Store) History() []skyapi.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]skyapi.HistoryPoint(nil), s.history...)
}

// SetAnimatedPositionFor updates the extrapolated position of the selected
// aircraft. Dropped when the selection changed.
func (s *Store) SetAnimatedPositionFor(callsign string, lat, lon float64) bool {
	s.mu.Lock()
	if s.selected != callsign {
		s.mu.Unlock()
		return false
	}
	s.animated = &AnimatedPosition{Lat: lat, Lon: lon}
	s.mu.Unlock()

	s.notify(EventAnimatedPosition)
	return true
}

// AnimatedPosition returns the current extrapolated position of the
// selected aircraft, or nil when none is set.
func (s *Store) AnimatedPosition() *AnimatedPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.animated == nil {
		return nil
	}
	pos := *s.animated
	return &pos
}

// UpdateDetailFor applies a mutation to the detail slots, guarded by the
// current selection. The callback runs under the store lock and must only
// touch the Detail struct.
func (s *Store) UpdateDetailFor(callsign string, update func(*Detail)) bool {
	s.mu.Lock()
	if s.selected != callsign {
		s.mu.Unlock()
		return false
	}
	update(&s.detail)
	s.mu.Unlock()

	s.notify(EventDetail)
	return true
}

// Detail returns a copy of the detail slots.
func (s *Store) Detail() Detail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail
}

// SetViewport updates the active map bounding box.
func (s *Store) SetViewport(b skyapi.Bounds) {
	s.mu.Lock()
	s.viewport = b
	s.mu.Unlock()

	s.notify(EventViewport)
}

// Viewport returns the active map bounding box.
func (s *Store) Viewport() skyapi.Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetZoom updates the map zoom level.
func (s *Store) SetZoom(zoom float64) {
	s.mu.Lock()
	s.zoom = zoom
	s.mu.Unlock()

	s.notify(EventViewport)
}

// Zoom returns the current map zoom level.
func (s *Store) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// SetAnimationThresholdZoom changes the zoom gate for marker animation.
func (s *Store) SetAnimationThresholdZoom(zoom float64) {
	s.mu.Lock()
	s.animationThresholdZoom = zoom
	s.mu.Unlock()

	s.notify(EventSettings)
}

// AnimationThresholdZoom returns the zoom gate for marker animation.
func (s *Store) AnimationThresholdZoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animationThresholdZoom
}

// AnimationEnabled reports whether the zoom gate is currently open.
func (s *Store) AnimationEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom >= s.animationThresholdZoom
}

// SetSettings replaces the display settings.
func (s *Store) SetSettings(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.notify(EventSettings)
}

// Settings returns the current display settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
