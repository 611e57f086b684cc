package fetch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
)

const (
	// DefaultStateInterval is how often the selected aircraft's latest
	// state is refreshed while its details are open.
	DefaultStateInterval = 10 * time.Second

	// DefaultTrackDuration is how far back the history request reaches.
	DefaultTrackDuration = "2h"

	// DefaultTrackLimit caps the number of history points per request.
	DefaultTrackLimit = 500
)

// DetailFetcher loads everything about the selected aircraft: its track
// history, latest full state, and the dependent aircraft, airline, airport,
// and photo lookups the state's identifiers point to. Each lookup fills its
// own store slot, so one failing record never blanks the others.
//
// Every write goes through the store's selection-guarded setters: when the
// user selects a different aircraft mid-flight, responses for the old
// selection are dropped at the store boundary.
type DetailFetcher struct {
	client        *skyapi.Client
	store         *store.Store
	stateInterval time.Duration
	trackDuration string
	trackLimit    int
	retry         skyapi.RetryConfig
}

// DetailConfig configures a DetailFetcher. Zero values select defaults.
type DetailConfig struct {
	StateInterval time.Duration
	TrackDuration string
	TrackLimit    int
	Retry         *skyapi.RetryConfig
}

// NewDetailFetcher creates a detail fetcher.
func NewDetailFetcher(client *skyapi.Client, st *store.Store, cfg DetailConfig) *DetailFetcher {
	if cfg.StateInterval <= 0 {
		cfg.StateInterval = DefaultStateInterval
	}
	if cfg.TrackDuration == "" {
		cfg.TrackDuration = DefaultTrackDuration
	}
	if cfg.TrackLimit <= 0 {
		cfg.TrackLimit = DefaultTrackLimit
	}
	retry := skyapi.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &DetailFetcher{
		client:        client,
		store:         st,
		stateInterval: cfg.StateInterval,
		trackDuration: cfg.TrackDuration,
		trackLimit:    cfg.TrackLimit,
		retry:         retry,
	}
}

// Run watches the store for selection changes and loads details for each
// newly selected aircraft until the context is cancelled. Selecting a
// different aircraft cancels the in-flight load for the previous one.
func (f *DetailFetcher) Run(ctx context.Context) {
	selections := make(chan struct{}, 1)
	unsubscribe := f.store.Subscribe(func(ev store.Event) {
		if ev != store.EventSelection {
			return
		}
		select {
		case selections <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var cancel context.CancelFunc
	stop := func() {
		if cancel != nil {
			cancel()
			cancel = nil
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-selections:
			stop()
			callsign := f.store.Selected()
			if callsign == "" {
				continue
			}
			var loadCtx context.Context
			loadCtx, cancel = context.WithCancel(ctx)
			go f.load(loadCtx, callsign)
		}
	}
}

// load performs the full detail fan-out for one selection, then keeps the
// latest state fresh until the context is cancelled.
func (f *DetailFetcher) load(ctx context.Context, callsign string) {
	f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
		d.State = store.Loading[*skyapi.State]()
	})

	f.loadHistory(ctx, callsign)

	state := f.loadState(ctx, callsign)
	if state != nil {
		f.loadLookups(ctx, callsign, state)
	}

	ticker := time.NewTicker(f.stateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.refreshState(ctx, callsign)
		}
	}
}

// loadHistory fetches the track history and replaces the stored history
// wholesale. Failures are logged; the track pane simply stays empty.
func (f *DetailFetcher) loadHistory(ctx context.Context, callsign string) {
	points, err := skyapi.RetryWithBackoff(ctx, f.retry, func() ([]skyapi.HistoryPoint, error) {
		return f.client.Track(ctx, callsign, f.trackDuration, f.trackLimit)
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("track fetch for %s failed: %v", callsign, err)
		}
		return
	}
	f.store.SetHistoryFor(callsign, points)
}

// loadState fetches the latest full state and fills the state slot.
// Returns nil when the fetch failed or the selection moved on.
func (f *DetailFetcher) loadState(ctx context.Context, callsign string) *skyapi.State {
	state, err := skyapi.RetryWithBackoff(ctx, f.retry, func() (*skyapi.State, error) {
		return f.client.LatestState(ctx, callsign)
	})
	if err != nil {
		f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
			d.State = store.Failure[*skyapi.State](err)
		})
		return nil
	}

	if !f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
		d.State = store.Success(state)
	}) {
		return nil
	}
	return state
}

// loadLookups runs the dependent record lookups in parallel. Each lookup
// marks its slot loading, then fills it with the result or the error.
// Identifiers the state doesn't carry leave their slots idle.
func (f *DetailFetcher) loadLookups(ctx context.Context, callsign string, state *skyapi.State) {
	var wg sync.WaitGroup

	if reg := state.AircraftRegistration; reg != "" {
		runLookup(ctx, &wg, f, callsign,
			func(d *store.Detail) *store.Loadable[*skyapi.AircraftInfo] { return &d.Aircraft },
			func() (*skyapi.AircraftInfo, error) { return f.client.Aircraft(ctx, reg) })

		runLookup(ctx, &wg, f, callsign,
			func(d *store.Detail) *store.Loadable[[]skyapi.Photo] { return &d.Photos },
			func() ([]skyapi.Photo, error) { return f.client.Photos(ctx, reg) })
	}

	if iata := state.AirlineIATA; iata != "" {
		runLookup(ctx, &wg, f, callsign,
			func(d *store.Detail) *store.Loadable[*skyapi.Airline] { return &d.Airline },
			func() (*skyapi.Airline, error) { return f.client.Airline(ctx, iata) })
	}

	if iata := state.DepartureIATA; iata != "" {
		runLookup(ctx, &wg, f, callsign,
			func(d *store.Detail) *store.Loadable[*skyapi.Airport] { return &d.DepartureAirport },
			func() (*skyapi.Airport, error) { return f.client.Airport(ctx, iata) })
	}

	if iata := state.ArrivalIATA; iata != "" {
		runLookup(ctx, &wg, f, callsign,
			func(d *store.Detail) *store.Loadable[*skyapi.Airport] { return &d.ArrivalAirport },
			func() (*skyapi.Airport, error) { return f.client.Airport(ctx, iata) })
	}

	wg.Wait()
}

// runLookup fetches one dependent record and writes its loading state and
// result into the slot picked by the selector.
func runLookup[T any](ctx context.Context, wg *sync.WaitGroup, f *DetailFetcher, callsign string,
	slot func(*store.Detail) *store.Loadable[T], fn func() (T, error)) {

	f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
		*slot(d) = store.Loading[T]()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := skyapi.RetryWithBackoff(ctx, f.retry, fn)
		if err != nil {
			f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
				*slot(d) = store.Failure[T](err)
			})
			return
		}
		f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
			*slot(d) = store.Success(result)
		})
	}()
}

// refreshState re-fetches the latest state on the refresh tick. A new state
// updates the slot and, when it carries a position with a new timestamp,
// extends the history so the track keeps growing while the pane is open.
func (f *DetailFetcher) refreshState(ctx context.Context, callsign string) {
	state, err := f.client.LatestState(ctx, callsign)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("state refresh for %s failed: %v", callsign, err)
		}
		return
	}

	if !f.store.UpdateDetailFor(callsign, func(d *store.Detail) {
		d.State = store.Success(state)
	}) {
		return
	}

	if state.Position != nil {
		f.store.PrependHistoryPointFor(callsign, skyapi.HistoryPoint{
			Time:     state.Time,
			Lat:      state.Position[0],
			Lon:      state.Position[1],
			Heading:  state.Heading,
			Altitude: state.BaroAltitude,
		})
	}
}
