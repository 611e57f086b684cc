// Package fetch keeps the store populated from the backend API: a snapshot
// fetcher periodically refreshes the visible aircraft batch, and a detail
// fetcher loads history and lookup records for the selected aircraft.
package fetch

import (
	"context"
	"log"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
)

// DefaultSnapshotInterval is how often the visible area is refreshed.
const DefaultSnapshotInterval = 10 * time.Second

// SnapshotFetcher periodically replaces the store's aircraft batch with the
// latest states inside the viewport. A failed fetch is logged and the
// previous batch stays on screen until the next attempt succeeds.
type SnapshotFetcher struct {
	client   *skyapi.Client
	store    *store.Store
	interval time.Duration
}

// NewSnapshotFetcher creates a snapshot fetcher. interval <= 0 selects the
// default refresh interval.
func NewSnapshotFetcher(client *skyapi.Client, st *store.Store, interval time.Duration) *SnapshotFetcher {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	return &SnapshotFetcher{
		client:   client,
		store:    st,
		interval: interval,
	}
}

// Run fetches immediately, then on every tick and on every viewport change,
// until the context is cancelled. Viewport changes collapse into a single
// pending refresh when fetches are slower than the user pans.
func (f *SnapshotFetcher) Run(ctx context.Context) {
	trigger := make(chan struct{}, 1)
	unsubscribe := f.store.Subscribe(func(ev store.Event) {
		if ev != store.EventViewport {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.refresh(ctx)
		case <-trigger:
			f.refresh(ctx)
		}
	}
}

// refresh fetches the current viewport's batch once.
func (f *SnapshotFetcher) refresh(ctx context.Context) {
	bounds := f.store.Viewport()
	if bounds.North <= bounds.South || bounds.East <= bounds.West {
		return
	}

	snapshots, err := f.client.AreaStates(ctx, bounds)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("snapshot fetch failed, keeping previous batch: %v", err)
		}
		return
	}

	f.store.ReplaceBatch(snapshots, time.Now())
}
