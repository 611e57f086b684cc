package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/JasperJeuken/SkyTracker/pkg/anim"
	"github.com/JasperJeuken/SkyTracker/pkg/config"
	"github.com/JasperJeuken/SkyTracker/pkg/fetch"
	"github.com/JasperJeuken/SkyTracker/pkg/geo"
	"github.com/JasperJeuken/SkyTracker/pkg/render"
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
	"github.com/JasperJeuken/SkyTracker/pkg/track"
)

// App represents the main application
type App struct {
	config *config.Config
	client *skyapi.Client
	store  *store.Store

	markers  *render.MarkerLayer
	revealer *track.Revealer

	// UI components
	tviewApp   *tview.Application
	mapView    *MapView
	detail     *tview.TextView
	controls   *tview.TextView
	logs       *tview.TextView
	rootLayout *tview.Flex

	// State
	mu             sync.RWMutex
	callsigns      []string
	cursor         int
	segments       []track.Segment
	historySegs    int
	lastHistoryLen int

	detailDirty atomic.Bool

	gapThreshold time.Duration
	cancel       context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, client *skyapi.Client) *App {
	st := store.New()
	st.SetViewport(skyapi.Bounds{
		South: cfg.Map.South,
		West:  cfg.Map.West,
		North: cfg.Map.North,
		East:  cfg.Map.East,
	})
	st.SetZoom(cfg.Map.Zoom)
	st.SetAnimationThresholdZoom(cfg.Map.AnimationThresholdZoom)
	st.SetSettings(store.Settings{
		MapStyle:     cfg.Map.Style,
		ShadowOffset: cfg.Map.ShadowOffset > 0,
	})

	app := &App{
		config:       cfg,
		client:       client,
		store:        st,
		markers:      render.NewMarkerLayer(),
		gapThreshold: time.Duration(cfg.Track.GapThresholdSeconds) * time.Second,
	}
	app.revealer = track.NewRevealer(
		time.Duration(cfg.Track.RevealIntervalMillis)*time.Millisecond,
		func(int) { app.markDirty() },
	)

	app.setupUI()
	return app
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.mapView = NewMapView(a)
	a.createDetailPanel()
	a.createControlsPanel()
	a.createLogsPanel()
	a.createLayout()

	a.tviewApp.SetInputCapture(a.handleKeyboard)
}

// createDetailPanel creates the aircraft detail panel
func (a *App) createDetailPanel() {
	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.detail.SetBorder(true).SetTitle(" Aircraft ")

	a.updateDetail()
}

// createControlsPanel creates the controls/shortcuts panel
func (a *App) createControlsPanel() {
	a.controls = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.controls.SetBorder(true).SetTitle(" Controls ")

	controlsText := `[yellow]NAVIGATION[-]
  [white]↑/↓, j/k[-]  Select aircraft
  [white]w/a/s/d[-]   Pan map (←/→ too)

[yellow]ACTIONS[-]
  [white]ENTER[-]     Open details
  [white]ESC[-]       Close details

[yellow]ZOOM[-]
  [white]+/-[-]       Zoom
  [white]0[-]         Reset view

[yellow]CONTROL[-]
  [white]q[-]         Quit`

	a.controls.SetText(controlsText)
}

// createLogsPanel creates the log viewer panel
func (a *App) createLogsPanel() {
	a.logs = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(100)
	a.logs.SetBorder(true).SetTitle(" Logs ")

	a.addLog("INFO", "Application started")
}

// createLayout creates the main layout with map and sidebar
func (a *App) createLayout() {
	sidebar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.detail, 0, 4, false).
		AddItem(a.controls, 0, 3, false).
		AddItem(a.logs, 0, 3, false)

	a.rootLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.mapView, 0, 7, true).
		AddItem(sidebar, 0, 3, false)

	a.tviewApp.SetRoot(a.rootLayout, true)
}

// addLog adds a log message to the log panel
func (a *App) addLog(level, message string) {
	timestamp := time.Now().Format("15:04:05")
	var color string
	switch level {
	case "ERROR":
		color = "red"
	case "WARN":
		color = "yellow"
	case "INFO":
		color = "white"
	default:
		color = "gray"
	}

	fmt.Fprintf(a.logs, "[gray]%s[-] [%s]%-5s[-] %s\n", timestamp, color, level, message)
}

// Run starts the fetchers, the extrapolator, and the UI event loop.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	unsubscribe := a.store.Subscribe(a.onStoreEvent)
	defer unsubscribe()

	snapshotInterval := time.Duration(a.config.Refresh.SnapshotIntervalSeconds) * time.Second
	go fetch.NewSnapshotFetcher(a.client, a.store, snapshotInterval).Run(ctx)

	go fetch.NewDetailFetcher(a.client, a.store, fetch.DetailConfig{
		StateInterval: time.Duration(a.config.Refresh.StateIntervalSeconds) * time.Second,
		TrackDuration: fmt.Sprintf("%dm", a.config.Refresh.TrackDurationMinutes),
		TrackLimit:    a.config.Refresh.TrackLimit,
	}).Run(ctx)

	frameInterval := time.Second / time.Duration(a.config.Map.FrameRate)
	clock := &anim.TickerClock{Interval: frameInterval}
	go anim.NewExtrapolator(a.store, clock, a.markers).Run(ctx)

	// Repaint at the frame rate so marker motion is visible
	go a.drawLoop(ctx, frameInterval)

	return a.tviewApp.Run()
}

// drawLoop triggers a redraw once per frame, refreshing the detail panel
// when a store event flagged it. This is the only goroutine that queues UI
// work, so it can never be the event loop itself.
func (a *App) drawLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tviewApp.QueueUpdateDraw(func() {
				if a.detailDirty.Swap(false) {
					a.updateDetail()
				}
			})
		}
	}
}

// markDirty flags the detail panel for refresh on the next frame.
func (a *App) markDirty() {
	a.detailDirty.Store(true)
}

// onStoreEvent reacts to store mutations. It runs on whichever goroutine
// performed the mutation, including the event loop itself when a keyboard
// handler mutates the store, so it must never block on QueueUpdateDraw;
// UI refresh is deferred to the draw loop instead.
func (a *App) onStoreEvent(ev store.Event) {
	switch ev {
	case store.EventBatch:
		batch := a.store.Batch()
		a.markers.Rebuild(batch, a.store.Selected())
		a.updateCallsigns(batch)

	case store.EventSelection:
		a.markers.Select(a.store.Selected())
		a.revealer.Cancel()
		a.mu.Lock()
		a.segments = nil
		a.historySegs = 0
		a.lastHistoryLen = 0
		a.mu.Unlock()

	case store.EventHistory, store.EventAnimatedPosition:
		a.rebuildSegments(ev == store.EventHistory)
	}

	a.markDirty()
}

// updateCallsigns refreshes the sorted cursor list from a new batch.
func (a *App) updateCallsigns(batch store.Batch) {
	callsigns := make([]string, 0, len(batch.Snapshots))
	for cs := range batch.Snapshots {
		callsigns = append(callsigns, cs)
	}
	sort.Strings(callsigns)

	a.mu.Lock()
	a.callsigns = callsigns
	if a.cursor >= len(callsigns) {
		a.cursor = 0
	}
	a.mu.Unlock()
}

// rebuildSegments recomputes the track polyline. History changes drive the
// reveal animation: a wholesale replacement restarts it, a single appended
// point reveals its segment immediately.
func (a *App) rebuildSegments(historyChanged bool) {
	history := a.store.History()

	var live *geo.Position
	if pos := a.store.AnimatedPosition(); pos != nil {
		live = &geo.Position{Lat: pos.Lat, Lon: pos.Lon}
	}

	segments := track.BuildSegments(history, live, a.gapThreshold)
	historySegs := len(segments)
	if live != nil && len(segments) > 0 {
		historySegs--
	}

	a.mu.Lock()
	prevLen := a.lastHistoryLen
	a.segments = segments
	a.historySegs = historySegs
	a.lastHistoryLen = len(history)
	a.mu.Unlock()

	if !historyChanged {
		return
	}
	if prevLen > 0 && len(history) == prevLen+1 {
		a.revealer.Append()
	} else {
		a.revealer.Reset(historySegs)
	}
}

// trackDrawCount returns the segments and how many of them to draw. The
// live segment joins in only once the history is fully revealed.
func (a *App) trackDrawCount() ([]track.Segment, int) {
	a.mu.RLock()
	segments := a.segments
	historySegs := a.historySegs
	a.mu.RUnlock()

	revealed := a.revealer.Revealed()
	if revealed > historySegs {
		revealed = historySegs
	}
	if revealed == historySegs {
		return segments, len(segments)
	}
	return segments, revealed
}

// handleKeyboard handles keyboard input
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	key := event.Key()
	r := event.Rune()

	switch {
	// Quit
	case key == tcell.KeyCtrlC || r == 'q':
		a.Stop()
		return nil

	// Selection cursor
	case key == tcell.KeyUp || r == 'k':
		a.moveCursor(-1)
		return nil
	case key == tcell.KeyDown || r == 'j':
		a.moveCursor(1)
		return nil

	// Actions
	case key == tcell.KeyEnter:
		a.selectUnderCursor()
		return nil
	case key == tcell.KeyEscape:
		a.deselect()
		return nil

	// Pan
	case r == 'a' || key == tcell.KeyLeft:
		a.pan(-0.25, 0)
		return nil
	case r == 'd' || key == tcell.KeyRight:
		a.pan(0.25, 0)
		return nil
	case r == 'w':
		a.pan(0, 0.25)
		return nil
	case r == 's':
		a.pan(0, -0.25)
		return nil

	// Zoom
	case r == '+' || r == '=':
		a.zoom(0.5, 1)
		return nil
	case r == '-':
		a.zoom(2.0, -1)
		return nil
	case r == '0':
		a.resetView()
		return nil
	}

	return event
}

// moveCursor moves the aircraft cursor through the sorted callsign list.
// It runs inside the input capture on the event loop, so the detail panel
// is updated directly; the pending draw pass picks it up.
func (a *App) moveCursor(delta int) {
	a.mu.Lock()
	if len(a.callsigns) == 0 {
		a.mu.Unlock()
		return
	}
	a.cursor = (a.cursor + delta + len(a.callsigns)) % len(a.callsigns)
	a.mu.Unlock()

	a.updateDetail()
}

// cursorCallsign returns the callsign under the cursor.
func (a *App) cursorCallsign() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.cursor < 0 || a.cursor >= len(a.callsigns) {
		return ""
	}
	return a.callsigns[a.cursor]
}

// selectUnderCursor opens the details for the aircraft under the cursor.
func (a *App) selectUnderCursor() {
	callsign := a.cursorCallsign()
	if callsign == "" {
		a.addLog("WARN", "No aircraft under cursor")
		return
	}
	if callsign == a.store.Selected() {
		return
	}

	a.store.SelectAircraft(callsign)
	a.addLog("INFO", fmt.Sprintf("Selected %s", callsign))
}

// deselect closes the detail pane.
func (a *App) deselect() {
	if a.store.Selected() == "" {
		return
	}
	a.store.SelectAircraft("")
	a.addLog("INFO", "Selection cleared")
}

// pan shifts the viewport; the snapshot fetcher picks up the change.
func (a *App) pan(dxFrac, dyFrac float64) {
	v := render.Viewport{Bounds: a.store.Viewport()}
	a.store.SetViewport(v.Pan(dxFrac, dyFrac).Bounds)
}

// zoom scales the viewport and adjusts the zoom level, which can open or
// close the marker animation gate.
func (a *App) zoom(factor float64, zoomDelta float64) {
	v := render.Viewport{Bounds: a.store.Viewport()}
	a.store.SetViewport(v.Scale(factor).Bounds)
	a.store.SetZoom(a.store.Zoom() + zoomDelta)
}

// resetView restores the configured initial viewport and zoom.
func (a *App) resetView() {
	a.store.SetViewport(skyapi.Bounds{
		South: a.config.Map.South,
		West:  a.config.Map.West,
		North: a.config.Map.North,
		East:  a.config.Map.East,
	})
	a.store.SetZoom(a.config.Map.Zoom)
	a.addLog("INFO", "View reset")
}

// updateDetail refreshes the detail panel from the store.
func (a *App) updateDetail() {
	selected := a.store.Selected()
	cursor := a.cursorCallsign()

	var text string

	if selected == "" {
		if cursor != "" {
			text += fmt.Sprintf("[yellow]CURSOR:[-] [white]%s[-]\n", cursor)
			if snap, ok := a.store.Snapshot(cursor); ok {
				text += snapshotText(snap)
			}
			text += "\n[gray]ENTER to open details[-]\n"
		} else {
			text += "[gray]No aircraft selected[-]\n"
		}
		text += fmt.Sprintf("\n[gray]Aircraft:[-] [white]%d visible[-]\n", a.store.BatchSize())
		a.detail.SetText(text)
		return
	}

	text += fmt.Sprintf("[yellow]AIRCRAFT:[-] [white]%s[-]\n", selected)
	if snap, ok := a.store.Snapshot(selected); ok {
		text += snapshotText(snap)
	}

	detail := a.store.Detail()
	text += "\n"
	text += loadableLine("Flight", detail.State, func(st *skyapi.State) string {
		return fmt.Sprintf("%s → %s", orDash(st.DepartureIATA), orDash(st.ArrivalIATA))
	})
	text += loadableLine("Airframe", detail.Aircraft, func(info *skyapi.AircraftInfo) string {
		return fmt.Sprintf("%s (%s)", info.Model, info.Registration)
	})
	text += loadableLine("Airline", detail.Airline, func(al *skyapi.Airline) string {
		return al.Name
	})
	text += loadableLine("From", detail.DepartureAirport, func(ap *skyapi.Airport) string {
		return fmt.Sprintf("%s (%s)", ap.Name, ap.IATA)
	})
	text += loadableLine("To", detail.ArrivalAirport, func(ap *skyapi.Airport) string {
		return fmt.Sprintf("%s (%s)", ap.Name, ap.IATA)
	})
	text += loadableLine("Photos", detail.Photos, func(photos []skyapi.Photo) string {
		return fmt.Sprintf("%d available", len(photos))
	})

	a.detail.SetText(text)
}

// snapshotText formats the kinematic readout of one snapshot.
func snapshotText(snap skyapi.Snapshot) string {
	var text string
	text += fmt.Sprintf("[gray]Pos:[-]  [white]%.4f°, %.4f°[-]\n", snap.Lat, snap.Lon)
	if snap.Altitude != nil {
		text += fmt.Sprintf("[gray]Alt:[-]  [white]%.0f m[-]\n", *snap.Altitude)
	}
	if snap.GroundSpeed != nil {
		text += fmt.Sprintf("[gray]Spd:[-]  [white]%.0f m/s[-]\n", *snap.GroundSpeed)
	}
	if snap.Heading != nil {
		text += fmt.Sprintf("[gray]Hdg:[-]  [white]%.0f°[-]\n", *snap.Heading)
	}
	if snap.Model != nil {
		text += fmt.Sprintf("[gray]Type:[-] [white]%s[-]\n", *snap.Model)
	}
	return text
}

// loadableLine formats one detail slot with its load state.
func loadableLine[T any](label string, l store.Loadable[T], format func(T) string) string {
	switch l.Status {
	case store.StatusLoading:
		return fmt.Sprintf("[gray]%s:[-] [gray]loading...[-]\n", label)
	case store.StatusError:
		return fmt.Sprintf("[gray]%s:[-] [red]unavailable[-]\n", label)
	case store.StatusSuccess:
		return fmt.Sprintf("[gray]%s:[-] [white]%s[-]\n", label, format(l.Data))
	default:
		return ""
	}
}

func orDash(s string) string {
	if s == "" {
		return "---"
	}
	return s
}

// Stop stops the application
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.tviewApp.Stop()
}
