// skyview is a lightweight list-based watcher for the aircraft in a
// configured area: a scrollable aircraft table with a live detail pane,
// without the full map rendering of skytracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JasperJeuken/SkyTracker/pkg/config"
	"github.com/JasperJeuken/SkyTracker/pkg/fetch"
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type model struct {
	store    *store.Store
	aircraft []skyapi.Snapshot
	cursor   int
	height   int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.aircraft)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(m.aircraft) {
				m.store.SelectAircraft(m.aircraft[m.cursor].Callsign)
			}
		case "esc":
			m.store.SelectAircraft("")
		}

	case tickMsg:
		m.refreshAircraft()
		return m, tick()
	}

	return m, nil
}

// refreshAircraft copies the store batch into a sorted display list.
func (m *model) refreshAircraft() {
	batch := m.store.Batch()

	m.aircraft = make([]skyapi.Snapshot, 0, len(batch.Snapshots))
	for _, snap := range batch.Snapshots {
		m.aircraft = append(m.aircraft, snap)
	}
	sort.Slice(m.aircraft, func(i, j int) bool {
		return m.aircraft[i].Callsign < m.aircraft[j].Callsign
	})

	if m.cursor >= len(m.aircraft) {
		m.cursor = 0
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("SKYVIEW"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d aircraft  %s\n\n",
		len(m.aircraft), time.Now().Format("15:04:05"))))

	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓: Select  ENTER: Details  ESC: Close  Q: Quit"))

	return b.String()
}

// renderList renders the aircraft table.
func (m model) renderList() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s %10s %10s %8s %8s %-10s\n",
		"CALLSIGN", "LAT", "LON", "ALT m", "SPD m/s", "TYPE")))

	selected := m.store.Selected()
	visible := m.visibleRows()

	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.aircraft) {
		end = len(m.aircraft)
	}

	for i := start; i < end; i++ {
		ac := m.aircraft[i]
		line := fmt.Sprintf("%-10s %10.4f %10.4f %8s %8s %-10s",
			ac.Callsign, ac.Lat, ac.Lon,
			fmtFloat(ac.Altitude, "%.0f"),
			fmtFloat(ac.GroundSpeed, "%.0f"),
			fmtString(ac.Model),
		)

		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line))
		case ac.Callsign == selected:
			b.WriteString(headerStyle.Render("* " + line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if len(m.aircraft) == 0 {
		b.WriteString(dimStyle.Render("  waiting for aircraft...\n"))
	}

	return b.String()
}

// visibleRows returns how many table rows fit in the terminal.
func (m model) visibleRows() int {
	// Header, detail pane, and help line take roughly 14 rows
	rows := m.height - 14
	if rows < 5 {
		rows = 5
	}
	return rows
}

// renderDetail renders the detail pane for the selected aircraft.
func (m model) renderDetail() string {
	selected := m.store.Selected()
	if selected == "" {
		return dimStyle.Render("No aircraft selected")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(selected))
	b.WriteString("\n")

	detail := m.store.Detail()
	b.WriteString(slotLine("Flight", detail.State, func(st *skyapi.State) string {
		return fmt.Sprintf("%s to %s", orUnknown(st.DepartureIATA), orUnknown(st.ArrivalIATA))
	}))
	b.WriteString(slotLine("Airframe", detail.Aircraft, func(info *skyapi.AircraftInfo) string {
		return fmt.Sprintf("%s (%s)", info.Model, info.Registration)
	}))
	b.WriteString(slotLine("Airline", detail.Airline, func(al *skyapi.Airline) string {
		return al.Name
	}))
	b.WriteString(slotLine("From", detail.DepartureAirport, func(ap *skyapi.Airport) string {
		return fmt.Sprintf("%s (%s)", ap.Name, ap.IATA)
	}))
	b.WriteString(slotLine("To", detail.ArrivalAirport, func(ap *skyapi.Airport) string {
		return fmt.Sprintf("%s (%s)", ap.Name, ap.IATA)
	}))

	history := m.store.History()
	b.WriteString(labelStyle.Render("Track:    "))
	b.WriteString(fmt.Sprintf("%d points\n", len(history)))

	return b.String()
}

// slotLine formats one detail slot with its load state.
func slotLine[T any](label string, l store.Loadable[T], format func(T) string) string {
	padded := fmt.Sprintf("%-9s ", label+":")
	switch l.Status {
	case store.StatusLoading:
		return labelStyle.Render(padded) + dimStyle.Render("loading...") + "\n"
	case store.StatusError:
		return labelStyle.Render(padded) + errorStyle.Render("unavailable") + "\n"
	case store.StatusSuccess:
		return labelStyle.Render(padded) + format(l.Data) + "\n"
	default:
		return ""
	}
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := skyapi.NewClient(skyapi.Config{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            cfg.API.APIKey,
		Timeout:           time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	st := store.New()
	st.SetViewport(skyapi.Bounds{
		South: cfg.Map.South,
		West:  cfg.Map.West,
		North: cfg.Map.North,
		East:  cfg.Map.East,
	})

	snapshotInterval := time.Duration(cfg.Refresh.SnapshotIntervalSeconds) * time.Second
	go fetch.NewSnapshotFetcher(client, st, snapshotInterval).Run(ctx)

	go fetch.NewDetailFetcher(client, st, fetch.DetailConfig{
		StateInterval: time.Duration(cfg.Refresh.StateIntervalSeconds) * time.Second,
		TrackDuration: fmt.Sprintf("%dm", cfg.Refresh.TrackDurationMinutes),
		TrackLimit:    cfg.Refresh.TrackLimit,
	}).Run(ctx)

	p := tea.NewProgram(model{store: st}, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
