package render

import (
	"testing"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
	"github.com/JasperJeuken/SkyTracker/pkg/track"
)

func testViewport() Viewport {
	return Viewport{
		Bounds: skyapi.Bounds{South: 50.0, West: 3.0, North: 54.0, East: 7.0},
		Width:  80,
		Height: 40,
	}
}

func TestViewportCell(t *testing.T) {
	v := testViewport()

	t.Run("corners", func(t *testing.T) {
		x, y, ok := v.Cell(54.0, 3.0)
		if !ok || x != 0 || y != 0 {
			t.Errorf("Expected north-west corner at (0, 0), got (%d, %d) ok=%v", x, y, ok)
		}

		x, y, ok = v.Cell(52.0, 5.0)
		if !ok || x != 40 || y != 20 {
			t.Errorf("Expected center at (40, 20), got (%d, %d) ok=%v", x, y, ok)
		}
	})

	t.Run("outside bounds", func(t *testing.T) {
		if _, _, ok := v.Cell(60.0, 5.0); ok {
			t.Error("Expected position north of bounds to report outside")
		}
		if _, _, ok := v.Cell(52.0, 10.0); ok {
			t.Error("Expected position east of bounds to report outside")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		lat, lon := v.LatLon(40, 20)
		x, y, ok := v.Cell(lat, lon)
		if !ok || x != 40 || y != 20 {
			t.Errorf("Expected round trip back to (40, 20), got (%d, %d) ok=%v", x, y, ok)
		}
	})

	t.Run("degenerate bounds", func(t *testing.T) {
		bad := Viewport{Bounds: skyapi.Bounds{South: 52, North: 52, West: 3, East: 7}, Width: 80, Height: 40}
		if _, _, ok := bad.Cell(52.0, 5.0); ok {
			t.Error("Expected zero-span bounds to report outside")
		}
	})
}

func TestViewportPanScale(t *testing.T) {
	v := testViewport()

	panned := v.Pan(0.5, 0)
	if panned.Bounds.West != 5.0 || panned.Bounds.East != 9.0 {
		t.Errorf("Expected pan to shift bounds to [5, 9], got [%f, %f]", panned.Bounds.West, panned.Bounds.East)
	}

	zoomed := v.Scale(0.5)
	if zoomed.Bounds.South != 51.0 || zoomed.Bounds.North != 53.0 {
		t.Errorf("Expected scale to halve latitude span to [51, 53], got [%f, %f]", zoomed.Bounds.South, zoomed.Bounds.North)
	}
	centerBefore := (v.Bounds.East + v.Bounds.West) / 2
	centerAfter := (zoomed.Bounds.East + zoomed.Bounds.West) / 2
	if centerBefore != centerAfter {
		t.Errorf("Expected scale to preserve center %f, got %f", centerBefore, centerAfter)
	}
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		heading float64
		want    rune
	}{
		{0, '↑'},
		{45, '↗'},
		{90, '→'},
		{135, '↘'},
		{180, '↓'},
		{270, '←'},
		{359, '↑'},
		{-90, '←'},
		{450, '→'},
	}
	for _, tt := range tests {
		h := tt.heading
		if got := HeadingGlyph(&h); got != tt.want {
			t.Errorf("HeadingGlyph(%f) = %c, expected %c", tt.heading, got, tt.want)
		}
	}

	if got := HeadingGlyph(nil); got != '•' {
		t.Errorf("Expected dot for unknown heading, got %c", got)
	}
}

func batchWith(snaps ...skyapi.Snapshot) store.Batch {
	b := store.Batch{
		Snapshots:   make(map[string]skyapi.Snapshot, len(snaps)),
		RefreshedAt: time.Now(),
	}
	for _, s := range snaps {
		b.Snapshots[s.Callsign] = s
	}
	return b
}

func TestMarkerLayerRebuild(t *testing.T) {
	layer := NewMarkerLayer()

	layer.Rebuild(batchWith(
		skyapi.Snapshot{Callsign: "KLM1234", Lat: 52.0, Lon: 4.0},
		skyapi.Snapshot{Callsign: "BAW55", Lat: 51.5, Lon: 5.0},
	), "BAW55")

	if layer.Len() != 2 {
		t.Fatalf("Expected 2 markers, got %d", layer.Len())
	}

	markers := layer.Markers()
	last := markers[len(markers)-1]
	if last.Callsign != "BAW55" || !last.Selected {
		t.Errorf("Expected selected marker last, got %s selected=%v", last.Callsign, last.Selected)
	}

	// Rebuild drops aircraft that left the batch
	layer.Rebuild(batchWith(skyapi.Snapshot{Callsign: "KLM1234", Lat: 52.1, Lon: 4.1}), "")
	if layer.Len() != 1 {
		t.Errorf("Expected rebuild to drop missing aircraft, got %d markers", layer.Len())
	}
}

func TestMarkerLayerMove(t *testing.T) {
	layer := NewMarkerLayer()
	heading := 90.0
	layer.Rebuild(batchWith(
		skyapi.Snapshot{Callsign: "KLM1234", Lat: 52.0, Lon: 4.0, Heading: &heading},
	), "KLM1234")

	layer.Move("KLM1234", 52.0, 4.02)

	m := layer.Markers()[0]
	if m.Lat != 52.0 || m.Lon != 4.02 {
		t.Errorf("Expected marker at (52.0, 4.02), got (%f, %f)", m.Lat, m.Lon)
	}
	if !m.Selected || m.Heading == nil || *m.Heading != 90.0 {
		t.Error("Expected Move to leave style and heading untouched")
	}

	// Unknown callsigns are ignored
	layer.Move("NOPE1", 10, 10)
	if layer.Len() != 1 {
		t.Errorf("Expected 1 marker after moving unknown callsign, got %d", layer.Len())
	}
}

func TestMarkerLayerDraw(t *testing.T) {
	v := testViewport()
	layer := NewMarkerLayer()
	heading := 0.0
	layer.Rebuild(batchWith(
		skyapi.Snapshot{Callsign: "KLM1234", Lat: 52.0, Lon: 5.0, Heading: &heading},
	), "")

	c := NewCanvas(v.Width, v.Height)
	layer.Draw(c, v, 1)

	cell := c.At(40, 20)
	if !cell.Set || cell.Ch != '↑' {
		t.Errorf("Expected marker glyph at (40, 20), got %+v", cell)
	}
	shadow := c.At(41, 21)
	if !shadow.Set || shadow.Color != ColorDarkGray {
		t.Errorf("Expected shadow cell at (41, 21), got %+v", shadow)
	}

	// A selected marker gets a white callsign label next to it
	layer.Select("KLM1234")
	c.Clear()
	layer.Draw(c, v, 0)

	label := c.At(42, 20)
	if !label.Set || label.Ch != 'K' || label.Color != ColorWhite {
		t.Errorf("Expected white callsign label at (42, 20), got %+v", label)
	}
}

func TestDrawTrackReveal(t *testing.T) {
	v := testViewport()
	base := time.Now()
	alt := 6000.0
	history := []skyapi.HistoryPoint{
		{Lat: 52.0, Lon: 5.0, Altitude: &alt, Time: base.Add(60 * time.Second)},
		{Lat: 52.0, Lon: 4.5, Altitude: &alt, Time: base.Add(30 * time.Second)},
		{Lat: 52.0, Lon: 4.0, Altitude: &alt, Time: base},
	}
	segments := track.BuildSegments(history, nil, track.DefaultGapThreshold)

	c := NewCanvas(v.Width, v.Height)
	DrawTrack(c, v, segments, 1)

	// Only the oldest segment (lon 4.0 to 4.5) is revealed
	x0, y0, _ := v.Cell(52.0, 4.0)
	if !c.At(x0, y0).Set {
		t.Error("Expected revealed segment start drawn")
	}
	x2, y2, _ := v.Cell(52.0, 5.0)
	if c.At(x2, y2).Set {
		t.Error("Expected unrevealed segment end not drawn")
	}

	c.Clear()
	DrawTrack(c, v, segments, len(segments))
	if !c.At(x2, y2).Set {
		t.Error("Expected full track drawn when all segments revealed")
	}
}
