package render

import (
	"sort"
	"sync"

	"github.com/JasperJeuken/SkyTracker/pkg/store"
	"github.com/JasperJeuken/SkyTracker/pkg/track"
)

// Marker is one aircraft symbol on the map.
type Marker struct {
	Callsign string
	Lat      float64
	Lon      float64
	Heading  *float64
	Selected bool
}

// MarkerLayer holds the live set of aircraft markers. A batch refresh
// rebuilds the whole layer; animation frames only move individual markers
// in place, which keeps the per-frame work proportional to the number of
// moving aircraft.
type MarkerLayer struct {
	mu      sync.RWMutex
	markers map[string]*Marker
}

// NewMarkerLayer creates an empty layer.
func NewMarkerLayer() *MarkerLayer {
	return &MarkerLayer{
		markers: make(map[string]*Marker),
	}
}

// Rebuild replaces every marker from a fresh batch. Aircraft missing from
// the batch disappear; selection styling follows the given callsign.
func (l *MarkerLayer) Rebuild(batch store.Batch, selected string) {
	markers := make(map[string]*Marker, len(batch.Snapshots))
	for callsign, snap := range batch.Snapshots {
		markers[callsign] = &Marker{
			Callsign: callsign,
			Lat:      snap.Lat,
			Lon:      snap.Lon,
			Heading:  snap.Heading,
			Selected: callsign == selected,
		}
	}

	l.mu.Lock()
	l.markers = markers
	l.mu.Unlock()
}

// Move updates a single marker's coordinates without touching its style or
// glyph. Unknown callsigns are ignored; the next batch rebuild will pick
// them up.
func (l *MarkerLayer) Move(callsign string, lat, lon float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.markers[callsign]; ok {
		m.Lat = lat
		m.Lon = lon
	}
}

// Select restyles markers for a new selection without a rebuild.
func (l *MarkerLayer) Select(callsign string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for cs, m := range l.markers {
		m.Selected = cs == callsign
	}
}

// Markers returns a snapshot of the layer sorted by callsign with the
// selected marker last, so it draws on top.
func (l *MarkerLayer) Markers() []Marker {
	l.mu.RLock()
	out := make([]Marker, 0, len(l.markers))
	for _, m := range l.markers {
		out = append(out, *m)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Selected != out[j].Selected {
			return out[j].Selected
		}
		return out[i].Callsign < out[j].Callsign
	})
	return out
}

// Len returns the number of markers.
func (l *MarkerLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.markers)
}

// headingGlyphs maps compass octants to arrows, index 0 = north.
var headingGlyphs = []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// HeadingGlyph returns the arrow for a heading in degrees, or a dot when
// the heading is unknown.
func HeadingGlyph(heading *float64) rune {
	if heading == nil {
		return '•'
	}
	h := *heading
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	octant := int((h+22.5)/45.0) % 8
	return headingGlyphs[octant]
}

// Draw renders the layer onto the canvas. shadow > 0 draws a dark copy of
// each glyph offset down-right by that many cells underneath the marker.
func (l *MarkerLayer) Draw(c *Canvas, v Viewport, shadow int) {
	for _, m := range l.Markers() {
		x, y, ok := v.Cell(m.Lat, m.Lon)
		if !ok {
			continue
		}

		glyph := HeadingGlyph(m.Heading)
		if shadow > 0 {
			c.Set(x+shadow, y+shadow, glyph, ColorDarkGray)
		}

		color := ColorLightBlue
		if m.Selected {
			color = ColorYellow
		}
		c.SetStyled(x, y, glyph, color, m.Selected)

		if m.Selected {
			c.Text(x+2, y, m.Callsign, ColorWhite)
		}
	}
}

// DrawTrack renders the first revealed segments of a track. Pass
// revealed >= len(segments) to draw the whole track.
func DrawTrack(c *Canvas, v Viewport, segments []track.Segment, revealed int) {
	if revealed > len(segments) {
		revealed = len(segments)
	}
	for _, seg := range segments[:revealed] {
		x0, y0, ok0 := v.Cell(seg.StartLat, seg.StartLon)
		x1, y1, ok1 := v.Cell(seg.EndLat, seg.EndLon)
		if !ok0 && !ok1 {
			continue
		}

		r, g, b := track.SegmentColor(seg)
		ch := '·'
		if seg.Kind == track.KindGap {
			ch = '┄'
		}
		c.Line(x0, y0, x1, y1, ch, Color{r, g, b})
	}
}
