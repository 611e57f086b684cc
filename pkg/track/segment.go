// Package track converts an aircraft's history into drawable polyline
// segments. Adjacent history points close in time form continuous segments
// colored by altitude; larger time gaps are rendered as distinct gap
// segments; a synthetic live segment connects the newest point to the
// aircraft's animated position. The revealer animates the progressive
// drawing of a freshly loaded track.
package track

import (
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/geo"
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

const (
	// DefaultGapThreshold is the maximum time between adjacent history
	// points that still counts as continuous flight. Larger deltas are
	// rendered as gaps (missed coverage, data outage).
	DefaultGapThreshold = 180 * time.Second

	// MaxRampAltitude is the altitude in meters mapped to the hottest
	// track color; higher altitudes clamp to it.
	MaxRampAltitude = 12000.0
)

// Kind classifies a track segment.
type Kind int

const (
	// KindContinuous is a normal segment between two close-in-time points
	KindContinuous Kind = iota

	// KindGap bridges two points separated by more than the gap threshold
	KindGap

	// KindLive connects the newest history point to the animated position
	KindLive
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindContinuous:
		return "continuous"
	case KindGap:
		return "gap"
	case KindLive:
		return "live"
	default:
		return "unknown"
	}
}

// Segment is one drawable piece of a track. Start is the older end.
// Segments are derived from history on every change, never stored.
type Segment struct {
	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64

	// StartAlt, EndAlt are altitudes in meters, nil when not reported
	StartAlt *float64
	EndAlt   *float64

	StartTime time.Time
	EndTime   time.Time

	Kind Kind
}

// BuildSegments converts history (most recent first) into segments ordered
// oldest first. For N history points (N >= 2) it produces exactly N-1
// history segments whose time spans cover [oldest, newest] without overlap.
// When live is non-nil an additional live segment connects the newest point
// to the animated position; it carries the newest point's altitude at both
// ends and is always last.
func BuildSegments(history []skyapi.HistoryPoint, live *geo.Position, gapThreshold time.Duration) []Segment {
	var segments []Segment

	for i := len(history) - 1; i >= 1; i-- {
		older := history[i]
		newer := history[i-1]

		kind := KindContinuous
		if newer.Time.Sub(older.Time) > gapThreshold {
			kind = KindGap
		}

		segments = append(segments, Segment{
			StartLat:  older.Lat,
			StartLon:  older.Lon,
			EndLat:    newer.Lat,
			EndLon:    newer.Lon,
			StartAlt:  older.Altitude,
			EndAlt:    newer.Altitude,
			StartTime: older.Time,
			EndTime:   newer.Time,
			Kind:      kind,
		})
	}

	if live != nil && len(history) > 0 {
		newest := history[0]
		segments = append(segments, Segment{
			StartLat:  newest.Lat,
			StartLon:  newest.Lon,
			EndLat:    live.Lat,
			EndLon:    live.Lon,
			StartAlt:  newest.Altitude,
			EndAlt:    newest.Altitude,
			StartTime: newest.Time,
			EndTime:   newest.Time,
			Kind:      KindLive,
		})
	}

	return segments
}

// AltitudeColor maps an altitude in meters onto a linear blue-to-red ramp:
// blue at sea level, red at MaxRampAltitude and above.
func AltitudeColor(altMeters float64) (r, g, b uint8) {
	t := altMeters / MaxRampAltitude
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint8(255 * t), 0, uint8(255 * (1 - t))
}

// SegmentColor returns the draw color for a segment. Continuous segments are
// colored by the altitude of their newer end; gap segments use a neutral
// gray, live segments the newest known altitude.
func SegmentColor(seg Segment) (r, g, b uint8) {
	if seg.Kind == KindGap {
		return 128, 128, 128
	}
	if seg.EndAlt == nil {
		return 128, 128, 128
	}
	return AltitudeColor(*seg.EndAlt)
}
