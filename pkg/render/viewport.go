// Package render draws aircraft markers and track polylines onto a
// character-cell canvas. It is terminal-framework agnostic: clients map the
// resulting cells onto tcell or lipgloss styles themselves.
package render

import (
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

// Viewport maps geographic coordinates onto a character grid using an
// equirectangular projection of the visible bounds.
type Viewport struct {
	Bounds skyapi.Bounds
	Width  int
	Height int
}

// Cell converts a position to grid coordinates. ok is false when the
// position falls outside the viewport; the returned coordinates are still
// valid on the projection plane so callers can clip lines against the grid.
func (v Viewport) Cell(lat, lon float64) (x, y int, ok bool) {
	lonSpan := v.Bounds.East - v.Bounds.West
	latSpan := v.Bounds.North - v.Bounds.South
	if lonSpan <= 0 || latSpan <= 0 || v.Width <= 0 || v.Height <= 0 {
		return 0, 0, false
	}

	x = int((lon - v.Bounds.West) / lonSpan * float64(v.Width))
	y = int((v.Bounds.North - lat) / latSpan * float64(v.Height))

	ok = x >= 0 && x < v.Width && y >= 0 && y < v.Height
	return x, y, ok
}

// LatLon converts grid coordinates back to the geographic position at the
// cell's top-left corner. Inverse of Cell up to cell quantization.
func (v Viewport) LatLon(x, y int) (lat, lon float64) {
	lon = v.Bounds.West + float64(x)/float64(v.Width)*(v.Bounds.East-v.Bounds.West)
	lat = v.Bounds.North - float64(y)/float64(v.Height)*(v.Bounds.North-v.Bounds.South)
	return lat, lon
}

// Pan shifts the bounds by the given fraction of the visible span.
func (v Viewport) Pan(dxFrac, dyFrac float64) Viewport {
	lonSpan := v.Bounds.East - v.Bounds.West
	latSpan := v.Bounds.North - v.Bounds.South
	v.Bounds.West += dxFrac * lonSpan
	v.Bounds.East += dxFrac * lonSpan
	v.Bounds.South += dyFrac * latSpan
	v.Bounds.North += dyFrac * latSpan
	return v
}

// Scale zooms the bounds around their center. factor < 1 zooms in.
func (v Viewport) Scale(factor float64) Viewport {
	centerLat := (v.Bounds.North + v.Bounds.South) / 2
	centerLon := (v.Bounds.East + v.Bounds.West) / 2
	halfLat := (v.Bounds.North - v.Bounds.South) / 2 * factor
	halfLon := (v.Bounds.East - v.Bounds.West) / 2 * factor
	v.Bounds.South = centerLat - halfLat
	v.Bounds.North = centerLat + halfLat
	v.Bounds.West = centerLon - halfLon
	v.Bounds.East = centerLon + halfLon
	return v
}
