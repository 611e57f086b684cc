package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/JasperJeuken/SkyTracker/pkg/render"
)

// MapView is the map panel. Every draw projects the current viewport onto
// the panel's inner rectangle, renders the revealed track segments and the
// marker layer onto a canvas, and blits the canvas to the screen.
type MapView struct {
	*tview.Box
	app *App
}

// NewMapView creates the map panel.
func NewMapView(app *App) *MapView {
	m := &MapView{
		Box: tview.NewBox(),
		app: app,
	}
	m.SetBorder(true).SetTitle(" Sky Map ")
	m.SetDrawFunc(m.draw)
	return m
}

// draw renders the map into the panel's inner rectangle.
func (m *MapView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	innerX, innerY, innerW, innerH := m.GetInnerRect()
	if innerW <= 0 || innerH <= 0 {
		return innerX, innerY, innerW, innerH
	}

	viewport := render.Viewport{
		Bounds: m.app.store.Viewport(),
		Width:  innerW,
		Height: innerH,
	}
	canvas := render.NewCanvas(innerW, innerH)

	// Track under the markers
	segments, drawCount := m.app.trackDrawCount()
	render.DrawTrack(canvas, viewport, segments, drawCount)

	shadow := 0
	if m.app.store.Settings().ShadowOffset {
		shadow = m.app.config.Map.ShadowOffset
	}
	m.app.markers.Draw(canvas, viewport, shadow)

	for cy := 0; cy < innerH; cy++ {
		for cx := 0; cx < innerW; cx++ {
			cell := canvas.At(cx, cy)
			if !cell.Set {
				continue
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(cell.Color.R), int32(cell.Color.G), int32(cell.Color.B)))
			if cell.Bold {
				style = style.Bold(true)
			}
			screen.SetContent(innerX+cx, innerY+cy, cell.Ch, nil, style)
		}
	}

	return innerX, innerY, innerW, innerH
}
