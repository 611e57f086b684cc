package render

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Common colors
var (
	ColorWhite     = Color{255, 255, 255}
	ColorDarkGray  = Color{64, 64, 64}
	ColorYellow    = Color{255, 255, 0}
	ColorLightBlue = Color{173, 216, 230}
)

// Cell is one character cell of the canvas.
type Cell struct {
	Ch    rune
	Color Color
	Bold  bool
	Set   bool
}

// Canvas is a fixed-size character grid that draw calls write into.
// Clients walk the cells after drawing and emit them through their
// terminal framework.
type Canvas struct {
	Width  int
	Height int
	cells  []Cell
}

// NewCanvas creates an empty canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
}

// Clear resets every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{}
	}
}

// Set writes a cell, ignoring out-of-bounds coordinates.
func (c *Canvas) Set(x, y int, ch rune, color Color) {
	c.SetStyled(x, y, ch, color, false)
}

// SetStyled writes a cell with an explicit bold flag.
func (c *Canvas) SetStyled(x, y int, ch rune, color Color, bold bool) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.cells[y*c.Width+x] = Cell{Ch: ch, Color: color, Bold: bold, Set: true}
}

// At returns the cell at the given coordinates.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return Cell{}
	}
	return c.cells[y*c.Width+x]
}

// Line draws a straight run of cells between two points using Bresenham's
// algorithm. Endpoints may lie outside the canvas; only in-bounds cells
// are written.
func (c *Canvas) Line(x0, y0, x1, y1 int, ch rune, color Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.Set(x0, y0, ch, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Text writes a string left to right starting at the given cell.
func (c *Canvas) Text(x, y int, text string, color Color) {
	for i, ch := range text {
		c.Set(x+i, y, ch, color)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
