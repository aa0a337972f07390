package viz

import "strings"

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid. Coordinates passed to its methods are in
// dots, so a canvas of Width x Height cells is 2*Width x 4*Height dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. Every step-th dot is
// drawn, so step 2 gives a dotted line.
func (c *Canvas) DrawLine(x0, y0, x1, y1, step int) {
	if step < 1 {
		step = 1
	}
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for n := 0; ; n++ {
		if n%step == 0 {
			c.Set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillBox lights every dot of the rectangle centered on (cx, cy).
func (c *Canvas) FillBox(cx, cy, rx, ry int) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			c.Set(x, y)
		}
	}
}

// Frame draws the outline of the rectangle centered on (cx, cy).
func (c *Canvas) Frame(cx, cy, rx, ry int) {
	c.DrawLine(cx-rx, cy-ry, cx+rx, cy-ry, 1)
	c.DrawLine(cx-rx, cy+ry, cx+rx, cy+ry, 1)
	c.DrawLine(cx-rx, cy-ry, cx-rx, cy+ry, 1)
	c.DrawLine(cx+rx, cy-ry, cx+rx, cy+ry, 1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
