// Package camera maps between screen pixels and world cells.
package camera

// Camera controls the viewport into the grid. World coordinates are in cells
// with y pointing up; screen coordinates are pixels with y pointing down.
// The world is bounded: the view is kept over the grid whenever the grid is
// larger than the viewport, and centered on it otherwise.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = CellSize pixels per cell)
	Zoom float32

	// CellSize is screen pixels per cell at zoom 1
	CellSize float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world at zoom 1.
func New(viewportW, viewportH, worldW, worldH, cellSize float32) *Camera {
	if cellSize <= 0 {
		cellSize = 1
	}
	c := &Camera{
		Zoom:      1.0,
		CellSize:  cellSize,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   8.0,
	}
	c.updateMinZoom()
	c.Reset()
	return c
}

// Scale returns the current screen pixels per cell.
func (c *Camera) Scale() float32 {
	return c.CellSize * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 - (wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y - (sy-c.ViewportH/2)/s
	return wx, wy
}

// WorldRect returns the screen rectangle covered by the whole grid.
func (c *Camera) WorldRect() (x, y, w, h float32) {
	x, y = c.WorldToScreen(0, c.WorldH)
	s := c.Scale()
	return x, y, c.WorldW * s, c.WorldH * s
}

// VisibleCells returns the inclusive range of grid cells at least partly on
// screen, clamped to the grid.
func (c *Camera) VisibleCells() (minX, minY, maxX, maxY int) {
	x0, y1 := c.ScreenToWorld(0, 0)
	x1, y0 := c.ScreenToWorld(c.ViewportW, c.ViewportH)

	minX = int(clamp(floor(x0), 0, c.WorldW-1))
	maxX = int(clamp(floor(x1), 0, c.WorldW-1))
	minY = int(clamp(floor(y0), 0, c.WorldH-1))
	maxY = int(clamp(floor(y1), 0, c.WorldH-1))
	return minX, minY, maxX, maxY
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateMinZoom()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X += dx / s
	c.Y -= dy / s
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the world point under (sx, sy) fixed on
// screen, as far as the bounds allow.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	s := c.Scale()
	c.X = wx - (sx-c.ViewportW/2)/s
	c.Y = wy + (sy-c.ViewportH/2)/s
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = clamp(1.0, c.MinZoom, c.MaxZoom)
}

func (c *Camera) updateMinZoom() {
	// Smallest zoom at which the whole grid still fits on screen, capped at 1
	fitW := c.ViewportW / (c.WorldW * c.CellSize)
	fitH := c.ViewportH / (c.WorldH * c.CellSize)
	c.MinZoom = min(fitW, fitH, 1)
}

// clampCenter keeps the view over the grid on each axis.
func (c *Camera) clampCenter() {
	s := c.Scale()
	c.X = clampAxis(c.X, c.ViewportW/(2*s), c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*s), c.WorldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

func floor(x float32) float32 {
	i := float32(int(x))
	if i > x {
		i--
	}
	return i
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
