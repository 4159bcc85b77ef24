// Package camera maps between screen pixels and board coordinates.
package camera

import "github.com/pthm-cable/chernobyl/vec"

// Viewport shows the board below a fixed scoreboard header. The board can be
// zoomed and panned; it never wraps.
type Viewport struct {
	// Center is the board point shown in the middle of the board area
	Center vec.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Screen dimensions and the header strip above the board
	ScreenW, ScreenH float64
	Header           float64

	// Board dimensions
	BoardW, BoardH float64

	MinZoom, MaxZoom float64
}

// New creates a viewport centered on the board at 1:1 zoom.
func New(screenW, screenH, header, boardW, boardH float64) *Viewport {
	v := &Viewport{
		ScreenW: screenW,
		ScreenH: screenH,
		Header:  header,
		BoardW:  boardW,
		BoardH:  boardH,
		MinZoom: 1.0,
		MaxZoom: 4.0,
	}
	v.Reset()
	return v
}

// areaH is the screen height available to the board.
func (v *Viewport) areaH() float64 { return v.ScreenH - v.Header }

// BoardToScreen converts board coordinates to screen pixels.
func (v *Viewport) BoardToScreen(p vec.Vec) vec.Vec {
	return vec.New(
		v.ScreenW/2+(p.X-v.Center.X)*v.Zoom,
		v.Header+v.areaH()/2+(p.Y-v.Center.Y)*v.Zoom,
	)
}

// ScreenToBoard converts screen pixels to board coordinates. At 1:1 zoom
// this is a plain shift up by the header height.
func (v *Viewport) ScreenToBoard(s vec.Vec) vec.Vec {
	return vec.New(
		v.Center.X+(s.X-v.ScreenW/2)/v.Zoom,
		v.Center.Y+(s.Y-v.Header-v.areaH()/2)/v.Zoom,
	)
}

// InBoardArea reports whether a screen point lies below the header.
func (v *Viewport) InBoardArea(s vec.Vec) bool {
	return s.X >= 0 && s.X < v.ScreenW && s.Y >= v.Header && s.Y < v.ScreenH
}

// IsVisible returns true if a circle at p with the given radius could be
// visible on screen (conservative check for culling).
func (v *Viewport) IsVisible(p vec.Vec, radius float64) bool {
	minX, minY, maxX, maxY := v.VisibleBoardBounds()
	return p.X+radius >= minX && p.X-radius <= maxX &&
		p.Y+radius >= minY && p.Y-radius <= maxY
}

// VisibleBoardBounds returns the board-coordinate bounds of the visible area.
func (v *Viewport) VisibleBoardBounds() (minX, minY, maxX, maxY float64) {
	halfW := v.ScreenW / (2 * v.Zoom)
	halfH := v.areaH() / (2 * v.Zoom)
	return v.Center.X - halfW, v.Center.Y - halfH, v.Center.X + halfW, v.Center.Y + halfH
}

// Pan moves the view by the given delta in screen pixels, keeping the
// visible area on the board.
func (v *Viewport) Pan(dx, dy float64) {
	v.Center = vec.New(v.Center.X+dx/v.Zoom, v.Center.Y+dy/v.Zoom)
	v.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (v *Viewport) SetZoom(zoom float64) {
	v.Zoom = clamp(zoom, v.MinZoom, v.MaxZoom)
	v.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (v *Viewport) ZoomBy(factor float64) {
	v.SetZoom(v.Zoom * factor)
}

// Reset returns the view to the board center at 1:1 zoom.
func (v *Viewport) Reset() {
	v.Center = vec.New(v.BoardW/2, v.BoardH/2)
	v.Zoom = 1.0
}

// Resize updates the screen dimensions.
func (v *Viewport) Resize(screenW, screenH float64) {
	v.ScreenW = screenW
	v.ScreenH = screenH
	v.clampCenter()
}

func (v *Viewport) clampCenter() {
	halfW := v.ScreenW / (2 * v.Zoom)
	halfH := v.areaH() / (2 * v.Zoom)
	v.Center = vec.New(
		clampSpan(v.Center.X, halfW, v.BoardW),
		clampSpan(v.Center.Y, halfH, v.BoardH),
	)
}

// clampSpan keeps [c-half, c+half] inside [0, size], centering when the
// span is wider than the board.
func clampSpan(c, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(c, half, size-half)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
