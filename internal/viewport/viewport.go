// Package viewport maps device coordinates onto the canvas and tracks zoom and pan.
//
// Zoom is display-only: drawing geometry is never rescaled by it. Pointer positions are
// mapped by subtracting the surface origin, then optionally snapped to the grid.
package viewport

import (
	"math"

	"planboard/internal/geom"
	"planboard/internal/tool"
)

const (
	MinZoom     = 0.1
	MaxZoom     = 5.0
	DefaultZoom = 1.0

	// WheelStep is the zoom change per wheel event.
	WheelStep = 0.1
	// pinchScale and pinchDivisor turn a change in two-touch distance into a zoom delta.
	pinchScale   = 0.5
	pinchDivisor = 100.0
)

// State is the board-level zoom and pan. Zoom is always inside [MinZoom, MaxZoom].
type State struct {
	Zoom float64    `json:"zoom"`
	Pan  geom.Point `json:"pan"`
}

func Default() State {
	return State{Zoom: DefaultZoom}
}

// Normalize clamps the zoom; every update path goes through it.
func (s State) Normalize() State {
	if math.IsNaN(s.Zoom) {
		s.Zoom = DefaultZoom
	}
	s.Zoom = geom.Clamp(s.Zoom, MinZoom, MaxZoom)
	return s
}

// ToCanvasSpace subtracts the surface origin from a device position.
func ToCanvasSpace(device, origin geom.Point) geom.Point {
	return device.Sub(origin)
}

// Snap rounds each axis to the nearest multiple of the grid size when snapping is on.
func Snap(p geom.Point, ts tool.State) geom.Point {
	if !ts.SnapToGrid() {
		return p
	}
	g := float64(ts.GridSize())
	return geom.Point{X: math.Round(p.X/g) * g, Y: math.Round(p.Y/g) * g}
}

// UpdateZoom applies delta and clamps the result.
func UpdateZoom(current, delta float64) float64 {
	z := geom.Clamp(current+delta, MinZoom, MaxZoom)
	// Keep one decimal step exact so repeated wheel events land on 0.1 multiples.
	return math.Round(z*1e9) / 1e9
}

// Wheel maps a scroll event to a zoom change: scrolling down zooms out, up zooms in.
func (s State) Wheel(scrollDown bool) State {
	if scrollDown {
		s.Zoom = UpdateZoom(s.Zoom, -WheelStep)
	} else {
		s.Zoom = UpdateZoom(s.Zoom, WheelStep)
	}
	return s
}

// Pinch maps the change in two-touch distance to a zoom change.
func (s State) Pinch(prevDistance, distance float64) State {
	delta := (distance - prevDistance) * pinchScale / pinchDivisor
	s.Zoom = UpdateZoom(s.Zoom, delta)
	return s
}

// ZoomIn and ZoomOut are the toolbar button paths.
func (s State) ZoomIn() State  { return s.Wheel(false) }
func (s State) ZoomOut() State { return s.Wheel(true) }

// PanBy shifts the pan offset.
func (s State) PanBy(dx, dy float64) State {
	s.Pan = s.Pan.Add(geom.Point{X: dx, Y: dy})
	return s
}

// Reset restores the default zoom and clears the pan.
func (s State) Reset() State {
	return Default()
}

// TouchDistance is the distance between two touch points.
func TouchDistance(a, b geom.Point) float64 {
	return a.Dist(b)
}
