// Package plane maps between raster coordinates and the complex plane.
//
// The whole raster always covers a fixed base window of the plane, 3.5 units
// along the real axis and 2 along the imaginary axis, starting at (-2.5, -1).
// Scale and offsets are applied on top of that window.
package plane

import (
	"math"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const (
	baseWidth  = 3.5
	baseHeight = 2.0
	baseLeft   = 2.5
	baseTop    = 1.0
)

// ToPlane returns the plane coordinate of raster position (col, row) in a
// frame of w×h raster units.
func ToPlane(col, row float64, v model.ViewState, w, h int) (x, y float64) {
	x = col/float64(w)*baseWidth/v.Scale - baseLeft/v.Scale + v.XOffset
	y = row/float64(h)*baseHeight/v.Scale - baseTop/v.Scale - v.YOffset
	return x, y
}

// ToScreen is the inverse of ToPlane, floored to whole raster units.
// A round trip may be off by one unit.
func ToScreen(x, y float64, v model.ViewState, w, h int) (col, row int) {
	fc := ((x-v.XOffset)*v.Scale + baseLeft) / baseWidth * float64(w)
	fr := ((y+v.YOffset)*v.Scale + baseTop) / baseHeight * float64(h)
	return int(math.Floor(fc)), int(math.Floor(fr))
}

// Center returns the plane point shown at the middle of the frame.
// It does not depend on the frame size.
func Center(v model.ViewState) (x, y float64) {
	return (baseWidth/2-baseLeft)/v.Scale + v.XOffset, (baseHeight/2-baseTop)/v.Scale - v.YOffset
}

// CenterOn returns v with offsets moved so that (x, y) is the frame centre.
func CenterOn(v model.ViewState, x, y float64) model.ViewState {
	v.XOffset = x - (baseWidth/2-baseLeft)/v.Scale
	v.YOffset = (baseHeight/2-baseTop)/v.Scale - y
	return v
}

// Span returns the width and height of the visible plane region.
func Span(v model.ViewState) (w, h float64) {
	return baseWidth / v.Scale, baseHeight / v.Scale
}

// Line returns the raster points from a to b inclusive (Bresenham).
func Line(a, b model.ScreenPoint) []model.ScreenPoint {
	dx := abs(b.Col - a.Col)
	dy := -abs(b.Row - a.Row)
	sx, sy := 1, 1
	if a.Col > b.Col {
		sx = -1
	}
	if a.Row > b.Row {
		sy = -1
	}

	pts := make([]model.ScreenPoint, 0, max(dx, -dy)+1)
	err := dx + dy
	p := a
	for {
		pts = append(pts, p)
		if p == b {
			return pts
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.Col += sx
		}
		if e2 <= dx {
			err += dx
			p.Row += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
