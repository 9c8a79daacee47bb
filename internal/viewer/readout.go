package viewer

import (
	"math"
	"strconv"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const (
	minDigits = 4
	maxDigits = 12
)

// Digits is the number of significant digits shown for plane coordinates at
// the given scale: deeper zoom needs more digits to tell neighbours apart.
func Digits(scale float64) int {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return minDigits
	}
	d := minDigits + int(math.Ceil(math.Log10(scale)))
	return min(max(d, minDigits), maxDigits)
}

// FormatCoord formats f with the given significant digits. ok is false for
// values that cannot be shown (NaN, Inf); callers leave the field empty.
func FormatCoord(f float64, digits int) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'g', digits, 64), true
}

func formatScale(s float64) string {
	return strconv.FormatFloat(s, 'g', -1, 64)
}

// BuildReadout formats the informational readout for v. h may be nil when
// nothing is hovered.
func BuildReadout(v model.ViewState, paletteName string, h *Hover) model.Readout {
	digits := Digits(v.Scale)
	r := model.Readout{
		Scale:   formatScale(v.Scale),
		Quality: strconv.Itoa(model.ClampQuality(v.Quality)),
		Palette: paletteName,
	}
	if s, ok := FormatCoord(v.XOffset, digits); ok {
		r.XOffset = s
	}
	if s, ok := FormatCoord(v.YOffset, digits); ok {
		r.YOffset = s
	}
	if h == nil {
		return r
	}

	r.Iterations = strconv.Itoa(h.Sample.Iterations)
	x, okx := FormatCoord(h.Sample.Point.X, digits)
	y, oky := FormatCoord(h.Sample.Point.Y, digits)
	if okx && oky {
		r.Hover = x + ", " + y
	}
	return r
}
