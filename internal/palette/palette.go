// Package palette turns escape-time iteration counts into colours.
//
// Four policies are available: linear, quartic, grayscale and hsv. Exactly one
// is active per render; every policy paints non-escaping points black.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Inside is the colour of points that never escaped.
var Inside = color.RGBA{A: 0xff}

// Policy maps an iteration count n, out of a threshold t, to a colour.
type Policy interface {
	Name() string
	Colorize(n, t int) color.RGBA
}

// Linear ramps a single channel: the ratio becomes a 24-bit value < 256.
type Linear struct{}

// Quartic raises the ramp value to the fourth power and keeps its six most
// significant hex digits, producing sharp banding near the set.
type Quartic struct{}

// Grayscale replicates the ramp value into all three channels. A ramp value
// below 0x10 is a single hex digit and reads as the short form #vvv, so it
// expands to 0xvv.
type Grayscale struct{}

// HSV drives hue, saturation and value from the ratio.
type HSV struct{}

func (Linear) Name() string    { return "linear" }
func (Quartic) Name() string   { return "quartic" }
func (Grayscale) Name() string { return "grayscale" }
func (HSV) Name() string       { return "hsv" }

func (Linear) Colorize(n, t int) color.RGBA {
	if n >= t {
		return Inside
	}
	return fromRGB24(uint32(ramp(n, t)))
}

func (Quartic) Colorize(n, t int) color.RGBA {
	if n >= t {
		return Inside
	}
	v := uint64(ramp(n, t))
	return fromRGB24(uint32(leadingHex6(v * v * v * v)))
}

func (Grayscale) Colorize(n, t int) color.RGBA {
	if n >= t {
		return Inside
	}
	g := uint8(ramp(n, t))
	if g < 0x10 {
		g *= 0x11
	}
	return color.RGBA{R: g, G: g, B: g, A: 0xff}
}

func (HSV) Colorize(n, t int) color.RGBA {
	if n >= t {
		return Inside
	}
	ratio := float64(n) / float64(t)
	turns := math.Floor(256/float64(t)*float64(n)) / 125
	_, frac := math.Modf(turns)
	r, g, b := colorful.Hsv(frac*360, ratio, ratio).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// ramp is floor(n/t × 256), in [0, 255] for 0 <= n < t.
func ramp(n, t int) int {
	if n <= 0 || t <= 0 {
		return 0
	}
	return int(math.Floor(float64(n) / float64(t) * 256))
}

// leadingHex6 keeps the six most significant hex digits of v.
func leadingHex6(v uint64) uint64 {
	for v > 0xffffff {
		v >>= 4
	}
	return v
}

func fromRGB24(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var policies = []Policy{Linear{}, Quartic{}, Grayscale{}, HSV{}}

// Names lists the policy names in cycling order.
func Names() []string {
	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = p.Name()
	}
	return names
}

// ByName returns the policy with the given (case-insensitive) name.
func ByName(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range policies {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("palette: unknown policy %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// Default returns the hsv policy.
func Default() Policy { return HSV{} }

// Next returns the policy after p in cycling order.
func Next(p Policy) Policy {
	for i, q := range policies {
		if q.Name() == p.Name() {
			return policies[(i+1)%len(policies)]
		}
	}
	return policies[0]
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
