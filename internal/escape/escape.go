// Package escape classifies points of the complex plane by escape time.
package escape

import (
	"math"

	"github.com/tinytelemetry/mandelview/internal/model"
)

// BaseThreshold is the iteration cap at scale 1.
const BaseThreshold = model.DefaultThreshold

// Threshold returns the iteration cap for a zoom scale:
// BaseThreshold × max(1, log2(scale)+1), truncated.
func Threshold(scale float64) int {
	f := math.Max(1, math.Log2(scale)+1)
	t := int(BaseThreshold * f)
	if t < BaseThreshold {
		return BaseThreshold
	}
	return t
}

// Iterate runs z ← z² + c from z = c = (x0, y0) and returns the number of
// iterations performed before |z|² exceeded 4, or threshold if it never did.
// Points already outside radius 2 return 0.
func Iterate(x0, y0 float64, threshold int) int {
	if threshold < 1 {
		threshold = 1
	}
	x, y := x0, y0
	n := 0
	for x*x+y*y <= 4 {
		n++
		if n >= threshold {
			break
		}
		x, y = x*x-y*y+x0, 2*x*y+y0
	}
	return n
}

// Trace is Iterate with trajectory capture for a single hover query. The
// returned sample holds the starting point and the iterates that followed,
// newest first, capped at model.MaxTrajectory.
func Trace(x0, y0 float64, threshold int) model.Sample {
	if threshold < 1 {
		threshold = 1
	}
	var ring trajectory
	x, y := x0, y0
	ring.push(x, y)
	n := 0
	for x*x+y*y <= 4 {
		n++
		if n >= threshold {
			break
		}
		x, y = x*x-y*y+x0, 2*x*y+y0
		ring.push(x, y)
	}
	return model.Sample{
		Point:      model.Point{X: x0, Y: y0},
		Iterations: n,
		Threshold:  threshold,
		Trajectory: ring.newestFirst(),
	}
}

// trajectory is a fixed ring holding the most recent iterates.
type trajectory struct {
	buf  [model.MaxTrajectory]model.Point
	next int
	size int
}

func (t *trajectory) push(x, y float64) {
	t.buf[t.next] = model.Point{X: x, Y: y}
	t.next = (t.next + 1) % len(t.buf)
	if t.size < len(t.buf) {
		t.size++
	}
}

func (t *trajectory) newestFirst() []model.Point {
	out := make([]model.Point, t.size)
	idx := t.next
	for i := range out {
		idx = (idx - 1 + len(t.buf)) % len(t.buf)
		out[i] = t.buf[idx]
	}
	return out
}
