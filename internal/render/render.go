// Package render computes Mandelbrot frames row by row into a paint sink.
//
// A Scheduler debounces interactive requests and keeps renders strictly
// serialized: a newer job asks the running one to stop and waits for it to
// finish before painting anything.
package render

import (
	"context"
	"image/color"
	"time"

	"github.com/tinytelemetry/mandelview/internal/escape"
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/plane"
)

// Sink receives painted cells in raster units.
type Sink interface {
	PaintCell(col, row, w, h int, c color.RGBA)
}

// FrameObserver is implemented by sinks that need to know when a frame starts
// and ends (to resize, or to flush).
type FrameObserver interface {
	BeginFrame(width, height int)
	EndFrame(completed bool)
}

// RowSink is implemented by sinks that act once per finished row.
type RowSink interface {
	RowDone(row int)
}

// Frame is the immutable snapshot a job renders.
type Frame struct {
	View       model.ViewState
	Width      int
	Height     int
	Policy     palette.Policy
	Generation uint64
}

// NewFrame builds a frame for v, deriving the threshold from the scale.
func NewFrame(v model.ViewState, width, height int, p palette.Policy) Frame {
	v.Threshold = escape.Threshold(v.Scale)
	v.Quality = model.ClampQuality(v.Quality)
	if p == nil {
		p = palette.Default()
	}
	return Frame{View: v, Width: width, Height: height, Policy: p}
}

// Render runs job to completion or until it is asked to stop, painting into
// sink. The stop signal and ctx are checked between rows only. A nil yielder
// disables yielding.
func Render(ctx context.Context, job *Job, sink Sink, y Yielder) Result {
	started := time.Now()
	if !job.start() || job.StopRequested() || ctx.Err() != nil {
		return job.finishStopped(started)
	}

	f := job.Frame
	v := f.View
	step := v.Step()
	policy := f.Policy
	if policy == nil {
		policy = palette.Default()
	}

	obs, _ := sink.(FrameObserver)
	rows, _ := sink.(RowSink)
	if obs != nil {
		obs.BeginFrame(f.Width, f.Height)
	}

	for row := 0; row < f.Height; row += step {
		for col := 0; col < f.Width; col += step {
			x, py := plane.ToPlane(float64(col), float64(row), v, f.Width, f.Height)
			n := escape.Iterate(x, py, v.Threshold)
			sink.PaintCell(col, row, step, step, policy.Colorize(n, v.Threshold))
		}
		job.cursor.Store(int64(row))
		if rows != nil {
			rows.RowDone(row)
		}

		if y != nil && shouldYield(row, v.Quality) {
			y.Yield(ctx)
		}
		if ctx.Err() != nil {
			job.RequestStop()
		}
		if job.StopRequested() {
			if obs != nil {
				obs.EndFrame(false)
			}
			return job.finishStopped(started)
		}
	}

	if obs != nil {
		obs.EndFrame(true)
	}
	return job.finish(Result{
		Generation: job.Gen,
		Frame:      f,
		StartedAt:  started,
		Completed:  true,
		Elapsed:    time.Since(started),
		StopRow:    -1,
	})
}
