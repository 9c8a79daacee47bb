package render

import (
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/tinytelemetry/mandelview/internal/escape"
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/plane"
)

type countingYielder struct {
	mu    sync.Mutex
	calls int
	hook  func()
}

func (c *countingYielder) Yield(context.Context) {
	c.mu.Lock()
	c.calls++
	hook := c.hook
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (c *countingYielder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// rowHook runs a callback after each finished row.
type rowHook struct {
	*Raster
	onRow func(row int)
}

func (h rowHook) RowDone(row int) { h.onRow(row) }

func testFrame(quality, w, h int) Frame {
	v := model.DefaultView()
	v.Quality = quality
	return NewFrame(v, w, h, palette.Grayscale{})
}

func TestNewFrameDerivesThreshold(t *testing.T) {
	t.Parallel()

	v := model.DefaultView()
	v.Scale = 4
	v.Threshold = 1
	f := NewFrame(v, 10, 10, nil)
	if f.View.Threshold != 150 {
		t.Fatalf("threshold = %d, want 150", f.View.Threshold)
	}
	if f.Policy.Name() != "hsv" {
		t.Fatalf("policy = %q, want hsv", f.Policy.Name())
	}
}

func TestRenderFullQualityNeverYields(t *testing.T) {
	t.Parallel()

	f := testFrame(100, 35, 20)
	r := NewRaster(1, 1)
	y := &countingYielder{}
	res := Render(context.Background(), NewJob(1, f), r, y)

	if !res.Completed {
		t.Fatalf("result = %v, want completed", res)
	}
	if res.StopRow != -1 {
		t.Fatalf("StopRow = %d, want -1", res.StopRow)
	}
	if got := y.count(); got != 0 {
		t.Fatalf("yields = %d, want 0", got)
	}
	if w, h := r.Size(); w != 35 || h != 20 {
		t.Fatalf("raster size = %dx%d, want 35x20", w, h)
	}

	for _, p := range []model.ScreenPoint{{Col: 0, Row: 0}, {Col: 17, Row: 10}, {Col: 34, Row: 19}} {
		x, py := plane.ToPlane(float64(p.Col), float64(p.Row), f.View, f.Width, f.Height)
		want := f.Policy.Colorize(escape.Iterate(x, py, f.View.Threshold), f.View.Threshold)
		if got := r.At(p.Col, p.Row); got != want {
			t.Fatalf("At(%d,%d) = %v, want %v", p.Col, p.Row, got, want)
		}
	}
}

func TestRenderYieldsOnQualityRows(t *testing.T) {
	t.Parallel()

	// quality 50: step 2, yield on rows that are a multiple of 50.
	f := testFrame(50, 20, 120)
	y := &countingYielder{}
	res := Render(context.Background(), NewJob(1, f), NewRaster(20, 120), y)
	if !res.Completed {
		t.Fatalf("result = %v, want completed", res)
	}
	if got := y.count(); got != 3 {
		t.Fatalf("yields = %d, want 3 (rows 0, 50, 100)", got)
	}
}

func TestRenderPaintsStepBlocks(t *testing.T) {
	t.Parallel()

	// quality 25: step 4, each sample covers a 4x4 block.
	f := testFrame(25, 8, 8)
	r := NewRaster(8, 8)
	Render(context.Background(), NewJob(1, f), r, nil)

	for _, origin := range []model.ScreenPoint{{Col: 0, Row: 0}, {Col: 4, Row: 4}} {
		want := r.At(origin.Col, origin.Row)
		for dy := range 4 {
			for dx := range 4 {
				if got := r.At(origin.Col+dx, origin.Row+dy); got != want {
					t.Fatalf("At(%d,%d) = %v, want block colour %v", origin.Col+dx, origin.Row+dy, got, want)
				}
			}
		}
	}
}

func TestRenderStopsBetweenRowsAtFullQuality(t *testing.T) {
	t.Parallel()

	f := testFrame(100, 10, 10)
	job := NewJob(7, f)
	r := NewRaster(10, 10)
	painted := color.RGBA{R: 1, G: 2, B: 3, A: 0xff}
	for row := range 10 {
		r.PaintCell(0, row, 10, 1, painted)
	}
	sink := rowHook{Raster: r, onRow: func(row int) {
		if row == 3 {
			job.RequestStop()
		}
	}}

	res := Render(context.Background(), job, sink, nil)
	if res.Completed {
		t.Fatal("job completed, want stopped")
	}
	if res.StopRow != 3 {
		t.Fatalf("StopRow = %d, want 3", res.StopRow)
	}
	if res.Elapsed != 0 {
		t.Fatalf("Elapsed = %v, want 0 for a stopped job", res.Elapsed)
	}
	if job.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", job.State())
	}
	if job.Cursor() != 3 {
		t.Fatalf("cursor = %d, want 3", job.Cursor())
	}
	if got := r.At(0, 4); got != painted {
		t.Fatalf("row 4 = %v, want untouched %v", got, painted)
	}
	if got := r.At(0, 3); got == painted {
		t.Fatal("row 3 was not painted")
	}
}

func TestRenderStopFromYield(t *testing.T) {
	t.Parallel()

	f := testFrame(99, 10, 10) // step 1, yields after every row
	job := NewJob(1, f)
	y := &countingYielder{hook: func() { job.RequestStop() }}

	res := Render(context.Background(), job, NewRaster(10, 10), y)
	if res.Completed || res.StopRow != 0 {
		t.Fatalf("result = %+v, want stopped at row 0", res)
	}
}

func TestRenderAlreadyStoppedPaintsNothing(t *testing.T) {
	t.Parallel()

	job := NewJob(1, testFrame(100, 4, 4))
	job.RequestStop()
	r := NewRaster(4, 4)
	v := r.Version()

	res := Render(context.Background(), job, r, nil)
	if res.Completed || res.StopRow != -1 {
		t.Fatalf("result = %+v, want stopped before the first row", res)
	}
	if r.Version() != v {
		t.Fatal("raster was painted by a stopped job")
	}
}

func TestRenderHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Render(ctx, NewJob(1, testFrame(100, 4, 4)), NewRaster(4, 4), nil)
	if res.Completed {
		t.Fatal("completed with a cancelled context")
	}
}

func TestStopRowIsRowWhereStopObserved(t *testing.T) {
	t.Parallel()

	job := NewJob(1, testFrame(100, 4, 4))
	job.cursor.Store(2)
	if !job.RequestStop() {
		t.Fatal("first RequestStop = false, want true")
	}
	job.cursor.Store(3)
	if job.RequestStop() {
		t.Fatal("second RequestStop = true, want false")
	}
	res := job.finishStopped(time.Now())
	if res.StopRow != 3 {
		t.Fatalf("StopRow = %d, want 3", res.StopRow)
	}
	job.cursor.Store(4)
	if res := job.finishStopped(time.Now()); res.StopRow != 3 {
		t.Fatalf("second finish StopRow = %d, want 3", res.StopRow)
	}
}

type cellHook struct {
	*Raster
	onCell func(col, row int)
}

func (h cellHook) PaintCell(col, row, w, ht int, c color.RGBA) {
	h.onCell(col, row)
	h.Raster.PaintCell(col, row, w, ht, c)
}

func TestRenderStopMidRowRecordsFinishedRow(t *testing.T) {
	t.Parallel()

	f := testFrame(100, 10, 10)
	job := NewJob(3, f)
	r := NewRaster(10, 10)
	sink := cellHook{Raster: r, onCell: func(col, row int) {
		if row == 3 && col == 5 {
			job.RequestStop()
		}
	}}

	res := Render(context.Background(), job, sink, nil)
	if res.Completed {
		t.Fatal("job completed, want stopped")
	}
	if res.StopRow != 3 {
		t.Fatalf("StopRow = %d, want 3 (row in flight when the stop arrived)", res.StopRow)
	}
}

func TestResultRecord(t *testing.T) {
	t.Parallel()

	f := testFrame(100, 30, 20)
	f.Generation = 9
	rec := Result{Generation: 9, Frame: f, Completed: true, StopRow: -1}.Record()
	if rec.Palette != "grayscale" || rec.Width != 30 || rec.Height != 20 || rec.Generation != 9 {
		t.Fatalf("record = %+v", rec)
	}
}
