package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/render"
)

func TestCanvasHalfBlocks(t *testing.T) {
	t.Parallel()

	r := render.NewRaster(3, 4)
	out := newCanvas().render(r, 3, 2, nil, 0)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, l := range lines {
		if got := strings.Count(l, halfBlock); got != 3 {
			t.Errorf("line %d has %d half blocks, want 3", i, got)
		}
	}
}

func TestCanvasOverlay(t *testing.T) {
	t.Parallel()

	r := render.NewRaster(4, 4)
	marks := map[model.ScreenPoint]struct{}{
		{Col: 1, Row: 1}: {},
		{Col: 3, Row: 2}: {},
	}
	out := newCanvas().render(r, 4, 2, marks, 1)

	lines := strings.Split(out, "\n")
	for i, l := range lines {
		if got := strings.Count(l, pathGlyph); got != 1 {
			t.Errorf("line %d has %d path marks, want 1", i, got)
		}
	}
}

type countingPixels struct {
	*render.Raster
	snapshots int
}

func (c *countingPixels) Snapshot() *image.RGBA {
	c.snapshots++
	return c.Raster.Snapshot()
}

func TestCanvasReusesOutputUntilPainted(t *testing.T) {
	t.Parallel()

	src := &countingPixels{Raster: render.NewRaster(2, 2)}
	c := newCanvas()
	first := c.render(src, 2, 1, nil, 0)
	c.render(src, 2, 1, nil, 0)
	if src.snapshots != 1 {
		t.Fatalf("snapshots = %d, want 1", src.snapshots)
	}

	src.PaintCell(0, 0, 1, 1, color.RGBA{R: 0xff, A: 0xff})
	c.render(src, 2, 1, nil, 0)
	if src.snapshots != 2 {
		t.Errorf("snapshots = %d after paint, want 2", src.snapshots)
	}
	c.render(src, 2, 1, nil, 1)
	if src.snapshots != 3 {
		t.Errorf("snapshots = %d after overlay change, want 3", src.snapshots)
	}
	if first == "" {
		t.Error("empty canvas output")
	}
}

func TestPixelOutOfBoundsIsBlack(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if got, want := pixel(img, 5, 5), (color.RGBA{A: 0xff}); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
	if got, want := pixel(nil, 0, 0), (color.RGBA{A: 0xff}); got != want {
		t.Errorf("pixel(nil) = %v, want %v", got, want)
	}
}

func TestTrajectoryMarks(t *testing.T) {
	t.Parallel()

	path := []model.ScreenPoint{{Col: 0, Row: 0}, {Col: 4, Row: 0}, {Col: 4, Row: 20}}
	marks := trajectoryMarks(path, 10, 10)

	// The horizontal segment is fully visible, the vertical one is clipped.
	for col := range 5 {
		if _, ok := marks[model.ScreenPoint{Col: col, Row: 0}]; !ok {
			t.Errorf("missing mark at (%d, 0)", col)
		}
	}
	if _, ok := marks[model.ScreenPoint{Col: 4, Row: 9}]; !ok {
		t.Error("missing mark at (4, 9)")
	}
	if _, ok := marks[model.ScreenPoint{Col: 4, Row: 10}]; ok {
		t.Error("mark outside the raster")
	}
	if got, want := len(marks), 5+9; got != want {
		t.Errorf("len(marks) = %d, want %d", got, want)
	}
}

func TestTrajectoryMarksSkipsFarSegments(t *testing.T) {
	t.Parallel()

	path := []model.ScreenPoint{{Col: 1, Row: 1}, {Col: 1_000_000, Row: 1}}
	marks := trajectoryMarks(path, 10, 10)
	if len(marks) != 1 {
		t.Errorf("len(marks) = %d, want 1", len(marks))
	}
}
