package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/draw"
)

// Raster is an in-memory RGBA paint sink. It is safe to paint from the render
// goroutine while another goroutine reads it.
type Raster struct {
	mu      sync.RWMutex
	img     *image.RGBA
	version uint64
}

// NewRaster allocates a black raster of w×h pixels.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.resize(w, h)
	return r
}

func (r *Raster) resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
	if r.img != nil {
		// Keep what was already painted where the two sizes overlap.
		draw.Draw(img, r.img.Bounds(), r.img, image.Point{}, draw.Src)
	}
	r.img = img
	r.version++
}

// BeginFrame resizes the raster when the frame size changed.
func (r *Raster) BeginFrame(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b := r.img.Bounds(); b.Dx() != w || b.Dy() != h {
		r.resize(w, h)
	}
}

// EndFrame is a no-op; a stopped frame stays partially painted.
func (r *Raster) EndFrame(bool) {}

// PaintCell fills a w×h block at (col, row), clipped to the raster.
func (r *Raster) PaintCell(col, row, w, h int, c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rect := image.Rect(col, row, col+w, row+h).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	if rect.Dx() == 1 && rect.Dy() == 1 {
		r.img.SetRGBA(rect.Min.X, rect.Min.Y, c)
	} else {
		draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
	}
	r.version++
}

// At returns the pixel at (col, row); outside the raster it is black.
func (r *Raster) At(col, row int) color.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !(image.Point{X: col, Y: row}.In(r.img.Bounds())) {
		return color.RGBA{A: 0xff}
	}
	return r.img.RGBAAt(col, row)
}

// Size returns the raster dimensions.
func (r *Raster) Size() (w, h int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Version changes every time the raster is painted or resized.
func (r *Raster) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Snapshot returns a copy of the current pixels.
func (r *Raster) Snapshot() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := image.NewRGBA(r.img.Bounds())
	copy(out.Pix, r.img.Pix)
	return out
}

// EncodePNG writes the current pixels as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.Snapshot()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
