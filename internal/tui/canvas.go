package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/plane"
)

const (
	halfBlock  = "▀"
	pathGlyph  = "•"
	pathMargin = 2 // segments further than this many frames away are skipped
)

var pathColor = color.RGBA{R: 0xff, A: 0xff}

// Each terminal cell shows two raster rows: the upper half as foreground of
// "▀" and the lower half as background.
type cellStyle struct {
	glyph  string
	fg, bg color.RGBA
}

// canvas renders a raster into terminal cells. Styles are cached per colour
// pair and the last output is reused while nothing changed.
type canvas struct {
	styles map[cellStyle]lipgloss.Style

	key canvasKey
	out string
}

type canvasKey struct {
	version uint64
	width   int
	rows    int
	overlay int
}

func newCanvas() *canvas {
	return &canvas{styles: make(map[cellStyle]lipgloss.Style)}
}

func (c *canvas) style(cs cellStyle) lipgloss.Style {
	if s, ok := c.styles[cs]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(palette.Hex(cs.fg))).
		Background(lipgloss.Color(palette.Hex(cs.bg)))
	c.styles[cs] = s
	return s
}

// pixels is the part of render.Raster the canvas reads.
type pixels interface {
	Version() uint64
	Snapshot() *image.RGBA
}

// render draws src into width×rows cells with the overlay marks (raster
// coordinates) on top. overlayID identifies the mark set for caching.
func (c *canvas) render(src pixels, width, rows int, marks map[model.ScreenPoint]struct{}, overlayID int) string {
	key := canvasKey{version: src.Version(), width: width, rows: rows, overlay: overlayID}
	if key == c.key && c.out != "" {
		return c.out
	}
	img := src.Snapshot()

	var b strings.Builder
	for y := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var cur cellStyle
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(c.style(cur).Render(run.String()))
				run.Reset()
			}
		}
		for x := range width {
			cs := cellStyle{glyph: halfBlock, fg: pixel(img, x, 2*y), bg: pixel(img, x, 2*y+1)}
			if marked(marks, x, y) {
				cs = cellStyle{glyph: pathGlyph, fg: pathColor, bg: cs.fg}
			}
			if cs != cur {
				flush()
				cur = cs
			}
			run.WriteString(cs.glyph)
		}
		flush()
	}

	c.key = key
	c.out = b.String()
	return c.out
}

func marked(marks map[model.ScreenPoint]struct{}, x, y int) bool {
	if len(marks) == 0 {
		return false
	}
	_, top := marks[model.ScreenPoint{Col: x, Row: 2 * y}]
	_, bottom := marks[model.ScreenPoint{Col: x, Row: 2*y + 1}]
	return top || bottom
}

func pixel(img *image.RGBA, x, y int) color.RGBA {
	if img == nil || !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return color.RGBA{A: 0xff}
	}
	return img.RGBAAt(x, y)
}

// trajectoryMarks connects consecutive trajectory points with straight lines
// and keeps the points that fall inside a w×h raster.
func trajectoryMarks(path []model.ScreenPoint, w, h int) map[model.ScreenPoint]struct{} {
	marks := make(map[model.ScreenPoint]struct{})
	in := func(p model.ScreenPoint) bool {
		return p.Col >= 0 && p.Col < w && p.Row >= 0 && p.Row < h
	}
	near := func(p model.ScreenPoint) bool {
		return p.Col >= -pathMargin*w && p.Col < (pathMargin+1)*w &&
			p.Row >= -pathMargin*h && p.Row < (pathMargin+1)*h
	}
	for i, p := range path {
		if in(p) {
			marks[p] = struct{}{}
		}
		if i == 0 || !near(p) || !near(path[i-1]) {
			continue
		}
		for _, q := range plane.Line(path[i-1], p) {
			if in(q) {
				marks[q] = struct{}{}
			}
		}
	}
	return marks
}
