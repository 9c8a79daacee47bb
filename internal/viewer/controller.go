// Package viewer holds the interaction state of one explorer session and
// turns pointer and keyboard input into view changes and render requests.
package viewer

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tinytelemetry/mandelview/internal/escape"
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/plane"
	"github.com/tinytelemetry/mandelview/internal/render"
)

// Requester accepts frames to render. *render.Scheduler implements it.
type Requester interface {
	Request(render.Frame)
}

// Options configures a Controller.
type Options struct {
	Store     model.ViewStore // optional
	Key       string          // persistence key, defaults to model.DefaultViewKey
	Quality   int
	Palette   string
	Scheduler Requester // optional
	Width     int
	Height    int
	Presets   []Preset // defaults to BuiltinPresets
}

// Hover is the result of a trajectory query.
type Hover struct {
	Col    int          `json:"col"`
	Row    int          `json:"row"`
	Sample model.Sample `json:"sample"`
	// Path is the trajectory mapped back to raster units, newest first.
	Path []model.ScreenPoint `json:"path"`
}

// Controller is the single writer of a ViewState. It is not safe for
// concurrent use; each front end drives it from one goroutine.
type Controller struct {
	view    model.ViewState
	policy  palette.Policy
	store   model.ViewStore
	key     string
	sched   Requester
	presets []Preset

	// requested frame size; width and height are rounded up to the step.
	reqW, reqH    int
	width, height int
}

// New creates a controller, restoring the persisted view when one exists.
// A missing or unreadable saved view falls back to the defaults.
func New(opts Options) (*Controller, error) {
	name := opts.Palette
	if name == "" {
		name = model.DefaultPalette
	}
	p, err := palette.ByName(name)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		view:    model.DefaultView(),
		policy:  p,
		store:   opts.Store,
		key:     opts.Key,
		sched:   opts.Scheduler,
		presets: opts.Presets,
	}
	if c.key == "" {
		c.key = model.DefaultViewKey
	}
	if c.presets == nil {
		c.presets = BuiltinPresets()
	}
	if opts.Quality != 0 {
		c.view.Quality = model.ClampQuality(opts.Quality)
	}

	if c.store != nil {
		saved, err := c.store.LoadView(c.key)
		switch {
		case err == nil:
			c.view.Scale, c.view.XOffset, c.view.YOffset = saved.Scale, saved.XOffset, saved.YOffset
		case errors.Is(err, model.ErrNoSavedView):
		default:
			log.Printf("viewer: ignoring saved view %q: %v", c.key, err)
		}
	}
	c.view.Threshold = escape.Threshold(c.view.Scale)
	c.setSize(opts.Width, opts.Height)
	return c, nil
}

// View returns a snapshot of the current view.
func (c *Controller) View() model.ViewState { return c.view }

// Size returns the current frame size in raster units.
func (c *Controller) Size() (w, h int) { return c.width, c.height }

// Policy returns the active colour policy.
func (c *Controller) Policy() palette.Policy { return c.policy }

// Presets returns the available preset regions.
func (c *Controller) Presets() []Preset { return c.presets }

// Frame returns the render snapshot of the current state.
func (c *Controller) Frame() render.Frame {
	return render.NewFrame(c.view, c.width, c.height, c.policy)
}

// Zoom doubles (in) or halves the scale, keeping the frame centre fixed.
// At model.MinScale or model.MaxScale it does nothing and reports false.
func (c *Controller) Zoom(in bool) bool {
	scale := c.view.Scale / 2
	if in {
		scale = c.view.Scale * 2
	}
	if scale < model.MinScale || scale > model.MaxScale {
		return false
	}
	cx, cy := plane.Center(c.view)
	c.view.Scale = scale
	c.view = plane.CenterOn(c.view, cx, cy)
	c.trigger()
	return true
}

// Pan recentres the frame on the plane point under raster position (col, row).
func (c *Controller) Pan(col, row int) {
	x, y := plane.ToPlane(float64(col), float64(row), c.view, c.width, c.height)
	c.view = plane.CenterOn(c.view, x, y)
	c.trigger()
}

// Hover evaluates the point under (col, row) with its trajectory. It does not
// change the view or request a render.
func (c *Controller) Hover(col, row int) Hover {
	return Probe(c.view, c.width, c.height, col, row)
}

// Probe evaluates raster position (col, row) of a w×h frame of v and maps its
// trajectory back to raster units.
func Probe(v model.ViewState, w, h, col, row int) Hover {
	if v.Threshold <= 0 {
		v.Threshold = escape.Threshold(v.Scale)
	}
	x, y := plane.ToPlane(float64(col), float64(row), v, w, h)
	s := escape.Trace(x, y, v.Threshold)
	path := make([]model.ScreenPoint, 0, len(s.Trajectory))
	for _, p := range s.Trajectory {
		pc, pr := plane.ToScreen(p.X, p.Y, v, w, h)
		path = append(path, model.ScreenPoint{Col: pc, Row: pr})
	}
	return Hover{Col: col, Row: row, Sample: s, Path: path}
}

// Resize sets the frame size, rounding each side up to a multiple of the
// sampling step, and requests a render. It reports whether the size changed.
func (c *Controller) Resize(w, h int) bool {
	ow, oh := c.width, c.height
	c.setSize(w, h)
	c.trigger()
	return c.width != ow || c.height != oh
}

func (c *Controller) setSize(w, h int) {
	if w <= 0 {
		w = model.DefaultFrameWidth
	}
	if h <= 0 {
		h = model.DefaultFrameHeight
	}
	c.reqW, c.reqH = w, h
	step := c.view.Step()
	c.width = roundUp(w, step)
	c.height = roundUp(h, step)
}

func roundUp(n, step int) int {
	return (n + step - 1) / step * step
}

// SetQuality changes the sampling quality (clamped to 1..100).
func (c *Controller) SetQuality(q int) {
	q = model.ClampQuality(q)
	if q == c.view.Quality {
		return
	}
	c.view.Quality = q
	c.setSize(c.reqW, c.reqH)
	c.trigger()
}

// SetPalette selects a colour policy by name.
func (c *Controller) SetPalette(name string) error {
	p, err := palette.ByName(name)
	if err != nil {
		return err
	}
	c.policy = p
	c.trigger()
	return nil
}

// CyclePalette moves to the next policy and returns its name.
func (c *Controller) CyclePalette() string {
	c.policy = palette.Next(c.policy)
	c.trigger()
	return c.policy.Name()
}

// Jump moves to the named preset (case-insensitive) or, for "1".."9", to the
// preset at that position.
func (c *Controller) Jump(name string) (Preset, error) {
	p, ok := c.findPreset(name)
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	c.view = p.Apply(c.view)
	c.trigger()
	return p, nil
}

func (c *Controller) findPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		i := int(name[0] - '1')
		if i < len(c.presets) {
			return c.presets[i], true
		}
		return Preset{}, false
	}
	for _, p := range c.presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Reset returns to the default view, keeping quality and palette.
func (c *Controller) Reset() {
	q := c.view.Quality
	c.view = model.DefaultView()
	c.view.Quality = q
	c.trigger()
}

// Refresh requests a render of the unchanged state.
func (c *Controller) Refresh() { c.trigger() }

// Readout formats the informational text for the current view and hover.
func (c *Controller) Readout(h *Hover) model.Readout {
	return BuildReadout(c.view, c.policy.Name(), h)
}

func (c *Controller) trigger() {
	c.view.Threshold = escape.Threshold(c.view.Scale)
	if c.store != nil {
		if err := c.store.SaveView(c.key, c.view); err != nil {
			log.Printf("viewer: save view %q: %v", c.key, err)
		}
	}
	if c.sched != nil {
		c.sched.Request(c.Frame())
	}
}
