package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/draw"

	"github.com/tinytelemetry/mandelview/internal/escape"
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/render"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// frameQuery is the view part of /api/frame.png and /api/sample. Missing
// scale or offsets come from the saved view.
type frameQuery struct {
	Width   int      `form:"width"`
	Height  int      `form:"height"`
	Scale   *float64 `form:"scale"`
	X       *float64 `form:"x"`
	Y       *float64 `form:"y"`
	Quality int      `form:"quality"`
	Palette string   `form:"palette"`
	Thumb   int      `form:"thumb"`
}

type sampleQuery struct {
	frameQuery
	Col int `form:"col"`
	Row int `form:"row"`
}

// savedView returns the persisted view or the defaults.
func (s *Server) savedView() model.ViewState {
	v := model.DefaultView()
	saved, err := s.store.LoadView(model.DefaultViewKey)
	switch {
	case err == nil:
		v.Scale, v.XOffset, v.YOffset = saved.Scale, saved.XOffset, saved.YOffset
	case errors.Is(err, model.ErrNoSavedView):
	default:
		log.Printf("httpserver: ignoring saved view: %v", err)
	}
	v.Threshold = escape.Threshold(v.Scale)
	return v
}

func (s *Server) resolveFrame(q frameQuery) (render.Frame, error) {
	v := s.savedView()
	if q.Scale != nil {
		v.Scale = *q.Scale
	}
	if q.X != nil {
		v.XOffset = *q.X
	}
	if q.Y != nil {
		v.YOffset = *q.Y
	}
	if q.Quality != 0 {
		if q.Quality < model.MinQuality || q.Quality > model.MaxQuality {
			return render.Frame{}, fmt.Errorf("quality %d out of range %d..%d", q.Quality, model.MinQuality, model.MaxQuality)
		}
		v.Quality = q.Quality
	}
	if !v.Valid() {
		return render.Frame{}, fmt.Errorf("invalid view: scale=%v x=%v y=%v", v.Scale, v.XOffset, v.YOffset)
	}

	w, h := q.Width, q.Height
	if w == 0 {
		w = s.cfg.DefaultWidth
	}
	if h == 0 {
		h = s.cfg.DefaultHeight
	}
	if w < 1 || h < 1 {
		return render.Frame{}, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	if !s.cfg.frameFits(w, h) {
		return render.Frame{}, fmt.Errorf("frame %dx%d exceeds %d pixels", w, h, s.cfg.MaxFramePixels)
	}

	p := palette.Default()
	if q.Palette != "" {
		var err error
		if p, err = palette.ByName(q.Palette); err != nil {
			return render.Frame{}, err
		}
	}
	return render.NewFrame(v, w, h, p), nil
}

func (s *Server) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, s.savedView())
}

func (s *Server) handleFrame(c *gin.Context) {
	var q frameQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	f, err := s.resolveFrame(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raster := render.NewRaster(f.Width, f.Height)
	job := render.NewJob(s.gen.Add(1), f)
	res := render.Render(c.Request.Context(), job, raster, nil)
	if err := s.store.RecordRender(res.Record()); err != nil {
		log.Printf("httpserver: %v", err)
	}
	if !res.Completed {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render cancelled"})
		return
	}
	log.Printf("httpserver: frame %s", res)

	var img image.Image = raster.Snapshot()
	if q.Thumb > 0 {
		img = thumbnail(img, q.Thumb)
	}
	var buf bytes.Buffer
	if err := encodePNG(&buf, img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode frame"})
		return
	}
	c.Header("X-Render-Elapsed", res.Elapsed.String())
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// thumbnail scales img down so that its longer side is at most size.
func thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	w, h := size, size
	if b.Dx() >= b.Dy() {
		h = max(1, b.Dy()*size/b.Dx())
	} else {
		w = max(1, b.Dx()*size/b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (s *Server) handleSample(c *gin.Context) {
	var q sampleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	f, err := s.resolveFrame(q.frameQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h := viewer.Probe(f.View, f.Width, f.Height, q.Col, q.Row)
	c.JSON(http.StatusOK, gin.H{
		"sample":  h.Sample,
		"path":    h.Path,
		"colour":  palette.Hex(f.Policy.Colorize(h.Sample.Iterations, h.Sample.Threshold)),
		"readout": viewer.BuildReadout(f.View, f.Policy.Name(), &h),
	})
}

func (s *Server) handleRenders(c *gin.Context) {
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil || q.Limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	recs, err := s.store.RecentRenders(q.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read render history"})
		return
	}
	if recs == nil {
		recs = []model.RenderRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"renders": recs, "count": len(recs)})
}

func (s *Server) handlePresets(c *gin.Context) {
	presets := s.cfg.Presets
	if presets == nil {
		presets = viewer.BuiltinPresets()
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}
