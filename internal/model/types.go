package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNoSavedView is returned by a ViewStore when nothing is stored under a key.
	ErrNoSavedView = errors.New("no saved view")
	// ErrCorruptView marks a stored payload that cannot be turned back into a view.
	ErrCorruptView = errors.New("corrupt saved view")
)

// ViewState is the zoom/pan/quality state of one explorer session.
// Only the interaction controller mutates it; everyone else works on copies.
type ViewState struct {
	Scale     float64 `json:"scale"`
	XOffset   float64 `json:"xOffset"`
	YOffset   float64 `json:"yOffset"`
	Quality   int     `json:"quality"`
	Threshold int     `json:"threshold"`
}

// Valid reports whether the view can be rendered: a finite offset and a scale
// within [MinScale, MaxScale].
func (v ViewState) Valid() bool {
	return v.Scale >= MinScale && v.Scale <= MaxScale &&
		!math.IsNaN(v.XOffset) && !math.IsInf(v.XOffset, 0) &&
		!math.IsNaN(v.YOffset) && !math.IsInf(v.YOffset, 0)
}

// Step is the sampling step in raster units: 100/quality, never below 1.
func (v ViewState) Step() int {
	q := ClampQuality(v.Quality)
	return MaxQuality / q
}

// ClampQuality forces q into [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// savedView is the persisted subset of ViewState.
type savedView struct {
	Scale   *float64 `json:"scale"`
	XOffset float64  `json:"xOffset"`
	YOffset float64  `json:"yOffset"`
}

// EncodeView serializes the persisted fields {scale, xOffset, yOffset}.
func EncodeView(v ViewState) ([]byte, error) {
	scale := v.Scale
	return json.Marshal(savedView{Scale: &scale, XOffset: v.XOffset, YOffset: v.YOffset})
}

// DecodeView parses a payload written by EncodeView. Quality and threshold are
// left zero; the caller owns those.
func DecodeView(data []byte) (ViewState, error) {
	var sv savedView
	if err := json.Unmarshal(data, &sv); err != nil {
		return ViewState{}, fmt.Errorf("%w: %v", ErrCorruptView, err)
	}
	if sv.Scale == nil {
		return ViewState{}, fmt.Errorf("%w: missing scale", ErrCorruptView)
	}
	v := ViewState{Scale: *sv.Scale, XOffset: sv.XOffset, YOffset: sv.YOffset}
	if !v.Valid() {
		return ViewState{}, fmt.Errorf("%w: scale=%v xOffset=%v yOffset=%v", ErrCorruptView, v.Scale, v.XOffset, v.YOffset)
	}
	return v, nil
}

// Point is a coordinate on the complex plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenPoint is a position in raster units.
type ScreenPoint struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Sample is one evaluated point. Trajectory is only filled for hover queries
// and holds at most MaxTrajectory iterates, newest first.
type Sample struct {
	Point      Point   `json:"point"`
	Iterations int     `json:"iterations"`
	Threshold  int     `json:"threshold"`
	Trajectory []Point `json:"trajectory,omitempty"`
}

// Inside reports whether the sample never escaped.
func (s Sample) Inside() bool {
	return s.Iterations >= s.Threshold
}

// RenderRecord is one finished render job as kept in the render history.
type RenderRecord struct {
	Generation uint64        `json:"generation"`
	StartedAt  time.Time     `json:"started_at"`
	View       ViewState     `json:"view"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Palette    string        `json:"palette"`
	Completed  bool          `json:"completed"`
	Elapsed    time.Duration `json:"elapsed,omitempty"` // zero unless Completed
	StopRow    int           `json:"stop_row"`          // -1 unless stopped
}

// Readout is the informational text shown next to the frame.
// Empty fields are omitted by the display.
type Readout struct {
	Iterations string `json:"iterations"`
	Scale      string `json:"scale"`
	XOffset    string `json:"xOffset"`
	YOffset    string `json:"yOffset"`
	Hover      string `json:"hover"`
	Quality    string `json:"quality"`
	Palette    string `json:"palette"`
}

// ViewInfo is the externally visible state of a running explorer.
type ViewInfo struct {
	View    ViewState `json:"view"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Palette string    `json:"palette"`
	Readout Readout   `json:"readout"`
}
