package model

import "time"

// Shared defaults used by the viewer, the render service and the control client.
const (
	DefaultScale       = 1.0
	DefaultQuality     = 100
	DefaultThreshold   = 50
	DefaultPalette     = "hsv"
	DefaultDebounce    = 750 * time.Millisecond
	DefaultYieldPause  = time.Millisecond
	DefaultViewKey     = "save"
	MaxTrajectory      = 50
	MinQuality         = 1
	MaxQuality         = 100
	DefaultFrameWidth  = 960
	DefaultFrameHeight = 540
	// Zoom stops at these scales so the plane mapping stays finite.
	MinScale = 0x1p-1000
	MaxScale = 0x1p1000
)

// DefaultView returns the initial view: unit scale, no pan, full quality.
func DefaultView() ViewState {
	return ViewState{
		Scale:     DefaultScale,
		Quality:   DefaultQuality,
		Threshold: DefaultThreshold,
	}
}
