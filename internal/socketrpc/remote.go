package socketrpc

import (
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// Remote is a running explorer that can be driven from outside.
type Remote interface {
	View() (model.ViewInfo, error)
	Zoom(in bool) (model.ViewInfo, error)
	Pan(col, row int) (model.ViewInfo, error)
	Hover(col, row int) (viewer.Hover, error)
	SetQuality(q int) (model.ViewInfo, error)
	SetPalette(name string) (model.ViewInfo, error)
	Jump(preset string) (model.ViewInfo, error)
	Reset() (model.ViewInfo, error)
}
