package viewer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/plane"
)

// Preset is a named rectangular region of the plane.
type Preset struct {
	Name string  `yaml:"name" json:"name"`
	XMin float64 `yaml:"xmin" json:"xmin"`
	XMax float64 `yaml:"xmax" json:"xmax"`
	YMin float64 `yaml:"ymin" json:"ymin"`
	YMax float64 `yaml:"ymax" json:"ymax"`
}

// Validate checks that the region is a non-empty rectangle.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name is empty")
	}
	if !(p.XMax > p.XMin) || !(p.YMax > p.YMin) {
		return fmt.Errorf("preset %q: empty region x=[%v,%v] y=[%v,%v]", p.Name, p.XMin, p.XMax, p.YMin, p.YMax)
	}
	return nil
}

// Apply returns v zoomed so the preset's width fills the frame, centred on the
// middle of the region. Quality is kept.
func (p Preset) Apply(v model.ViewState) model.ViewState {
	w, _ := plane.Span(model.ViewState{Scale: 1})
	v.Scale = w / (p.XMax - p.XMin)
	return plane.CenterOn(v, (p.XMin+p.XMax)/2, (p.YMin+p.YMax)/2)
}

// BuiltinPresets are classic landmarks of the set.
func BuiltinPresets() []Preset {
	return []Preset{
		{Name: "Seahorse Valley", XMin: -0.8, XMax: -0.7, YMin: 0.05, YMax: 0.15},
		{Name: "Elephant Valley", XMin: -1.85, XMax: -1.75, YMin: -0.10, YMax: -0.02},
		{Name: "Spiral Minibrot", XMin: -0.7435, XMax: -0.7420, YMin: 0.1310, YMax: 0.1325},
		{Name: "Triple Spiral", XMin: -0.7480, XMax: -0.7450, YMin: 0.0950, YMax: 0.0980},
		{Name: "Valley of the Dragon", XMin: -0.7400, XMax: -0.7350, YMin: 0.1800, YMax: 0.1850},
		{Name: "Minibrot in a Mini-Spiral", XMin: -1.7390, XMax: -1.7375, YMin: -0.0235, YMax: -0.0220},
	}
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads extra presets from a YAML file of the form
//
//	presets:
//	  - name: Needle
//	    xmin: -2.0
//	    xmax: -1.9
//	    ymin: -0.05
//	    ymax: 0.05
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("presets %s: %w", path, err)
		}
	}
	return f.Presets, nil
}

// MergePresets appends extra to base; an extra preset with the same name
// (case-insensitive) replaces the base entry in place.
func MergePresets(base, extra []Preset) []Preset {
	out := append([]Preset(nil), base...)
	for _, p := range extra {
		replaced := false
		for i := range out {
			if strings.EqualFold(out[i].Name, p.Name) {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}
