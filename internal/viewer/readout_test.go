package viewer

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinytelemetry/mandelview/internal/model"
)

func TestDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scale float64
		want  int
	}{
		{0.001, 4},
		{1, 4},
		{2, 5},
		{1000, 7},
		{1e20, 12},
		{math.Inf(1), 4},
		{math.NaN(), 4},
	}
	for _, tt := range tests {
		if got := Digits(tt.scale); got != tt.want {
			t.Errorf("Digits(%v) = %d, want %d", tt.scale, got, tt.want)
		}
	}
}

func TestFormatCoord(t *testing.T) {
	t.Parallel()

	if got, ok := FormatCoord(-0.7453, 4); !ok || got != "-0.7453" {
		t.Fatalf("FormatCoord = %q, %v", got, ok)
	}
	if got, _ := FormatCoord(math.Copysign(0, -1), 4); got != "0" {
		t.Fatalf("negative zero = %q, want 0", got)
	}
	if _, ok := FormatCoord(math.NaN(), 4); ok {
		t.Fatal("NaN formatted")
	}
	if _, ok := FormatCoord(math.Inf(-1), 4); ok {
		t.Fatal("-Inf formatted")
	}
}

func TestReadout(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, nil)
	h := c.Hover(0, 0)
	got := c.Readout(&h)
	want := model.Readout{
		Iterations: "0",
		Scale:      "1",
		XOffset:    "0",
		YOffset:    "0",
		Hover:      "-2.5, -1",
		Quality:    "100",
		Palette:    "hsv",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("readout mismatch (-want +got):\n%s", diff)
	}

	if r := c.Readout(nil); r.Iterations != "" || r.Hover != "" {
		t.Fatalf("readout without hover = %+v", r)
	}
}

func TestReadoutOmitsNonFinite(t *testing.T) {
	t.Parallel()

	v := model.DefaultView()
	v.XOffset = math.Inf(1)
	r := BuildReadout(v, "hsv", &Hover{Sample: model.Sample{Point: model.Point{X: math.NaN(), Y: 0}}})
	if r.XOffset != "" {
		t.Fatalf("XOffset = %q, want empty", r.XOffset)
	}
	if r.Hover != "" {
		t.Fatalf("Hover = %q, want empty", r.Hover)
	}
	if r.YOffset != "0" {
		t.Fatalf("YOffset = %q, want 0", r.YOffset)
	}
}
