package escape

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tinytelemetry/mandelview/internal/model"
)

func TestIterate_OutsideRadiusReturnsZero(t *testing.T) {
	t.Parallel()

	points := [][2]float64{{2, 2}, {-3, 0}, {0, 2.01}, {1.5, -1.5}, {100, -100}}
	for _, p := range points {
		if got := Iterate(p[0], p[1], 50); got != 0 {
			t.Errorf("Iterate(%v, %v) = %d, want 0", p[0], p[1], got)
		}
	}
}

func TestIterate_OriginNeverEscapes(t *testing.T) {
	t.Parallel()

	if got := Iterate(0, 0, Threshold(1)); got != 50 {
		t.Fatalf("Iterate(0, 0) = %d, want 50", got)
	}
	if got := Iterate(-1, 0, 150); got != 150 {
		t.Fatalf("Iterate(-1, 0) = %d, want 150 (period-2 bulb)", got)
	}
}

func TestIterate_EscapeCount(t *testing.T) {
	t.Parallel()

	// c = 1: z goes 1 -> 2 -> 5; the test at 1 and 2 passes, at 5 it fails.
	if got := Iterate(1, 0, 50); got != 2 {
		t.Fatalf("Iterate(1, 0) = %d, want 2", got)
	}
	// On the boundary |c| = 2 exactly the first test passes.
	if got := Iterate(2, 0, 50); got != 1 {
		t.Fatalf("Iterate(2, 0) = %d, want 1", got)
	}
}

func TestThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scale float64
		want  int
	}{
		{0.125, 50},
		{0.5, 50},
		{1, 50},
		{2, 100},
		{4, 150},
		{1024, 550},
	}
	for _, tt := range tests {
		if got := Threshold(tt.scale); got != tt.want {
			t.Errorf("Threshold(%v) = %d, want %d", tt.scale, got, tt.want)
		}
	}
}

func TestThreshold_MonotonicInScale(t *testing.T) {
	t.Parallel()

	prev := 0
	for scale := 1.0 / 64; scale < 1<<20; scale *= math.Sqrt2 {
		got := Threshold(scale)
		if got < prev {
			t.Fatalf("Threshold(%v) = %d, below previous %d", scale, got, prev)
		}
		prev = got
	}
}

func TestTrace_MatchesIterate(t *testing.T) {
	t.Parallel()

	points := [][2]float64{{0, 0}, {1, 0}, {-0.75, 0.1}, {0.3, 0.5}, {2, 2}}
	for _, p := range points {
		s := Trace(p[0], p[1], 80)
		if want := Iterate(p[0], p[1], 80); s.Iterations != want {
			t.Errorf("Trace(%v).Iterations = %d, want %d", p, s.Iterations, want)
		}
		if s.Point != (model.Point{X: p[0], Y: p[1]}) {
			t.Errorf("Trace(%v).Point = %+v", p, s.Point)
		}
	}
}

func TestTrace_NewestFirst(t *testing.T) {
	t.Parallel()

	s := Trace(1, 0, 50)
	want := []model.Point{{X: 5, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0}}
	if diff := cmp.Diff(want, s.Trajectory); diff != "" {
		t.Fatalf("trajectory mismatch (-want +got):\n%s", diff)
	}
}

func TestTrace_CapsTrajectory(t *testing.T) {
	t.Parallel()

	s := Trace(0, 0, 500)
	if got := len(s.Trajectory); got != model.MaxTrajectory {
		t.Fatalf("trajectory length = %d, want %d", got, model.MaxTrajectory)
	}
	if !s.Inside() {
		t.Fatalf("origin should be inside the set")
	}

	s = Trace(-1, 0, 500)
	// The orbit of -1 alternates 0, -1, 0, -1 ...; newest entry is the last iterate.
	first, second := s.Trajectory[0], s.Trajectory[1]
	if first == second {
		t.Fatalf("consecutive iterates should alternate, got %+v twice", first)
	}
}

func TestTrace_OutsideKeepsStartPoint(t *testing.T) {
	t.Parallel()

	s := Trace(2, 2, 50)
	if s.Iterations != 0 {
		t.Fatalf("iterations = %d, want 0", s.Iterations)
	}
	if diff := cmp.Diff([]model.Point{{X: 2, Y: 2}}, s.Trajectory); diff != "" {
		t.Fatalf("trajectory mismatch (-want +got):\n%s", diff)
	}
}
