package palette

import (
	"image/color"
	"testing"
)

func TestAllPolicies_InsideIsBlack(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		p, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		for _, th := range []int{1, 50, 150, 2000} {
			if got := p.Colorize(th, th); got != Inside {
				t.Errorf("%s.Colorize(%d, %d) = %v, want %v", name, th, th, got, Inside)
			}
		}
	}
}

func TestLinear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, t int
		want string
	}{
		{0, 50, "#000000"},
		{25, 50, "#000080"},
		{49, 50, "#0000fa"},
	}
	for _, tt := range tests {
		if got := Hex(Linear{}.Colorize(tt.n, tt.t)); got != tt.want {
			t.Errorf("Linear(%d, %d) = %s, want %s", tt.n, tt.t, got, tt.want)
		}
	}
}

func TestQuartic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, t int
		want string
	}{
		// v = 5, 5^4 = 625 = 0x271 -> zero padded
		{1, 50, "#000271"},
		// v = 128, 128^4 = 0x10000000 -> first six digits
		{25, 50, "#100000"},
		// v = 250, 250^4 = 3906250000 = 0xe8d4a510 -> first six digits
		{49, 50, "#e8d4a5"},
	}
	for _, tt := range tests {
		if got := Hex(Quartic{}.Colorize(tt.n, tt.t)); got != tt.want {
			t.Errorf("Quartic(%d, %d) = %s, want %s", tt.n, tt.t, got, tt.want)
		}
	}
}

func TestGrayscale(t *testing.T) {
	t.Parallel()

	if got := Hex(Grayscale{}.Colorize(25, 50)); got != "#808080" {
		t.Fatalf("Grayscale(25, 50) = %s, want #808080", got)
	}
	// floor(1/50*256) = 5, a single hex digit: #555 in short form.
	if got := Hex(Grayscale{}.Colorize(1, 50)); got != "#555555" {
		t.Fatalf("Grayscale(1, 50) = %s, want #555555", got)
	}
	// floor(3/50*256) = 15 -> #fff short form.
	if got := Hex(Grayscale{}.Colorize(3, 50)); got != "#ffffff" {
		t.Fatalf("Grayscale(3, 50) = %s, want #ffffff", got)
	}
	if got := Hex(Grayscale{}.Colorize(0, 50)); got != "#000000" {
		t.Fatalf("Grayscale(0, 50) = %s, want #000000", got)
	}
}

func TestHSV(t *testing.T) {
	t.Parallel()

	if got := (HSV{}).Colorize(0, 50); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("HSV(0, 50) = %v, want black", got)
	}

	// n/t = 0.5: hue = floor(128)/125 -> 0.024 turns, s = v = 0.5.
	got := HSV{}.Colorize(25, 50)
	want := color.RGBA{R: 128, G: 73, B: 64, A: 0xff}
	if got != want {
		t.Fatalf("HSV(25, 50) = %v, want %v", got, want)
	}
}

func TestPolicies_Deterministic(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		p, _ := ByName(name)
		for n := 0; n < 150; n++ {
			if a, b := p.Colorize(n, 150), p.Colorize(n, 150); a != b {
				t.Fatalf("%s.Colorize(%d) not stable: %v vs %v", name, n, a, b)
			}
		}
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	p, err := ByName(" HSV ")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if p.Name() != "hsv" {
		t.Fatalf("name = %q, want hsv", p.Name())
	}
	if _, err := ByName("rainbow"); err == nil {
		t.Fatal("ByName(rainbow) should fail")
	}
}

func TestNext_Cycles(t *testing.T) {
	t.Parallel()

	p := Default()
	seen := map[string]bool{}
	for range Names() {
		p = Next(p)
		seen[p.Name()] = true
	}
	if len(seen) != len(Names()) {
		t.Fatalf("cycle visited %d policies, want %d", len(seen), len(Names()))
	}
	if p.Name() != Default().Name() {
		t.Fatalf("full cycle ended on %q, want %q", p.Name(), Default().Name())
	}
}
