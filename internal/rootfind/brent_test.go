package rootfind

import (
	"errors"
	"math"
	"testing"
)

func TestBrent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"sqrt2", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"cos", math.Cos, 0, 3, math.Pi / 2},
		{"cubic", func(x float64) float64 { return (x - 1) * (x + 2) * (x - 3) }, 0, 2, 1},
		{"endpoint", func(x float64) float64 { return x - 1 }, 1, 4, 1},
	}
	for _, c := range cases {
		got, err := Brent(c.f, c.a, c.b, 1e-14, 0)
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if math.Abs(got-c.want) > 1e-10 {
			t.Errorf("%s: root = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBrentNoBracket(t *testing.T) {
	t.Parallel()

	got, err := Brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 0, 0)
	if !errors.Is(err, ErrNoBracket) || !math.IsNaN(got) {
		t.Fatalf("Brent = %v, %v; want NaN, ErrNoBracket", got, err)
	}
}
