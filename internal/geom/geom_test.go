package geom

import (
	"math"
	"testing"
)

func TestDist(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}

	if got := Dist(a, b); got != 5 {
		t.Errorf("Dist(%v, %v) = %v, want 5", a, b, got)
	}
	if got := SqDist(a, b); got != 25 {
		t.Errorf("SqDist(%v, %v) = %v, want 25", a, b, got)
	}
	if got := Dist(a, a); got != 0 {
		t.Errorf("Dist of identical points = %v, want 0", got)
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {0, 10}, {10, 10}}
	c := Centroid(pts)
	if c.X != 5 || c.Y != 5 {
		t.Errorf("Centroid = %v, want (5, 5)", c)
	}

	// Empty input returns the zero point rather than NaN.
	z := Centroid(nil)
	if z.X != 0 || z.Y != 0 {
		t.Errorf("Centroid(nil) = %v, want zero point", z)
	}
}

func TestIsFinite(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{1, 2}, true},
		{Point{0, 0}, true},
		{Point{math.NaN(), 0}, false},
		{Point{0, math.NaN()}, false},
		{Point{math.Inf(1), 0}, false},
		{Point{0, math.Inf(-1)}, false},
	}
	for _, c := range cases {
		if got := c.p.IsFinite(); got != c.want {
			t.Errorf("IsFinite(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestBounds(t *testing.T) {
	customers := []Point{{-1, 2}, {4, -3}}
	facilities := []Point{{0, 7}}

	min, max, ok := Bounds(customers, facilities)
	if !ok {
		t.Fatal("Bounds reported no points")
	}
	if min.X != -1 || min.Y != -3 {
		t.Errorf("min = %v, want (-1, -3)", min)
	}
	if max.X != 4 || max.Y != 7 {
		t.Errorf("max = %v, want (4, 7)", max)
	}

	if _, _, ok := Bounds(nil, []Point{}); ok {
		t.Error("Bounds of empty input should report ok=false")
	}
}
