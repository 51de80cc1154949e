package geom

import "math"

// Point is a position in plan coordinates. The unit is whatever the input
// data uses (kilometres, miles, grid units); the solver is unit-agnostic.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SqDist returns the squared Euclidean distance between a and b.
// Use this for nearest-point comparisons to avoid the sqrt.
func SqDist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Sqrt(SqDist(a, b))
}

// Centroid returns the arithmetic mean of pts. Returns the zero Point for an
// empty slice; callers that care must check len(pts) themselves.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(pts))
	return Point{X: sumX / n, Y: sumY / n}
}

// IsFinite reports whether both coordinates are finite numbers. NaN or ±Inf
// coordinates are rejected at the input boundary, never stored.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Bounds returns the min/max corners covering every point in every slice.
// ok is false if no points were supplied.
func Bounds(sets ...[]Point) (min, max Point, ok bool) {
	min = Point{X: math.Inf(1), Y: math.Inf(1)}
	max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, pts := range sets {
		for _, p := range pts {
			if p.X < min.X {
				min.X = p.X
			}
			if p.X > max.X {
				max.X = p.X
			}
			if p.Y < min.Y {
				min.Y = p.Y
			}
			if p.Y > max.Y {
				max.Y = p.Y
			}
			ok = true
		}
	}
	if !ok {
		return Point{}, Point{}, false
	}
	return min, max, true
}
