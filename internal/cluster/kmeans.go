package cluster

import (
	"errors"
	"fmt"

	"github.com/banshee-data/facility.report/internal/geom"
)

// Constants for solver configuration
const (
	// DefaultMaxIterations caps Lloyd's algorithm when centroids oscillate.
	DefaultMaxIterations = 300
	// DefaultTol is the centroid-displacement threshold for convergence.
	DefaultTol = 1e-9
)

// ErrNoCustomers is returned when Solve is called with no customer points.
var ErrNoCustomers = errors.New("cluster: no customer points")

// ErrNoSeeds is returned when Solve is called with no initial facilities.
var ErrNoSeeds = errors.New("cluster: no initial facility points")

// Params contains parameters for the Lloyd's-algorithm solver.
type Params struct {
	MaxIterations int     // Iteration cap; <= 0 means DefaultMaxIterations
	Tol           float64 // Convergence threshold on centroid displacement; <= 0 means DefaultTol
}

// DefaultParams returns solver parameters matching the documented defaults.
func DefaultParams() Params {
	return Params{
		MaxIterations: DefaultMaxIterations,
		Tol:           DefaultTol,
	}
}

// Solution is the result of one facility-location run. Facilities is aligned
// by index with the seed sequence passed to Solve; Assignments[i] is the
// facility index serving customer i.
type Solution struct {
	Facilities  []geom.Point `json:"facilities"`
	Assignments []int        `json:"assignments"`
	Iterations  int          `json:"iterations"`
	Converged   bool         `json:"converged"`
}

// Solve runs Lloyd's algorithm (K-Means) once, with the centroids initialized
// to exactly the seed sequence. No randomization and no restarts: the output
// is a deterministic function of the two input sequences, so repeated calls
// with the same inputs are bit-identical.
//
// Assignment ties are broken toward the lowest facility index. A facility
// whose cluster is empty keeps its previous position; in particular, when
// there are more seeds than customers the surplus facilities simply stay at
// their seed positions. Empty inputs are the only error conditions.
func Solve(customers, seeds []geom.Point, params Params) (*Solution, error) {
	if len(customers) == 0 {
		return nil, ErrNoCustomers
	}
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	for i, p := range customers {
		if !p.IsFinite() {
			return nil, fmt.Errorf("cluster: customer %d has non-finite coordinates", i)
		}
	}
	for i, p := range seeds {
		if !p.IsFinite() {
			return nil, fmt.Errorf("cluster: seed facility %d has non-finite coordinates", i)
		}
	}

	maxIter := params.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := params.Tol
	if tol <= 0 {
		tol = DefaultTol
	}

	k := len(seeds)
	centroids := make([]geom.Point, k)
	copy(centroids, seeds)

	assignments := make([]int, len(customers))
	sumX := make([]float64, k)
	sumY := make([]float64, k)
	counts := make([]int, k)

	sol := &Solution{}
	for iter := 0; iter < maxIter; iter++ {
		sol.Iterations = iter + 1

		// Assignment step: nearest centroid by Euclidean distance.
		// Strict < while scanning in index order gives ties to the lowest index.
		for i, c := range customers {
			best := 0
			bestDist := geom.SqDist(c, centroids[0])
			for j := 1; j < k; j++ {
				if d := geom.SqDist(c, centroids[j]); d < bestDist {
					best = j
					bestDist = d
				}
			}
			assignments[i] = best
		}

		// Update step: each centroid moves to the mean of its cluster.
		for j := 0; j < k; j++ {
			sumX[j], sumY[j], counts[j] = 0, 0, 0
		}
		for i, c := range customers {
			j := assignments[i]
			sumX[j] += c.X
			sumY[j] += c.Y
			counts[j]++
		}

		maxShift := 0.0
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Empty cluster: centroid holds its position.
				continue
			}
			next := geom.Point{
				X: sumX[j] / float64(counts[j]),
				Y: sumY[j] / float64(counts[j]),
			}
			if shift := geom.Dist(centroids[j], next); shift > maxShift {
				maxShift = shift
			}
			centroids[j] = next
		}

		if maxShift < tol {
			sol.Converged = true
			break
		}
	}

	sol.Facilities = centroids
	sol.Assignments = assignments
	return sol, nil
}

// ServiceRadii returns, for each facility, the maximum distance to any
// customer assigned to it. A facility with an empty cluster has radius 0.
// The customers slice must be the one the solution was computed from.
func ServiceRadii(customers []geom.Point, sol *Solution) []float64 {
	radii := make([]float64, len(sol.Facilities))
	for i, c := range customers {
		j := sol.Assignments[i]
		if d := geom.Dist(c, sol.Facilities[j]); d > radii[j] {
			radii[j] = d
		}
	}
	return radii
}

// ClusterSizes returns the number of customers served by each facility.
func ClusterSizes(sol *Solution) []int {
	sizes := make([]int, len(sol.Facilities))
	for _, j := range sol.Assignments {
		sizes[j]++
	}
	return sizes
}
