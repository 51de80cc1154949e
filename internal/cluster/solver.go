package cluster

import "github.com/banshee-data/facility.report/internal/geom"

// Solver computes facility positions and customer assignments from customer
// points and an ordered seed sequence. The seed order fixes the initial
// centroid assignment, so implementations must be deterministic.
type Solver interface {
	Solve(customers, seeds []geom.Point) (*Solution, error)
	GetParams() Params
	SetParams(params Params)
}

// LloydSolver implements Solver using a single run of Lloyd's algorithm
// seeded with the caller's initial facility positions.
type LloydSolver struct {
	params Params
}

// NewLloydSolver creates a solver with the specified parameters.
func NewLloydSolver(maxIterations int, tol float64) *LloydSolver {
	return &LloydSolver{
		params: Params{
			MaxIterations: maxIterations,
			Tol:           tol,
		},
	}
}

// NewDefaultLloydSolver creates a solver with default parameters.
func NewDefaultLloydSolver() *LloydSolver {
	params := DefaultParams()
	return NewLloydSolver(params.MaxIterations, params.Tol)
}

// Solve runs one deterministic K-Means pass with the configured parameters.
func (s *LloydSolver) Solve(customers, seeds []geom.Point) (*Solution, error) {
	return Solve(customers, seeds, s.params)
}

// GetParams returns the current solver parameters.
func (s *LloydSolver) GetParams() Params {
	return s.params
}

// SetParams updates the solver parameters.
func (s *LloydSolver) SetParams(params Params) {
	s.params = params
}

// Verify at compile time that *LloydSolver implements Solver.
var _ Solver = (*LloydSolver)(nil)
