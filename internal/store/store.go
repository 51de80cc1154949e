package store

import (
	"sync"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
)

// Store holds the two ordered point sequences (customers, initial
// facilities) and the most recent solution. Any mutation of either sequence
// invalidates the stored solution so a stale result can never be read
// against data it was not computed from.
//
// All methods are safe for concurrent use; solves run on an immutable
// snapshot and are committed with SetSolution, which rejects results
// computed against a superseded version of the data.
type Store struct {
	mu         sync.Mutex
	customers  []geom.Point
	facilities []geom.Point
	solution   *cluster.Solution
	version    uint64
}

// Snapshot is a read-only copy of the store contents. Version identifies the
// state of the two point sequences it was taken from.
type Snapshot struct {
	Customers  []geom.Point      `json:"customers"`
	Facilities []geom.Point      `json:"facilities"`
	Solution   *cluster.Solution `json:"solution,omitempty"`
	Version    uint64            `json:"-"`
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// AddCustomer appends one customer point.
func (s *Store) AddCustomer(p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, p)
	s.invalidateLocked()
}

// AddCustomers appends a batch of customer points. Used by imports so a
// whole file lands in one mutation.
func (s *Store) AddCustomers(pts []geom.Point) {
	if len(pts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, pts...)
	s.invalidateLocked()
}

// AddFacility appends one initial facility point.
func (s *Store) AddFacility(p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities = append(s.facilities, p)
	s.invalidateLocked()
}

// AddFacilities appends a batch of initial facility points.
func (s *Store) AddFacilities(pts []geom.Point) {
	if len(pts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities = append(s.facilities, pts...)
	s.invalidateLocked()
}

// ClearCustomers removes all customer points and invalidates the solution.
func (s *Store) ClearCustomers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = nil
	s.invalidateLocked()
}

// ClearFacilities removes all initial facility points and invalidates the
// solution.
func (s *Store) ClearFacilities() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities = nil
	s.invalidateLocked()
}

// Replace swaps in entirely new point sequences (scenario load).
func (s *Store) Replace(customers, facilities []geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append([]geom.Point(nil), customers...)
	s.facilities = append([]geom.Point(nil), facilities...)
	s.invalidateLocked()
}

// Snapshot returns copies of the current sequences and solution.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Customers:  append([]geom.Point(nil), s.customers...),
		Facilities: append([]geom.Point(nil), s.facilities...),
		Version:    s.version,
	}
	if s.solution != nil {
		sol := *s.solution
		sol.Facilities = append([]geom.Point(nil), s.solution.Facilities...)
		sol.Assignments = append([]int(nil), s.solution.Assignments...)
		snap.Solution = &sol
	}
	return snap
}

// Counts returns the number of customers and initial facilities.
func (s *Store) Counts() (customers, facilities int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers), len(s.facilities)
}

// SetSolution stores a solution computed from the snapshot with the given
// version. Returns false if the store has mutated since the snapshot was
// taken; the solution is discarded and the stored state is unchanged.
func (s *Store) SetSolution(version uint64, sol *cluster.Solution) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return false
	}
	s.solution = sol
	return true
}

// invalidateLocked drops the current solution and bumps the data version.
// Callers must hold s.mu.
func (s *Store) invalidateLocked() {
	s.solution = nil
	s.version++
}
