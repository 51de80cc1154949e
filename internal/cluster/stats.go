package cluster

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/facility.report/internal/geom"
)

// SolutionStats summarizes service quality for a solved plan. Distances are
// in the same units as the input coordinates.
type SolutionStats struct {
	TotalSquaredCost float64 `json:"total_squared_cost"`
	MeanDistance     float64 `json:"mean_distance"`
	MaxDistance      float64 `json:"max_distance"`
	P95Distance      float64 `json:"p95_distance"`
	ClusterSizes     []int   `json:"cluster_sizes"`
	EmptyClusters    int     `json:"empty_clusters"`
}

// Stats computes summary metrics for a solution over the customers it was
// computed from. TotalSquaredCost is the K-Means objective (sum of squared
// distances from each customer to its assigned facility).
func Stats(customers []geom.Point, sol *Solution) SolutionStats {
	distances := make([]float64, len(customers))
	var totalSq float64
	for i, c := range customers {
		f := sol.Facilities[sol.Assignments[i]]
		totalSq += geom.SqDist(c, f)
		distances[i] = geom.Dist(c, f)
	}

	sort.Float64s(distances)

	s := SolutionStats{
		TotalSquaredCost: totalSq,
		MeanDistance:     stat.Mean(distances, nil),
		ClusterSizes:     ClusterSizes(sol),
	}
	if n := len(distances); n > 0 {
		s.MaxDistance = distances[n-1]
		s.P95Distance = stat.Quantile(0.95, stat.Empirical, distances, nil)
	}
	for _, size := range s.ClusterSizes {
		if size == 0 {
			s.EmptyClusters++
		}
	}
	return s
}
