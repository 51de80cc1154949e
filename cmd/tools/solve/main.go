// Command solve runs the facility-location solver over CSV inputs without a
// running server: read customer and seed-facility files, solve once, and
// write the assignment table (plus an optional PNG of the plan).
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
	"github.com/banshee-data/facility.report/internal/importer"
	"github.com/banshee-data/facility.report/internal/plot"
)

var (
	customersFile  = flag.String("customers", "", "CSV file of customer locations (X,Y columns)")
	facilitiesFile = flag.String("facilities", "", "CSV file of initial facility locations (X,Y columns)")
	outFile        = flag.String("out", "", "Output CSV of assignments (default stdout)")
	pngDir         = flag.String("png", "", "If set, write a PNG of the solved plan into this directory")
	maxIterations  = flag.Int("max-iterations", cluster.DefaultMaxIterations, "Iteration cap for the solver")
	tol            = flag.Float64("tol", cluster.DefaultTol, "Convergence threshold on centroid displacement")
)

func readPoints(path string) ([]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return importer.Points(f)
}

// writeAssignments emits one row per customer plus a facility summary block.
func writeAssignments(w *csv.Writer, customers []geom.Point, sol *cluster.Solution, radii []float64) error {
	if err := w.Write([]string{"customer_index", "x", "y", "facility_index"}); err != nil {
		return err
	}
	for i, c := range customers {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(c.X, 'g', -1, 64),
			strconv.FormatFloat(c.Y, 'g', -1, 64),
			strconv.Itoa(sol.Assignments[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	if err := w.Write([]string{"facility_index", "x", "y", "service_radius"}); err != nil {
		return err
	}
	for j, f := range sol.Facilities {
		row := []string{
			strconv.Itoa(j),
			strconv.FormatFloat(f.X, 'g', -1, 64),
			strconv.FormatFloat(f.Y, 'g', -1, 64),
			strconv.FormatFloat(radii[j], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func main() {
	flag.Parse()

	if *customersFile == "" || *facilitiesFile == "" {
		log.Fatal("both -customers and -facilities are required")
	}

	customers, err := readPoints(*customersFile)
	if err != nil {
		log.Fatalf("failed to read customers: %v", err)
	}
	seeds, err := readPoints(*facilitiesFile)
	if err != nil {
		log.Fatalf("failed to read facilities: %v", err)
	}

	params := cluster.Params{MaxIterations: *maxIterations, Tol: *tol}
	sol, err := cluster.Solve(customers, seeds, params)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}

	radii := cluster.ServiceRadii(customers, sol)
	stats := cluster.Stats(customers, sol)

	out := os.Stdout
	if *outFile != "" {
		out, err = os.Create(*outFile)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer out.Close()
	}
	if err := writeAssignments(csv.NewWriter(out), customers, sol, radii); err != nil {
		log.Fatalf("failed to write assignments: %v", err)
	}

	if *pngDir != "" {
		pp, err := plot.NewPlanPlotter(plot.MakeOutputDir(*pngDir, ""))
		if err != nil {
			log.Fatalf("failed to create plot dir: %v", err)
		}
		path, err := pp.SavePNG("plan", customers, seeds, sol)
		if err != nil {
			log.Fatalf("failed to write plan PNG: %v", err)
		}
		log.Printf("wrote plan plot to %s", path)
	}

	fmt.Fprintf(os.Stderr, "solved %d customers into %d clusters in %d iterations (converged=%v)\n",
		len(customers), len(sol.Facilities), sol.Iterations, sol.Converged)
	fmt.Fprintf(os.Stderr, "total squared cost %.4f, mean distance %.4f, p95 %.4f, max %.4f, empty clusters %d\n",
		stats.TotalSquaredCost, stats.MeanDistance, stats.P95Distance, stats.MaxDistance, stats.EmptyClusters)
}
