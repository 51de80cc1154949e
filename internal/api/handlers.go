package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
	"github.com/banshee-data/facility.report/internal/httputil"
	"github.com/banshee-data/facility.report/internal/importer"
	"github.com/banshee-data/facility.report/internal/monitoring"
	"github.com/banshee-data/facility.report/internal/version"
)

// maxImportBytes bounds uploaded CSV files.
const maxImportBytes = 16 << 20 // 16MB

// pointsResponse is the read-only view handed to presentation clients.
type pointsResponse struct {
	Customers  []geom.Point   `json:"customers"`
	Facilities []geom.Point   `json:"facilities"`
	Solution   *solveResponse `json:"solution"`
	Units      string         `json:"units"`
}

// solveResponse carries a solution plus the derived presentation values.
type solveResponse struct {
	Facilities   []geom.Point          `json:"facilities"`
	Assignments  []int                 `json:"assignments"`
	Iterations   int                   `json:"iterations"`
	Converged    bool                  `json:"converged"`
	ServiceRadii []float64             `json:"service_radii"`
	Stats        cluster.SolutionStats `json:"stats"`
}

func buildSolveResponse(customers []geom.Point, sol *cluster.Solution) *solveResponse {
	return &solveResponse{
		Facilities:   sol.Facilities,
		Assignments:  sol.Assignments,
		Iterations:   sol.Iterations,
		Converged:    sol.Converged,
		ServiceRadii: cluster.ServiceRadii(customers, sol),
		Stats:        cluster.Stats(customers, sol),
	}
}

func (s *Server) listPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap := s.store.Snapshot()
	resp := pointsResponse{
		Customers:  snap.Customers,
		Facilities: snap.Facilities,
		Units:      s.units,
	}
	if snap.Solution != nil {
		resp.Solution = buildSolveResponse(snap.Customers, snap.Solution)
	}
	httputil.WriteJSONOK(w, resp)
}

// pointRequest is the body for adding a single point by hand.
type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func decodePoint(r *http.Request) (geom.Point, error) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return geom.Point{}, fmt.Errorf("invalid JSON body: %v", err)
	}
	if req.X == nil || req.Y == nil {
		return geom.Point{}, fmt.Errorf("both x and y coordinates are required")
	}
	p := geom.Point{X: *req.X, Y: *req.Y}
	if !p.IsFinite() {
		return geom.Point{}, fmt.Errorf("coordinates must be finite numbers")
	}
	return p, nil
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p, err := decodePoint(r)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		s.store.AddCustomer(p)
		customers, _ := s.store.Counts()
		httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{"customers": customers})
	case http.MethodDelete:
		s.store.ClearCustomers()
		httputil.WriteJSONOK(w, map[string]interface{}{"customers": 0})
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p, err := decodePoint(r)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		s.store.AddFacility(p)
		_, facilities := s.store.Counts()
		httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{"facilities": facilities})
	case http.MethodDelete:
		s.store.ClearFacilities()
		httputil.WriteJSONOK(w, map[string]interface{}{"facilities": 0})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// importUpload parses the uploaded CSV and returns its points. The store is
// only touched by the caller after a fully successful parse, so a malformed
// file never partially mutates the data.
func importUpload(r *http.Request) ([]geom.Point, error) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart upload: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing 'file' upload field")
	}
	defer file.Close()

	points, err := importer.Points(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", header.Filename, err)
	}
	return points, nil
}

func (s *Server) importCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	points, err := importUpload(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	s.store.AddCustomers(points)
	monitoring.Logf("imported %d customer locations", len(points))
	customers, _ := s.store.Counts()
	httputil.WriteJSONOK(w, map[string]interface{}{"added": len(points), "customers": customers})
}

func (s *Server) importFacilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	points, err := importUpload(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	s.store.AddFacilities(points)
	monitoring.Logf("imported %d facility locations", len(points))
	_, facilities := s.store.Counts()
	httputil.WriteJSONOK(w, map[string]interface{}{"added": len(points), "facilities": facilities})
}

// runSolve executes one synchronous solver run over a snapshot of the store.
// Failures leave the stored state exactly as it was: the solution is only
// committed after a successful run, and only if the data has not changed
// underneath the solver.
func (s *Server) runSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	snap := s.store.Snapshot()
	if len(snap.Customers) == 0 {
		httputil.BadRequest(w, "no customer locations: add customers before calculating")
		return
	}
	if len(snap.Facilities) == 0 {
		httputil.BadRequest(w, "no initial facility locations: add facilities before calculating")
		return
	}

	sol, err := s.solver.Solve(snap.Customers, snap.Facilities)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("optimization failed: %v", err))
		return
	}

	if !s.store.SetSolution(snap.Version, sol) {
		httputil.Conflict(w, "point data changed during solve; re-run the calculation")
		return
	}

	monitoring.Logf("solved plan: %d customers, %d facilities, %d iterations (converged=%v)",
		len(snap.Customers), len(snap.Facilities), sol.Iterations, sol.Converged)
	httputil.WriteJSONOK(w, buildSolveResponse(snap.Customers, sol))
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	params := s.solver.GetParams()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"max_iterations":   params.MaxIterations,
		"convergence_tol":  params.Tol,
		"chart_max_points": s.chartMaxPoints,
		"units":            s.units,
		"version":          version.Version,
	})
}
