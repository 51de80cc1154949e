package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/store"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server is the HTTP presentation layer over the plan store and solver. It
// consumes store snapshots read-only; all mutation goes through the store's
// own methods so the solution-invalidation invariant holds.
type Server struct {
	store          *store.Store
	db             *store.PlanDB // nil when scenario persistence is disabled
	solver         cluster.Solver
	units          string
	chartMaxPoints int
}

// NewServer creates a server. db may be nil, which disables the scenario
// endpoints. units is a display label ("units", "km", "mi") echoed with
// radii and distance stats.
func NewServer(st *store.Store, db *store.PlanDB, solver cluster.Solver, units string, chartMaxPoints int) *Server {
	if solver == nil {
		solver = cluster.NewDefaultLloydSolver()
	}
	if chartMaxPoints <= 0 {
		chartMaxPoints = 8000
	}
	return &Server{
		store:          st,
		db:             db,
		solver:         solver,
		units:          units,
		chartMaxPoints: chartMaxPoints,
	}
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Facility Report Server!"))
}

// ServeMux returns the route table for the server.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/points", s.listPoints)
	mux.HandleFunc("/api/customers", s.handleCustomers)
	mux.HandleFunc("/api/customers/import", s.importCustomers)
	mux.HandleFunc("/api/facilities", s.handleFacilities)
	mux.HandleFunc("/api/facilities/import", s.importFacilities)
	mux.HandleFunc("/api/solve", s.runSolve)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/scenarios/load", s.loadScenario)
	mux.HandleFunc("/charts/plan", s.handlePlanChart)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
