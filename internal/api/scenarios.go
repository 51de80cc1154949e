package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/banshee-data/facility.report/internal/httputil"
	"github.com/banshee-data/facility.report/internal/monitoring"
)

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		httputil.NotFound(w, "scenario persistence is disabled")
		return
	}

	switch r.Method {
	case http.MethodGet:
		scenarios, err := s.db.ListScenarios()
		if err != nil {
			httputil.InternalServerError(w, "failed to list scenarios: "+err.Error())
			return
		}
		httputil.WriteJSONOK(w, scenarios)
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httputil.BadRequest(w, "scenario name is required")
			return
		}

		snap := s.store.Snapshot()
		if len(snap.Customers) == 0 && len(snap.Facilities) == 0 {
			httputil.BadRequest(w, "nothing to save: both point sets are empty")
			return
		}

		id, err := s.db.SaveScenario(req.Name, snap.Customers, snap.Facilities)
		if err != nil {
			httputil.InternalServerError(w, "failed to save scenario: "+err.Error())
			return
		}
		monitoring.Logf("saved scenario %q (%s)", req.Name, id)
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
	case http.MethodDelete:
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
			httputil.BadRequest(w, "scenario id is required")
			return
		}
		if err := s.db.DeleteScenario(req.ID); err != nil {
			httputil.InternalServerError(w, "failed to delete scenario: "+err.Error())
			return
		}
		monitoring.Logf("deleted scenario %s", req.ID)
		httputil.WriteJSONOK(w, map[string]string{"deleted": req.ID})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// loadScenario replaces the working point sets with a saved scenario. The
// stored solution is invalidated by the replace; the caller re-solves.
func (s *Server) loadScenario(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		httputil.NotFound(w, "scenario persistence is disabled")
		return
	}
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		httputil.BadRequest(w, "scenario id is required")
		return
	}

	customers, facilities, err := s.db.LoadScenario(req.ID)
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	s.store.Replace(customers, facilities)
	monitoring.Logf("loaded scenario %s: %d customers, %d facilities", req.ID, len(customers), len(facilities))
	httputil.WriteJSONOK(w, map[string]interface{}{
		"customers":  len(customers),
		"facilities": len(facilities),
	})
}
