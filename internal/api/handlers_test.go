package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
	"github.com/banshee-data/facility.report/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New()
	pdb, err := store.NewPlanDB(filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pdb.Close() })
	return NewServer(st, pdb, cluster.NewDefaultLloydSolver(), "km", 8000), st
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, r)
	return rec
}

func TestAddCustomer(t *testing.T) {
	s, st := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/customers", `{"x": 1.5, "y": -2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	snap := st.Snapshot()
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, geom.Point{X: 1.5, Y: -2}, snap.Customers[0])
}

func TestAddPointRejectsBadInput(t *testing.T) {
	s, st := newTestServer(t)

	cases := []string{
		`{"x": "abc", "y": 1}`,
		`{"x": 1}`,
		`{}`,
		`not json`,
		`{"x": 1e999, "y": 0}`, // overflows to +Inf
	}
	for _, body := range cases {
		rec := doJSON(t, s, http.MethodPost, "/api/facilities", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}

	// No state change on rejected input.
	customers, facilities := st.Counts()
	assert.Zero(t, customers)
	assert.Zero(t, facilities)
}

func TestClearInvalidatesSolution(t *testing.T) {
	s, st := newTestServer(t)
	st.AddCustomers([]geom.Point{{X: 0, Y: 0}, {X: 2, Y: 0}})
	st.AddFacility(geom.Point{X: 1, Y: 1})

	rec := doJSON(t, s, http.MethodPost, "/api/solve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, st.Snapshot().Solution)

	rec = doJSON(t, s, http.MethodDelete, "/api/customers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, st.Snapshot().Solution)
}

func TestSolveRejectsEmptySets(t *testing.T) {
	s, st := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/solve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	st.AddCustomer(geom.Point{X: 1, Y: 1})
	rec = doJSON(t, s, http.MethodPost, "/api/solve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected calls never touched the solver or stored a result.
	assert.Nil(t, st.Snapshot().Solution)
}

func TestSolvePinnedScenario(t *testing.T) {
	s, st := newTestServer(t)
	st.AddCustomers([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}})
	st.AddFacilities([]geom.Point{{X: 1, Y: 1}, {X: 9, Y: 9}})

	rec := doJSON(t, s, http.MethodPost, "/api/solve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Facilities   []geom.Point `json:"facilities"`
		Assignments  []int        `json:"assignments"`
		Converged    bool         `json:"converged"`
		ServiceRadii []float64    `json:"service_radii"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, []int{0, 0, 0, 1}, resp.Assignments)
	assert.True(t, resp.Converged)
	require.Len(t, resp.Facilities, 2)
	assert.InDelta(t, 10.0/3.0, resp.Facilities[0].X, 1e-9)
	assert.InDelta(t, 10.0/3.0, resp.Facilities[0].Y, 1e-9)
	assert.Equal(t, geom.Point{X: 10, Y: 10}, resp.Facilities[1])
	require.Len(t, resp.ServiceRadii, 2)
	assert.Zero(t, resp.ServiceRadii[1], "facility on its only customer has radius 0")

	// The solution is visible through the read-only snapshot endpoint.
	rec = doJSON(t, s, http.MethodGet, "/api/points", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var points struct {
		Solution *json.RawMessage `json:"solution"`
		Units    string           `json:"units"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&points))
	assert.NotNil(t, points.Solution)
	assert.Equal(t, "km", points.Units)
}

func uploadCSV(t *testing.T, s *Server, path, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "points.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, r)
	return rec
}

func TestImportCustomers(t *testing.T) {
	s, st := newTestServer(t)

	rec := uploadCSV(t, s, "/api/customers/import", "X,Y\n1,2\n3,4\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	customers, _ := st.Counts()
	assert.Equal(t, 2, customers)
}

func TestImportFailureLeavesStoreUntouched(t *testing.T) {
	s, st := newTestServer(t)
	st.AddCustomer(geom.Point{X: 9, Y: 9})

	rec := uploadCSV(t, s, "/api/customers/import", "X,Y\n1,2\nbad,4\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	customers, _ := st.Counts()
	assert.Equal(t, 1, customers, "failed import must not partially append")
}

func TestImportMissingColumns(t *testing.T) {
	s, _ := newTestServer(t)

	rec := uploadCSV(t, s, "/api/facilities/import", "A,B\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "'X' and 'Y'")
}

func TestScenarioSaveAndLoad(t *testing.T) {
	s, st := newTestServer(t)
	st.AddCustomers([]geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}})
	st.AddFacility(geom.Point{X: 0, Y: 0})

	rec := doJSON(t, s, http.MethodPost, "/api/scenarios", `{"name": "test plan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	require.NotEmpty(t, saved.ID)

	// Mutate the store, then load the scenario back.
	st.ClearCustomers()
	st.ClearFacilities()

	rec = doJSON(t, s, http.MethodPost, "/api/scenarios/load", `{"id": "`+saved.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := st.Snapshot()
	assert.Equal(t, []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, snap.Customers)
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}}, snap.Facilities)
	assert.Nil(t, snap.Solution, "loading a scenario must not fabricate a solution")

	rec = doJSON(t, s, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.Scenario
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "test plan", list[0].Name)
	assert.Equal(t, 2, list[0].CustomerCount)

	rec = doJSON(t, s, http.MethodDelete, "/api/scenarios", `{"id": "`+saved.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestScenariosDisabledWithoutDB(t *testing.T) {
	s := NewServer(store.New(), nil, nil, "units", 0)

	rec := doJSON(t, s, http.MethodGet, "/api/scenarios", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanChart(t *testing.T) {
	s, st := newTestServer(t)

	// No points at all: nothing to chart.
	rec := doJSON(t, s, http.MethodGet, "/charts/plan", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	st.AddCustomers([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}})
	st.AddFacilities([]geom.Point{{X: 1, Y: 1}, {X: 9, Y: 9}})

	// Unsolved plan renders raw points.
	rec = doJSON(t, s, http.MethodGet, "/charts/plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "customers")

	// Solved plan renders clusters and service areas.
	require.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/api/solve", "").Code)
	rec = doJSON(t, s, http.MethodGet, "/charts/plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "cluster 1")
	assert.Contains(t, body, "optimal facilities")
	assert.Contains(t, body, "service area")
}

func TestShowConfig(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, "km", cfg["units"])
	assert.EqualValues(t, cluster.DefaultMaxIterations, cfg["max_iterations"])
	assert.Contains(t, cfg, "version")
}

func TestMethodChecks(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPut, "/api/customers"},
		{http.MethodGet, "/api/solve"},
		{http.MethodPost, "/api/points"},
		{http.MethodDelete, "/api/config"},
	}
	for _, c := range cases {
		rec := doJSON(t, s, c.method, c.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", c.method, c.path)
	}
}
