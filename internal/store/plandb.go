package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/facility.report/internal/geom"
)

// PlanDB persists named scenarios (customer + facility point sets) so a plan
// can be reloaded and re-solved later. Solutions are not persisted: the
// solver is deterministic, so re-solving a loaded scenario reproduces the
// result exactly.
type PlanDB struct {
	*sql.DB
}

// schema.sql defines the scenario tables. Kept in a separate file so the
// migrations under migrations/ can stay in sync with it.
//
//go:embed schema.sql
var schemaSQL string

// NewPlanDB opens (or creates) the scenario database at path and ensures the
// base schema exists.
func NewPlanDB(path string) (*PlanDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize scenario schema: %w", err)
	}

	return &PlanDB{db}, nil
}

// Scenario describes one saved scenario row.
type Scenario struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	CustomerCount int    `json:"customer_count"`
	FacilityCount int    `json:"facility_count"`
}

// SaveScenario stores the point sets under a fresh UUID and returns it.
// The insert is transactional: a failure leaves no partial scenario behind.
func (pdb *PlanDB) SaveScenario(name string, customers, facilities []geom.Point) (string, error) {
	id := uuid.NewString()

	tx, err := pdb.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin scenario transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO scenarios (id, name) VALUES (?, ?)", id, name); err != nil {
		return "", fmt.Errorf("failed to insert scenario: %w", err)
	}

	insert := func(kind string, pts []geom.Point) error {
		for i, p := range pts {
			_, err := tx.Exec(
				"INSERT INTO scenario_points (scenario_id, kind, seq, x, y) VALUES (?, ?, ?, ?, ?)",
				id, kind, i, p.X, p.Y,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s point %d: %w", kind, i, err)
			}
		}
		return nil
	}
	if err := insert("customer", customers); err != nil {
		return "", err
	}
	if err := insert("facility", facilities); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit scenario: %w", err)
	}
	return id, nil
}

// LoadScenario returns the point sets for a scenario in insertion order.
func (pdb *PlanDB) LoadScenario(id string) (customers, facilities []geom.Point, err error) {
	rows, err := pdb.Query(
		"SELECT kind, seq, x, y FROM scenario_points WHERE scenario_id = ? ORDER BY kind, seq",
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query scenario points: %w", err)
	}
	defer rows.Close()

	type row struct {
		kind string
		seq  int
		p    geom.Point
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.kind, &r.seq, &r.p.X, &r.p.Y); err != nil {
			return nil, nil, fmt.Errorf("failed to scan scenario point: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		// Distinguish "no points" from "no scenario".
		var n int
		if err := pdb.QueryRow("SELECT COUNT(*) FROM scenarios WHERE id = ?", id).Scan(&n); err != nil {
			return nil, nil, err
		}
		if n == 0 {
			return nil, nil, fmt.Errorf("scenario %s not found", id)
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	for _, r := range all {
		switch r.kind {
		case "customer":
			customers = append(customers, r.p)
		case "facility":
			facilities = append(facilities, r.p)
		}
	}
	return customers, facilities, nil
}

// ListScenarios returns saved scenarios, newest first.
func (pdb *PlanDB) ListScenarios() ([]Scenario, error) {
	rows, err := pdb.Query(`
		SELECT s.id, s.name, s.created_at,
			SUM(CASE WHEN p.kind = 'customer' THEN 1 ELSE 0 END),
			SUM(CASE WHEN p.kind = 'facility' THEN 1 ELSE 0 END)
		FROM scenarios s
		LEFT JOIN scenario_points p ON p.scenario_id = s.id
		GROUP BY s.id, s.name, s.created_at
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		var sc Scenario
		var customers, facilities sql.NullInt64
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.CreatedAt, &customers, &facilities); err != nil {
			return nil, fmt.Errorf("failed to scan scenario row: %w", err)
		}
		sc.CustomerCount = int(customers.Int64)
		sc.FacilityCount = int(facilities.Int64)
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// DeleteScenario removes a scenario and its points.
func (pdb *PlanDB) DeleteScenario(id string) error {
	if _, err := pdb.Exec("DELETE FROM scenario_points WHERE scenario_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete scenario points: %w", err)
	}
	if _, err := pdb.Exec("DELETE FROM scenarios WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return nil
}
