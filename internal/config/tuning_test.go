package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/facility.report/internal/cluster"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadTuningConfigPartial(t *testing.T) {
	path := writeConfig(t, `{"max_iterations": 50}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if got := cfg.GetMaxIterations(); got != 50 {
		t.Errorf("GetMaxIterations = %d, want 50", got)
	}
	// Unset fields fall back to defaults.
	if got := cfg.GetConvergenceTol(); got != cluster.DefaultTol {
		t.Errorf("GetConvergenceTol = %g, want default %g", got, cluster.DefaultTol)
	}
	if got := cfg.GetChartMaxPoints(); got != 8000 {
		t.Errorf("GetChartMaxPoints = %d, want 8000", got)
	}
	if got := cfg.GetUnits(); got != "units" {
		t.Errorf("GetUnits = %q, want \"units\"", got)
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: 5"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("non-.json file should be rejected")
	}
}

func TestValidate(t *testing.T) {
	bad := []string{
		`{"max_iterations": 0}`,
		`{"convergence_tol": -1}`,
		`{"chart_max_points": 10}`,
		`{"units": "furlongs"}`,
	}
	for _, content := range bad {
		path := writeConfig(t, content)
		if _, err := LoadTuningConfig(path); err == nil {
			t.Errorf("config %s should fail validation", content)
		}
	}

	good := writeConfig(t, `{"max_iterations": 10, "convergence_tol": 1e-6, "units": "km"}`)
	cfg, err := LoadTuningConfig(good)
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	params := cfg.SolverParams()
	if params.MaxIterations != 10 || params.Tol != 1e-6 {
		t.Errorf("SolverParams = %+v", params)
	}
}
