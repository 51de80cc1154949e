package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/units"
)

// TuningConfig holds solver and presentation tuning. Fields are pointers so
// a partial JSON file only overrides what it names; the Get* methods supply
// defaults for everything else. The schema matches the /api/config endpoint
// so the same JSON works for startup configuration and inspection.
type TuningConfig struct {
	// Solver params
	MaxIterations  *int     `json:"max_iterations,omitempty"`
	ConvergenceTol *float64 `json:"convergence_tol,omitempty"`

	// Presentation params
	ChartMaxPoints *int    `json:"chart_max_points,omitempty"`
	Units          *string `json:"units,omitempty"` // "units", "km" or "mi"
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from
// the JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", *c.MaxIterations)
	}
	if c.ConvergenceTol != nil && *c.ConvergenceTol <= 0 {
		return fmt.Errorf("convergence_tol must be positive, got %g", *c.ConvergenceTol)
	}
	if c.ChartMaxPoints != nil && *c.ChartMaxPoints < 100 {
		return fmt.Errorf("chart_max_points must be at least 100, got %d", *c.ChartMaxPoints)
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s; got %q", units.GetValidUnitsString(), *c.Units)
	}
	return nil
}

// GetMaxIterations returns the max_iterations value or the solver default.
func (c *TuningConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return cluster.DefaultMaxIterations
	}
	return *c.MaxIterations
}

// GetConvergenceTol returns the convergence_tol value or the solver default.
func (c *TuningConfig) GetConvergenceTol() float64 {
	if c.ConvergenceTol == nil {
		return cluster.DefaultTol
	}
	return *c.ConvergenceTol
}

// GetChartMaxPoints returns the chart_max_points value or the default.
func (c *TuningConfig) GetChartMaxPoints() int {
	if c.ChartMaxPoints == nil {
		return 8000
	}
	return *c.ChartMaxPoints
}

// GetUnits returns the units value or the default.
func (c *TuningConfig) GetUnits() string {
	if c.Units == nil {
		return units.Units
	}
	return *c.Units
}

// SolverParams converts the tuning values into solver parameters.
func (c *TuningConfig) SolverParams() cluster.Params {
	return cluster.Params{
		MaxIterations: c.GetMaxIterations(),
		Tol:           c.GetConvergenceTol(),
	}
}
