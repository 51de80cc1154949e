package api

import (
	"os"
	"testing"

	"github.com/banshee-data/facility.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	// Mute the package logger so handler tests don't spam the output.
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}
