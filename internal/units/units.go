// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Units = "units"
	KM    = "km"
	MI    = "mi"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Units, KM, MI}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "units, km, mi"
}
