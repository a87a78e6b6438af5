// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Meters = "m"
	Feet   = "ft"
	NM     = "nm"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Feet, NM}

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
	return "m, ft, nm"
}

// ConvertDistance converts a distance from meters to the target units.
// The core computes and stores separations in meters.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Meters:
		return meters
	case Feet:
		return meters * 3.28084
	case NM:
		return meters / 1852.0
	default:
		return meters
	}
}
