package enums

import "fmt"

// CalculationMode distinguishes the three-field quick estimate from the full
// calculator.
type CalculationMode string

const (
	CalculationModeQuick CalculationMode = "quick"
	CalculationModeFull  CalculationMode = "full"
)

var validCalculationModes = []CalculationMode{
	CalculationModeQuick,
	CalculationModeFull,
}

// String implements fmt.Stringer.
func (m CalculationMode) String() string {
	return string(m)
}

// Label returns the human readable name used in reports.
func (m CalculationMode) Label() string {
	switch m {
	case CalculationModeQuick:
		return "Quick Estimate"
	case CalculationModeFull:
		return "Full Calculator"
	default:
		return string(m)
	}
}

// IsValid reports whether the value is a known CalculationMode.
func (m CalculationMode) IsValid() bool {
	for _, candidate := range validCalculationModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCalculationMode converts raw input into a CalculationMode.
func ParseCalculationMode(value string) (CalculationMode, error) {
	for _, candidate := range validCalculationModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid calculation mode %q", value)
}
