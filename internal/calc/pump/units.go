package pump

import "strings"

type UnitSystem string

const (
	Imperial UnitSystem = "imperial"
	SI       UnitSystem = "si"
)

// Hazen-Williams exponents shared by both unit systems.
const (
	flowExponent     = 1.852
	diameterExponent = 4.8655
)

type constants struct {
	pressureHead float64 // psi->ft or kPa->m for SG = 1
	hwK          float64
	diameterDiv  float64 // pipe ID unit -> length unit
	flowDiv      float64 // flow unit -> HW flow unit
	powerUnit    string
	headUnit     string
}

// ParseUnitSystem accepts "imperial" or "si" in any letter case.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch u := UnitSystem(strings.ToLower(s)); u {
	case Imperial, SI:
		return u, nil
	}
	return "", &InvalidConfigurationError{Value: s}
}

func (u UnitSystem) constants() constants {
	if u == SI {
		return constants{
			pressureHead: 0.102, // kPa -> m
			hwK:          10.67, // D in meters, Q in m3/s
			diameterDiv:  1,
			flowDiv:      3600, // m3/hr -> m3/s
			powerUnit:    "kW",
			headUnit:     "meters",
		}
	}
	return constants{
		pressureHead: 2.307,    // psi -> ft
		hwK:          0.002083, // D in feet, Q in GPM
		diameterDiv:  12,
		flowDiv:      1,
		powerUnit:    "BHP",
		headUnit:     "feet",
	}
}

// HeadUnit is the label used for heads and friction losses.
func (u UnitSystem) HeadUnit() string { return u.constants().headUnit }

// PowerUnit is the label used for the required power.
func (u UnitSystem) PowerUnit() string { return u.constants().powerUnit }

// FlowUnit, PressureUnit and DiameterUnit label the input fields.
func (u UnitSystem) FlowUnit() string {
	if u == SI {
		return "m3/hr"
	}
	return "GPM"
}

func (u UnitSystem) PressureUnit() string {
	if u == SI {
		return "kPa"
	}
	return "psi"
}

func (u UnitSystem) DiameterUnit() string {
	if u == SI {
		return "m"
	}
	return "in"
}

func (u UnitSystem) LengthUnit() string {
	if u == SI {
		return "m"
	}
	return "ft"
}
