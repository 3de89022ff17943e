package recommend

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"Pumpsizer/internal/calc/pump"
)

const DefaultServiceFactor = 1.15

var (
	ErrUnsatisfiable = errors.New("required power is unbounded; fix the line configuration first")
	ErrTooLarge      = errors.New("no standard motor rating is large enough")
)

// NEMA horsepower ratings.
var nemaHP = []float64{
	0.25, 0.33, 0.5, 0.75, 1, 1.5, 2, 3, 5, 7.5, 10, 15, 20, 25, 30, 40, 50,
	60, 75, 100, 125, 150, 200, 250, 300, 350, 400, 450, 500,
}

// IEC 60072 kilowatt ratings.
var iecKW = []float64{
	0.18, 0.25, 0.37, 0.55, 0.75, 1.1, 1.5, 2.2, 3, 4, 5.5, 7.5, 11, 15, 18.5,
	22, 30, 37, 45, 55, 75, 90, 110, 132, 160, 200, 250, 315, 355, 400, 450, 500,
}

type MotorInput struct {
	UnitSystem    string  `json:"unit_system"`
	RequiredPower float64 `json:"required_power"`
	ServiceFactor float64 `json:"service_factor"`
}

type MotorResult struct {
	Rating        float64 `json:"rating"`
	Unit          string  `json:"unit"`
	DesignPower   float64 `json:"design_power"`
	ServiceFactor float64 `json:"service_factor"`
	Loading       float64 `json:"loading"`
	Notes         string  `json:"notes"`
}

// Ratings returns the standard motor ratings for a unit system, ascending.
func Ratings(u pump.UnitSystem) []float64 {
	if u == pump.SI {
		return slices.Clone(iecKW)
	}
	return slices.Clone(nemaHP)
}

// Motor picks the smallest standard rating at or above the required power
// times the service factor.
func Motor(in MotorInput) (MotorResult, error) {
	units, err := pump.ParseUnitSystem(in.UnitSystem)
	if err != nil {
		return MotorResult{}, err
	}
	p := in.RequiredPower
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return MotorResult{}, ErrUnsatisfiable
	}
	if p <= 0 {
		return MotorResult{}, fmt.Errorf("required power must be > 0, got %g", p)
	}
	sf := in.ServiceFactor
	if sf == 0 {
		sf = DefaultServiceFactor
	}
	if sf < 1 {
		return MotorResult{}, fmt.Errorf("service factor must be >= 1, got %g", sf)
	}

	design := p * sf
	ratings := Ratings(units)
	i, _ := slices.BinarySearch(ratings, design)
	if i == len(ratings) {
		return MotorResult{}, fmt.Errorf("%w: %.2f %s", ErrTooLarge, design, units.PowerUnit())
	}
	rating := ratings[i]
	unit := "HP"
	if units == pump.SI {
		unit = "kW"
	}
	return MotorResult{
		Rating:        rating,
		Unit:          unit,
		DesignPower:   design,
		ServiceFactor: sf,
		Loading:       p / rating,
		Notes:         "Next standard motor rating above required power with service factor.",
	}, nil
}
